package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"sales-chart/internal/features/sales"
	"sales-chart/internal/infra/fs"
	logging "sales-chart/internal/infra/log"

	"go.uber.org/zap"
)

const (
	EngineGG      = "gg"
	EngineGoChart = "gochart"
)

// Renderer draws revenue series as a PNG.
type Renderer interface {
	Render(w io.Writer, series []sales.Series, opts Options) error
}

// New returns the renderer for engine ("gg" when empty).
func New(engine string) (Renderer, error) {
	switch engine {
	case "", EngineGG:
		return GGRenderer{}, nil
	case EngineGoChart:
		return GoChartRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown chart engine %q (known: %s, %s)", engine, EngineGG, EngineGoChart)
	}
}

// Options describe one figure. Width and Height are pixels; font sizes from
// the context are points and converted with DPI.
type Options struct {
	Width        int
	Height       int
	DPI          float64
	Style        string
	Context      string
	Palette      string
	Title        string
	TitleSize    float64
	XLabel       string
	YLabel       string
	LegendTitle  string
	TickRotation float64
	LineWidth    float64
	Marker       string
}

const (
	MarkerCircle = "o"
	MarkerSquare = "s"
	MarkerNone   = "none"
)

// DefaultOptions is an 8x8 inch figure at 64 dpi.
func DefaultOptions() Options {
	return Options{
		Width:        512,
		Height:       512,
		DPI:          64,
		Style:        "whitegrid",
		Context:      "talk",
		Palette:      "tab10",
		Title:        "Seasonal Revenue Trends (Synthetic Data)",
		TitleSize:    18,
		XLabel:       "Month",
		YLabel:       "Revenue (USD)",
		LegendTitle:  "Category",
		TickRotation: 45,
		LineWidth:    2.5,
		Marker:       MarkerCircle,
	}
}

// FigureSize converts inches at dpi into pixels.
func FigureSize(widthIn, heightIn, dpi float64) (int, int) {
	return int(widthIn*dpi + 0.5), int(heightIn*dpi + 0.5)
}

// px converts a point size into pixels.
func (o Options) px(points float64) float64 {
	return points * o.DPI / 72
}

// theme resolves the named presets in o.
type theme struct {
	style   Style
	ctx     Context
	palette []color.RGBA
}

func (t theme) seriesColor(i int) color.RGBA {
	return t.palette[i%len(t.palette)]
}

func (o Options) resolve() (theme, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return theme{}, fmt.Errorf("figure size must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.DPI <= 0 {
		return theme{}, fmt.Errorf("dpi must be positive, got %v", o.DPI)
	}
	switch o.Marker {
	case MarkerCircle, MarkerSquare, MarkerNone, "":
	default:
		return theme{}, fmt.Errorf("unknown marker %q", o.Marker)
	}
	style, err := LookupStyle(o.Style)
	if err != nil {
		return theme{}, err
	}
	ctx, err := LookupContext(o.Context)
	if err != nil {
		return theme{}, err
	}
	palette, err := LookupPalette(o.Palette)
	if err != nil {
		return theme{}, err
	}
	return theme{style: style, ctx: ctx, palette: palette}, nil
}

func checkSeries(series []sales.Series) error {
	if len(series) == 0 {
		return errors.New("no data to render")
	}
	for _, s := range series {
		if len(s.Months) == 0 {
			return fmt.Errorf("series %q is empty", s.Category)
		}
		if len(s.Months) != len(s.Revenue) {
			return fmt.Errorf("series %q has %d months but %d values", s.Category, len(s.Months), len(s.Revenue))
		}
	}
	return nil
}

// Save renders into memory and writes the PNG to path.
func Save(path string, r Renderer, series []sales.Series, opts Options) error {
	start := time.Now()

	var buf bytes.Buffer
	if err := r.Render(&buf, series, opts); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := fs.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}

	logging.LogInfo("Chart saved",
		zap.String("filename", path),
		zap.Int("fileSize", buf.Len()),
		zap.Int("series", len(series)),
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
