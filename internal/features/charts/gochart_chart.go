package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"sales-chart/internal/features/sales"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// GoChartRenderer renders through go-chart's time-series line chart.
// go-chart only draws round dots, so the square marker is rejected, and its
// legend has no title row, so LegendTitle is not drawn.
type GoChartRenderer struct{}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (r GoChartRenderer) Render(w io.Writer, series []sales.Series, opts Options) error {
	graph, err := r.build(series, opts)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("go-chart render failed: %w", err)
	}
	return nil
}

// gridLines puts a line on every tick. go-chart's own generator skips the
// outermost ticks and alternates major and minor lines.
func gridLines(ticks []chart.Tick, style chart.Style) []chart.GridLine {
	if style.Hidden {
		return nil
	}
	out := make([]chart.GridLine, len(ticks))
	for i, t := range ticks {
		out[i] = chart.GridLine{Style: style, Value: t.Value}
	}
	return out
}

func (GoChartRenderer) build(series []sales.Series, opts Options) (*chart.Chart, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	th, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if opts.Marker == MarkerSquare {
		return nil, fmt.Errorf("marker %q is not supported by the %s engine", opts.Marker, EngineGoChart)
	}
	regular, bold, err := loadFonts()
	if err != nil {
		return nil, err
	}

	ctx, st := th.ctx, th.style
	titleSize := opts.TitleSize
	if titleSize <= 0 {
		titleSize = ctx.FontSize
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var allMonths [][]time.Time
	chartSeries := make([]chart.Series, 0, len(series))
	for i, s := range series {
		c := toDrawing(th.seriesColor(i))
		style := chart.Style{
			StrokeColor: c,
			StrokeWidth: opts.px(opts.LineWidth),
		}
		if opts.Marker != MarkerNone {
			style.DotColor = c
			style.DotWidth = opts.px(ctx.MarkerSize) / 2
		}
		chartSeries = append(chartSeries, chart.TimeSeries{
			Name:    s.Category,
			Style:   style,
			XValues: s.Months,
			YValues: s.Revenue,
		})
		for _, v := range s.Revenue {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		allMonths = append(allMonths, s.Months)
	}

	y0, y1 := padRange(lo, hi, axisMargin)
	yTicks, yStep := niceTicks(y0, y1, 8)
	yAxisTicks := make([]chart.Tick, len(yTicks))
	for i, v := range yTicks {
		yAxisTicks[i] = chart.Tick{Value: v, Label: formatTick(v, yStep)}
	}

	months := monthTicks(allMonths)
	xAxisTicks := make([]chart.Tick, len(months))
	for i, m := range months {
		xAxisTicks[i] = chart.Tick{Value: chart.TimeToFloat64(m), Label: m.Format(monthLayout)}
	}

	grid := chart.Hidden()
	if st.Grid {
		grid = chart.Style{StrokeColor: toDrawing(st.GridColor), StrokeWidth: opts.px(ctx.GridWidth)}
	}
	axisStyle := chart.Style{
		StrokeColor: toDrawing(st.EdgeColor),
		StrokeWidth: opts.px(ctx.SpineWidth),
		FontColor:   toDrawing(st.TextColor),
		FontSize:    ctx.TickSize,
	}
	nameStyle := chart.Style{FontColor: toDrawing(st.TextColor), FontSize: ctx.LabelSize}

	graph := &chart.Chart{
		Title: opts.Title,
		TitleStyle: chart.Style{
			Font:      bold,
			FontSize:  titleSize,
			FontColor: toDrawing(st.TextColor),
		},
		Width:  opts.Width,
		Height: opts.Height,
		DPI:    opts.DPI,
		Font:   regular,
		Background: chart.Style{
			FillColor: toDrawing(st.Background),
			Padding: chart.Box{
				Top:    int(opts.px(titleSize)*2 + 0.5),
				Left:   int(opts.px(outerPadPt*ctx.Scale) + 0.5),
				Right:  int(opts.px(outerPadPt*ctx.Scale)*3 + 0.5),
				Bottom: int(opts.px(outerPadPt*ctx.Scale) + 0.5),
			},
		},
		Canvas: chart.Style{
			FillColor:   toDrawing(st.AxesFace),
			StrokeColor: toDrawing(st.EdgeColor),
			StrokeWidth: opts.px(ctx.SpineWidth),
		},
		XAxis: chart.XAxis{
			Name:           opts.XLabel,
			NameStyle:      nameStyle,
			Style:          axisStyle,
			TickStyle:      chart.Style{TextRotationDegrees: opts.TickRotation},
			Ticks:          xAxisTicks,
			GridMajorStyle: grid,
			GridMinorStyle: grid,
			GridLines:      gridLines(xAxisTicks, grid),
		},
		YAxis: chart.YAxis{
			Name:           opts.YLabel,
			NameStyle:      nameStyle,
			Style:          axisStyle,
			AxisType:       chart.YAxisPrimary,
			Ticks:          yAxisTicks,
			Range:          &chart.ContinuousRange{Min: y0, Max: y1},
			GridMajorStyle: grid,
			GridMinorStyle: grid,
			GridLines:      gridLines(yAxisTicks, grid),
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(graph, chart.Style{FontSize: ctx.LegendSize}),
	}
	return graph, nil
}
