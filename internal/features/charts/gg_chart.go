package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"sales-chart/internal/features/sales"

	"github.com/fogleman/gg"
)

// Spacing in points, scaled by context and converted to pixels.
const (
	outerPadPt    = 6.0
	titlePadPt    = 8.0
	labelPadPt    = 4.0
	tickPadPt     = 3.5
	legendPadPt   = 5.0
	legendInsetPt = 6.0

	// vertical anchor that centres digits and capitals on a point
	textMidAnchor = 0.35

	minPlotSide = 16.0
	minTitlePx  = 6.0
)

// GGRenderer draws the figure by hand with gg.
type GGRenderer struct{}

// ggFigure holds the measured layout of one rendering.
type ggFigure struct {
	dc    *gg.Context
	faces *faceCache
	opts  Options
	th    theme

	series []sales.Series

	// font sizes in pixels
	titlePx, labelPx, tickPx, legendPx float64

	outerPad, titlePad, labelPad, tickPad, tickLen float64

	// plot area
	left, top, right, bottom float64

	x0, x1 float64
	y0, y1 float64

	yTicks []float64
	yStep  float64
	xTicks []xTick
}

type xTick struct {
	value float64
	label string
}

func (GGRenderer) Render(w io.Writer, series []sales.Series, opts Options) error {
	if err := checkSeries(series); err != nil {
		return err
	}
	th, err := opts.resolve()
	if err != nil {
		return err
	}
	faces, err := newFaceCache()
	if err != nil {
		return err
	}
	defer faces.Close()

	f := &ggFigure{
		dc:     gg.NewContext(opts.Width, opts.Height),
		faces:  faces,
		opts:   opts,
		th:     th,
		series: series,
	}
	if err := f.layout(); err != nil {
		return err
	}

	f.dc.SetColor(th.style.Background)
	f.dc.Clear()

	f.drawAxesFace()
	f.drawGrid()
	f.drawSeries()
	f.drawSpines()
	f.drawTickLabels()
	f.drawAxisLabels()
	f.drawTitle()
	f.drawLegend()

	return f.dc.EncodePNG(w)
}

func (f *ggFigure) useFont(bold bool, px float64) {
	f.dc.SetFontFace(f.faces.face(bold, px))
}

func (f *ggFigure) measure(bold bool, px float64, s string) (float64, float64) {
	f.useFont(bold, px)
	return f.dc.MeasureString(s)
}

// layout measures every piece of text and shrinks the plot area until all of
// it fits inside the image.
func (f *ggFigure) layout() error {
	o, ctx := f.opts, f.th.ctx

	titleSize := o.TitleSize
	if titleSize <= 0 {
		titleSize = ctx.FontSize
	}
	f.titlePx = o.px(titleSize)
	f.labelPx = o.px(ctx.LabelSize)
	f.tickPx = o.px(ctx.TickSize)
	f.legendPx = o.px(ctx.LegendSize)
	f.outerPad = o.px(outerPadPt * ctx.Scale)
	f.titlePad = o.px(titlePadPt * ctx.Scale)
	f.labelPad = o.px(labelPadPt * ctx.Scale)
	f.tickPad = o.px(tickPadPt * ctx.Scale)
	if f.th.style.Ticks {
		f.tickLen = o.px(ctx.TickLength)
	}

	// data ranges
	lo, hi := math.Inf(1), math.Inf(-1)
	var allMonths [][]time.Time
	for _, s := range f.series {
		for _, v := range s.Revenue {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		allMonths = append(allMonths, s.Months)
	}
	f.y0, f.y1 = padRange(lo, hi, axisMargin)

	months := monthTicks(allMonths)
	first, last := timeValue(months[0]), timeValue(months[len(months)-1])
	if first == last {
		const halfMonth = 15 * 24 * 3600
		first, last = first-halfMonth, last+halfMonth
	}
	f.x0, f.x1 = padRange(first, last, axisMargin)

	// y ticks need a height estimate before the margins are known
	approxPlotH := float64(o.Height) * 0.7
	maxYTicks := int(approxPlotH/(f.tickPx*3)) + 1
	f.yTicks, f.yStep = niceTicks(f.y0, f.y1, maxYTicks)

	yTickW := 0.0
	for _, v := range f.yTicks {
		w, _ := f.measure(false, f.tickPx, formatTick(v, f.yStep))
		yTickW = math.Max(yTickW, w)
	}

	labelW, labelH := 0.0, 0.0
	for _, m := range months {
		w, h := f.measure(false, f.tickPx, m.Format(monthLayout))
		labelW = math.Max(labelW, w)
		labelH = math.Max(labelH, h)
	}
	boxW, boxH := rotatedBox(labelW, labelH, o.TickRotation)

	f.top = f.outerPad
	if o.Title != "" {
		if err := f.fitTitle(); err != nil {
			return err
		}
		_, h := f.measure(true, f.titlePx, o.Title)
		f.top += h + f.titlePad
	}
	f.left = f.outerPad + yTickW + f.tickPad + f.tickLen
	if o.YLabel != "" {
		_, h := f.measure(false, f.labelPx, o.YLabel)
		f.left += h + f.labelPad
	}
	f.bottom = float64(o.Height) - f.outerPad - boxH - f.tickPad - f.tickLen
	if o.XLabel != "" {
		_, h := f.measure(false, f.labelPx, o.XLabel)
		f.bottom -= h + f.labelPad
	}
	f.right = float64(o.Width) - f.outerPad

	// rotated labels centred on the last tick may hang past the right edge
	if overhang := boxW/2 - (f.right - f.xPos(timeValue(months[len(months)-1]))); overhang > 0 {
		f.right -= overhang
	}

	if f.right-f.left < minPlotSide || f.bottom-f.top < minPlotSide {
		return fmt.Errorf("figure %dx%d is too small for its labels", o.Width, o.Height)
	}

	gap := f.tickPx * 0.3
	minSpacing := labelW + gap
	if s := math.Abs(math.Sin(o.TickRotation * math.Pi / 180)); s > 1e-6 {
		minSpacing = math.Min(minSpacing, (labelH+gap)/s)
	}
	stride := thinEvery(len(months), f.right-f.left, minSpacing)
	for i := 0; i < len(months); i += stride {
		f.xTicks = append(f.xTicks, xTick{value: timeValue(months[i]), label: months[i].Format(monthLayout)})
	}
	return nil
}

// fitTitle shrinks the title font until the title fits between the outer pads.
func (f *ggFigure) fitTitle() error {
	avail := float64(f.opts.Width) - 2*f.outerPad
	for i := 0; i < 8; i++ {
		w, _ := f.measure(true, f.titlePx, f.opts.Title)
		if w <= avail {
			return nil
		}
		f.titlePx *= avail / w * 0.98
		if f.titlePx < minTitlePx {
			break
		}
	}
	return fmt.Errorf("figure %dx%d is too small for title %q", f.opts.Width, f.opts.Height, f.opts.Title)
}

// titleX centres a title of width w on the plot area, kept inside the image.
func (f *ggFigure) titleX(w float64) float64 {
	cx := (f.left + f.right) / 2
	cx = math.Min(cx, float64(f.opts.Width)-f.outerPad-w/2)
	return math.Max(cx, f.outerPad+w/2)
}

func (f *ggFigure) xPos(v float64) float64 {
	return f.left + (v-f.x0)/(f.x1-f.x0)*(f.right-f.left)
}

func (f *ggFigure) yPos(v float64) float64 {
	return f.bottom - (v-f.y0)/(f.y1-f.y0)*(f.bottom-f.top)
}

func (f *ggFigure) drawAxesFace() {
	f.dc.SetColor(f.th.style.AxesFace)
	f.dc.DrawRectangle(f.left, f.top, f.right-f.left, f.bottom-f.top)
	f.dc.Fill()
}

func (f *ggFigure) drawGrid() {
	if !f.th.style.Grid {
		return
	}
	f.dc.SetColor(f.th.style.GridColor)
	f.dc.SetLineWidth(f.opts.px(f.th.ctx.GridWidth))
	f.dc.SetLineCapButt()
	for _, v := range f.yTicks {
		y := f.yPos(v)
		f.dc.DrawLine(f.left, y, f.right, y)
		f.dc.Stroke()
	}
	for _, t := range f.xTicks {
		x := f.xPos(t.value)
		f.dc.DrawLine(x, f.top, x, f.bottom)
		f.dc.Stroke()
	}
}

func (f *ggFigure) drawSeries() {
	dc := f.dc
	dc.Push()
	defer dc.Pop()

	dc.DrawRectangle(f.left, f.top, f.right-f.left, f.bottom-f.top)
	dc.Clip()

	markerR := f.opts.px(f.th.ctx.MarkerSize) / 2
	for i, s := range f.series {
		c := f.th.seriesColor(i)

		dc.SetColor(c)
		dc.SetLineWidth(f.opts.px(f.opts.LineWidth))
		dc.SetLineCapRound()
		dc.SetLineJoinRound()
		for j := range s.Months {
			x, y := f.xPos(timeValue(s.Months[j])), f.yPos(s.Revenue[j])
			if j == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()

		for j := range s.Months {
			f.drawMarker(f.xPos(timeValue(s.Months[j])), f.yPos(s.Revenue[j]), markerR, c)
		}
	}
}

func (f *ggFigure) drawMarker(x, y, r float64, c color.RGBA) {
	switch f.opts.Marker {
	case MarkerNone:
		return
	case MarkerSquare:
		f.dc.DrawRectangle(x-r, y-r, 2*r, 2*r)
	default:
		f.dc.DrawCircle(x, y, r)
	}
	f.dc.SetColor(c)
	f.dc.FillPreserve()
	f.dc.SetColor(f.th.style.AxesFace)
	f.dc.SetLineWidth(f.opts.px(0.75 * f.th.ctx.Scale))
	f.dc.Stroke()
}

func (f *ggFigure) drawSpines() {
	st := f.th.style
	if !st.Spines && !st.Ticks {
		return
	}
	f.dc.SetColor(st.EdgeColor)
	f.dc.SetLineWidth(f.opts.px(f.th.ctx.SpineWidth))
	f.dc.SetLineCapSquare()
	if st.Spines {
		f.dc.DrawRectangle(f.left, f.top, f.right-f.left, f.bottom-f.top)
		f.dc.Stroke()
	}
	if st.Ticks {
		for _, v := range f.yTicks {
			y := f.yPos(v)
			f.dc.DrawLine(f.left-f.tickLen, y, f.left, y)
			f.dc.Stroke()
		}
		for _, t := range f.xTicks {
			x := f.xPos(t.value)
			f.dc.DrawLine(x, f.bottom, x, f.bottom+f.tickLen)
			f.dc.Stroke()
		}
	}
}

func (f *ggFigure) drawTickLabels() {
	dc := f.dc
	dc.SetColor(f.th.style.TextColor)
	f.useFont(false, f.tickPx)

	for _, v := range f.yTicks {
		dc.DrawStringAnchored(formatTick(v, f.yStep), f.left-f.tickLen-f.tickPad, f.yPos(v), 1, textMidAnchor)
	}

	angle := f.opts.TickRotation
	for _, t := range f.xTicks {
		w, h := dc.MeasureString(t.label)
		_, boxH := rotatedBox(w, h, angle)
		cx := f.xPos(t.value)
		cy := f.bottom + f.tickLen + f.tickPad + boxH/2
		dc.Push()
		dc.RotateAbout(gg.Radians(-angle), cx, cy)
		dc.DrawStringAnchored(t.label, cx, cy, 0.5, textMidAnchor)
		dc.Pop()
	}
}

func (f *ggFigure) drawAxisLabels() {
	dc := f.dc
	dc.SetColor(f.th.style.TextColor)
	f.useFont(false, f.labelPx)
	h := dc.FontHeight()

	if f.opts.XLabel != "" {
		cy := float64(f.opts.Height) - f.outerPad - h/2
		dc.DrawStringAnchored(f.opts.XLabel, (f.left+f.right)/2, cy, 0.5, textMidAnchor)
	}
	if f.opts.YLabel != "" {
		cx := f.outerPad + h/2
		cy := (f.top + f.bottom) / 2
		dc.Push()
		dc.RotateAbout(gg.Radians(-90), cx, cy)
		dc.DrawStringAnchored(f.opts.YLabel, cx, cy, 0.5, textMidAnchor)
		dc.Pop()
	}
}

func (f *ggFigure) drawTitle() {
	if f.opts.Title == "" {
		return
	}
	f.dc.SetColor(f.th.style.TextColor)
	w, _ := f.measure(true, f.titlePx, f.opts.Title)
	cy := f.outerPad + f.dc.FontHeight()/2
	f.dc.DrawStringAnchored(f.opts.Title, f.titleX(w), cy, 0.5, textMidAnchor)
}

// drawLegend puts a framed legend in the upper-left corner of the plot area.
func (f *ggFigure) drawLegend() {
	dc := f.dc
	o := f.opts
	pad := o.px(legendPadPt * f.th.ctx.Scale)
	inset := o.px(legendInsetPt * f.th.ctx.Scale)
	sample := f.legendPx * 2

	titleW, titleH := 0.0, 0.0
	if o.LegendTitle != "" {
		titleW, titleH = f.measure(false, f.legendPx, o.LegendTitle)
	}
	rowH := 0.0
	entryW := 0.0
	for _, s := range f.series {
		w, h := f.measure(false, f.legendPx, s.Category)
		entryW = math.Max(entryW, sample+pad+w)
		rowH = math.Max(rowH, h)
	}
	rowH *= 1.25

	boxW := math.Max(titleW, entryW) + 2*pad
	boxH := titleH + rowH*float64(len(f.series)) + 2*pad
	x, y := f.left+inset, f.top+inset

	dc.DrawRoundedRectangle(x, y, boxW, boxH, o.px(2*f.th.ctx.Scale))
	bg := f.th.style.AxesFace
	dc.SetRGBA255(int(bg.R), int(bg.G), int(bg.B), 204)
	dc.FillPreserve()
	dc.SetColor(edgeLight)
	dc.SetLineWidth(o.px(0.8 * f.th.ctx.Scale))
	dc.Stroke()

	dc.SetColor(f.th.style.TextColor)
	cy := y + pad
	if o.LegendTitle != "" {
		f.useFont(false, f.legendPx)
		dc.DrawStringAnchored(o.LegendTitle, x+boxW/2, cy+titleH/2, 0.5, textMidAnchor)
		cy += titleH
	}

	markerR := o.px(f.th.ctx.MarkerSize) / 2
	for i, s := range f.series {
		c := f.th.seriesColor(i)
		mid := cy + rowH/2
		lx := x + pad

		dc.SetColor(c)
		dc.SetLineWidth(o.px(o.LineWidth))
		dc.SetLineCapButt()
		dc.DrawLine(lx, mid, lx+sample, mid)
		dc.Stroke()
		f.drawMarker(lx+sample/2, mid, markerR, c)

		dc.SetColor(f.th.style.TextColor)
		f.useFont(false, f.legendPx)
		dc.DrawStringAnchored(s.Category, lx+sample+pad, mid, 0, textMidAnchor)
		cy += rowH
	}
}
