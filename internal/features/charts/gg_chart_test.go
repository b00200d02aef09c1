package charts

import (
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func laidOut(t *testing.T, opts Options) *ggFigure {
	t.Helper()
	th, err := opts.resolve()
	require.NoError(t, err)
	faces, err := newFaceCache()
	require.NoError(t, err)
	t.Cleanup(faces.Close)

	f := &ggFigure{
		dc:     gg.NewContext(opts.Width, opts.Height),
		faces:  faces,
		opts:   opts,
		th:     th,
		series: defaultSeries(t),
	}
	require.NoError(t, f.layout())
	return f
}

func TestGGLongTitleStaysInsideImage(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "Seasonal Revenue Trends for Every Product Category (Synthetic Data)"
	f := laidOut(t, opts)

	assert.Less(t, f.titlePx, opts.px(opts.TitleSize))
	w, _ := f.measure(true, f.titlePx, opts.Title)
	x := f.titleX(w)
	assert.GreaterOrEqual(t, x-w/2, f.outerPad-1e-9)
	assert.LessOrEqual(t, x+w/2, float64(opts.Width)-f.outerPad+1e-9)

	data := render(t, GGRenderer{}, defaultSeries(t), opts)
	assert.NotEmpty(t, data)
}

func TestGGShortTitleKeepsSize(t *testing.T) {
	opts := DefaultOptions()
	f := laidOut(t, opts)
	assert.Equal(t, opts.px(opts.TitleSize), f.titlePx)
}

func TestGGTitleTooLongForFigure(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = strings.Repeat("Revenue ", 40)
	err := GGRenderer{}.Render(&strings.Builder{}, defaultSeries(t), opts)
	assert.ErrorContains(t, err, "too small for title")
}
