package charts

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
)

// Style is a named look: colours of the figure, the plotting area and its grid.
type Style struct {
	Name       string
	Background color.RGBA
	AxesFace   color.RGBA
	EdgeColor  color.RGBA
	GridColor  color.RGBA
	TextColor  color.RGBA
	Grid       bool
	Spines     bool
	Ticks      bool
}

// Context scales fonts, lines and markers. Sizes are in points.
type Context struct {
	Name       string
	Scale      float64
	FontSize   float64
	LabelSize  float64
	TickSize   float64
	LegendSize float64
	MarkerSize float64
	GridWidth  float64
	SpineWidth float64
	TickLength float64
}

func gray(v uint8) color.RGBA { return color.RGBA{v, v, v, 255} }

var (
	white     = gray(255)
	textDark  = gray(38)  // ".15"
	edgeLight = gray(204) // ".8"
)

var styles = map[string]Style{
	"whitegrid": {Background: white, AxesFace: white, EdgeColor: edgeLight, GridColor: edgeLight, TextColor: textDark, Grid: true, Spines: true},
	"darkgrid":  {Background: white, AxesFace: color.RGBA{234, 234, 242, 255}, EdgeColor: white, GridColor: white, TextColor: textDark, Grid: true},
	"white":     {Background: white, AxesFace: white, EdgeColor: textDark, GridColor: edgeLight, TextColor: textDark, Spines: true},
	"dark":      {Background: white, AxesFace: color.RGBA{234, 234, 242, 255}, EdgeColor: white, GridColor: white, TextColor: textDark},
	"ticks":     {Background: white, AxesFace: white, EdgeColor: textDark, GridColor: edgeLight, TextColor: textDark, Spines: true, Ticks: true},
}

// notebook sizes; other contexts multiply them.
var contextScales = map[string]float64{
	"paper":    0.8,
	"notebook": 1.0,
	"talk":     1.5,
	"poster":   2.0,
}

var palettes = map[string][]string{
	"tab10":      {"1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd", "8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf"},
	"deep":       {"4c72b0", "dd8452", "55a868", "c44e52", "8172b3", "937860", "da8bc3", "8c8c8c", "ccb974", "64b5cd"},
	"muted":      {"4878d0", "ee854a", "6acc64", "d65f5f", "956cb4", "8c613c", "dc7ec0", "797979", "d5bb67", "82c6e2"},
	"colorblind": {"0173b2", "de8f05", "029e73", "d55e00", "cc78bc", "ca9161", "fbafe4", "949494", "ece133", "56b4e9"},
}

func LookupStyle(name string) (Style, error) {
	s, ok := styles[name]
	if !ok {
		return Style{}, fmt.Errorf("unknown style %q (known: %v)", name, keys(styles))
	}
	s.Name = name
	return s, nil
}

func LookupContext(name string) (Context, error) {
	scale, ok := contextScales[name]
	if !ok {
		return Context{}, fmt.Errorf("unknown context %q (known: %v)", name, keys(contextScales))
	}
	return Context{
		Name:       name,
		Scale:      scale,
		FontSize:   12 * scale,
		LabelSize:  12 * scale,
		TickSize:   11 * scale,
		LegendSize: 11 * scale,
		MarkerSize: 6 * scale,
		GridWidth:  1 * scale,
		SpineWidth: 1.25 * scale,
		TickLength: 6 * scale,
	}, nil
}

// LookupPalette returns the palette colours; series beyond its length wrap.
func LookupPalette(name string) ([]color.RGBA, error) {
	hexes, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q (known: %v)", name, keys(palettes))
	}
	out := make([]color.RGBA, len(hexes))
	for i, h := range hexes {
		c, err := parseHex(h)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", name, err)
		}
		out[i] = c
	}
	return out, nil
}

// parseHex reads an "rrggbb" colour.
func parseHex(h string) (color.RGBA, error) {
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want 6 hex digits", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", h, err)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
