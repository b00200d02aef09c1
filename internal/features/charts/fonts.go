package charts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts are embedded so a chart renders the same on every host.
var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontsErr    error
)

func loadFonts() (regular, bold *truetype.Font, err error) {
	fontsOnce.Do(func() {
		regularFont, fontsErr = truetype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("failed to parse regular font: %w", fontsErr)
			return
		}
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("failed to parse bold font: %w", fontsErr)
		}
	})
	return regularFont, boldFont, fontsErr
}

// faceCache hands out font faces by (weight, pixel size). A face is tied to
// one rendering; do not share a cache between goroutines.
type faceCache struct {
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	px   float64
}

func newFaceCache() (*faceCache, error) {
	regular, bold, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &faceCache{regular: regular, bold: bold, faces: make(map[faceKey]font.Face)}, nil
}

func (c *faceCache) face(bold bool, px float64) font.Face {
	k := faceKey{bold: bold, px: px}
	if f, ok := c.faces[k]; ok {
		return f
	}
	ttf := c.regular
	if bold {
		ttf = c.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: px, Hinting: font.HintingNone})
	c.faces[k] = f
	return f
}

func (c *faceCache) Close() {
	for _, f := range c.faces {
		f.Close()
	}
}
