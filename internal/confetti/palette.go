package confetti

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// DefaultPalette is the fixed set of flake colors.
var DefaultPalette = []color.RGBA{
	colornames.Dodgerblue,
	colornames.Olivedrab,
	colornames.Gold,
	colornames.Pink,
	colornames.Slateblue,
	colornames.Lightblue,
	colornames.Violet,
	colornames.Palegreen,
	colornames.Steelblue,
	colornames.Sandybrown,
	colornames.Chocolate,
	colornames.Crimson,
}

// ColorBatch is how many consecutive flakes share one palette entry.
const ColorBatch = 10

// ColorSequence hands out palette colors in batches. The zero value is not
// usable; build one with NewColorSequence.
type ColorSequence struct {
	palette []color.RGBA
	batch   int
	count   int
	index   int
}

// NewColorSequence returns a sequence over palette, switching color every
// batch calls. The palette index advances before the first color is handed
// out, so the first batch gets palette[1].
func NewColorSequence(palette []color.RGBA, batch int) *ColorSequence {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if batch < 1 {
		batch = 1
	}
	return &ColorSequence{
		palette: palette,
		batch:   batch,
		count:   -1,
	}
}

// Next returns the color for the next flake.
func (s *ColorSequence) Next() color.RGBA {
	s.count = (s.count + 1) % s.batch
	if s.count == 0 {
		s.index = (s.index + 1) % len(s.palette)
	}
	return s.palette[s.index]
}
