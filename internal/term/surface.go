package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

type segment struct {
	x0, y0, x1, y1 float64
}

// cellSurface rasterizes confetti strokes into terminal cells. Each cell
// stands for cellW x cellH surface units.
type cellSurface struct {
	screen       tcell.Screen
	cellW, cellH float64

	segments   []segment
	penX, penY float64
	hasPen     bool
	style      tcell.Style
}

func newCellSurface(screen tcell.Screen, cellW, cellH int) *cellSurface {
	return &cellSurface{
		screen: screen,
		cellW:  float64(cellW),
		cellH:  float64(cellH),
		style:  tcell.StyleDefault,
	}
}

func (s *cellSurface) ClearRect(x, y, w, h float64) {
	cols, rows := s.screen.Size()
	c0, r0 := s.cell(x, y)
	c1, r1 := s.cell(x+w, y+h)
	if c0 <= 0 && r0 <= 0 && c1 >= cols && r1 >= rows {
		s.screen.Clear()
		return
	}
	for r := max(r0, 0); r < min(r1, rows); r++ {
		for c := max(c0, 0); c < min(c1, cols); c++ {
			s.screen.SetContent(c, r, ' ', nil, tcell.StyleDefault)
		}
	}
}

func (s *cellSurface) BeginPath() {
	s.segments = s.segments[:0]
	s.hasPen = false
}

// SetLineWidth is a no-op: a stroke is always one cell wide.
func (s *cellSurface) SetLineWidth(float64) {}

func (s *cellSurface) SetStrokeColor(c color.Color) {
	s.style = tcell.StyleDefault.Foreground(tcell.FromImageColor(c))
}

func (s *cellSurface) MoveTo(x, y float64) {
	s.penX, s.penY = x, y
	s.hasPen = true
}

func (s *cellSurface) LineTo(x, y float64) {
	if s.hasPen {
		s.segments = append(s.segments, segment{s.penX, s.penY, x, y})
	}
	s.MoveTo(x, y)
}

func (s *cellSurface) Stroke() {
	for _, seg := range s.segments {
		s.plot(seg)
	}
}

func (s *cellSurface) cell(x, y float64) (int, int) {
	return int(math.Floor(x / s.cellW)), int(math.Floor(y / s.cellH))
}

// plot walks the cells between the segment ends (Bresenham).
func (s *cellSurface) plot(seg segment) {
	glyph := glyphFor(seg.x1-seg.x0, seg.y1-seg.y0)
	cols, rows := s.screen.Size()

	c0, r0 := s.cell(seg.x0, seg.y0)
	c1, r1 := s.cell(seg.x1, seg.y1)
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for {
		if c0 >= 0 && c0 < cols && r0 >= 0 && r0 < rows {
			s.screen.SetContent(c0, r0, glyph, nil, s.style)
		}
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// glyphFor picks the character closest to the stroke direction. y grows
// downwards.
func glyphFor(dx, dy float64) rune {
	ax, ay := math.Abs(dx), math.Abs(dy)
	switch {
	case ax == 0 && ay == 0:
		return '▪'
	case 2*ax < ay:
		return '|'
	case 2*ay < ax:
		return '-'
	case dx*dy > 0:
		return '\\'
	default:
		return '/'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
