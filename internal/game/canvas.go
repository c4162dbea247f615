package game

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

type segment struct {
	x0, y0, x1, y1 float32
}

// path collects line segments between BeginPath and Stroke.
type path struct {
	segments   []segment
	penX, penY float32
	hasPen     bool
}

func (p *path) reset() {
	p.segments = p.segments[:0]
	p.hasPen = false
}

func (p *path) moveTo(x, y float32) {
	p.penX, p.penY = x, y
	p.hasPen = true
}

// lineTo without a current point only sets one, like a 2D canvas.
func (p *path) lineTo(x, y float32) {
	if p.hasPen {
		p.segments = append(p.segments, segment{p.penX, p.penY, x, y})
	}
	p.moveTo(x, y)
}

type strokeFunc func(dst *ebiten.Image, x0, y0, x1, y1, width float32, clr color.Color, antialias bool)

// canvas draws onto the ebiten screen handed to Draw.
type canvas struct {
	target      *ebiten.Image
	path        path
	lineWidth   float32
	strokeColor color.Color
	strokeLine  strokeFunc
}

func newCanvas() *canvas {
	return &canvas{
		lineWidth:   1,
		strokeColor: color.Black,
		strokeLine:  vector.StrokeLine,
	}
}

func (c *canvas) ClearRect(x, y, w, h float64) {
	if c.target == nil {
		return
	}
	bounds := c.target.Bounds()
	rect := image.Rect(int(x), int(y), int(x+w), int(y+h)).Intersect(bounds)
	if rect == bounds {
		c.target.Clear()
		return
	}
	if rect.Empty() {
		return
	}
	c.target.SubImage(rect).(*ebiten.Image).Clear()
}

func (c *canvas) BeginPath() { c.path.reset() }

func (c *canvas) SetLineWidth(w float64) {
	if w > 0 {
		c.lineWidth = float32(w)
	}
}

func (c *canvas) SetStrokeColor(clr color.Color) { c.strokeColor = clr }

func (c *canvas) MoveTo(x, y float64) { c.path.moveTo(float32(x), float32(y)) }
func (c *canvas) LineTo(x, y float64) { c.path.lineTo(float32(x), float32(y)) }

func (c *canvas) Stroke() {
	for _, s := range c.path.segments {
		c.strokeLine(c.target, s.x0, s.y0, s.x1, s.y1, c.lineWidth, c.strokeColor, true)
	}
}
