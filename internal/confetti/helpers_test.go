package confetti

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
)

// recordingSurface logs every drawing call as a string.
type recordingSurface struct {
	ops []string
}

func (s *recordingSurface) ClearRect(x, y, w, h float64) {
	s.ops = append(s.ops, fmt.Sprintf("clear %g %g %g %g", x, y, w, h))
}
func (s *recordingSurface) BeginPath() { s.ops = append(s.ops, "begin") }
func (s *recordingSurface) SetLineWidth(w float64) {
	s.ops = append(s.ops, fmt.Sprintf("width %g", w))
}
func (s *recordingSurface) SetStrokeColor(c color.Color) {
	r, g, b, a := c.RGBA()
	s.ops = append(s.ops, fmt.Sprintf("color %d %d %d %d", r>>8, g>>8, b>>8, a>>8))
}
func (s *recordingSurface) MoveTo(x, y float64) {
	s.ops = append(s.ops, fmt.Sprintf("move %g %g", x, y))
}
func (s *recordingSurface) LineTo(x, y float64) {
	s.ops = append(s.ops, fmt.Sprintf("line %g %g", x, y))
}
func (s *recordingSurface) Stroke() { s.ops = append(s.ops, "stroke") }

func (s *recordingSurface) count(op string) int {
	n := 0
	for _, o := range s.ops {
		if o == op {
			n++
		}
	}
	return n
}

type fakeHost struct {
	width, height int
	surface       *recordingSurface
	attachErr     error
	detached      int
}

func newFakeHost(w, h int) *fakeHost {
	return &fakeHost{width: w, height: h, surface: &recordingSurface{}}
}

func (h *fakeHost) Size() (int, int) { return h.width, h.height }

func (h *fakeHost) Attach() (Surface, error) {
	if h.attachErr != nil {
		return nil, h.attachErr
	}
	return h.surface, nil
}

func (h *fakeHost) Detach() { h.detached++ }

// scriptedRandom replays fixed values in a loop.
type scriptedRandom struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *scriptedRandom) Float64() float64 {
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *scriptedRandom) Intn(n int) int {
	v := r.ints[r.ii%len(r.ints)]
	r.ii++
	return v % n
}

var errNoCanvas = errors.New("no canvas")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
