package confetti

import "image/color"

// Surface is the immediate-mode 2D context the flakes are drawn on.
// Implementations keep path, line width and stroke color as mutable drawing
// state between calls; nothing is restored after a particle renders.
type Surface interface {
	ClearRect(x, y, w, h float64)
	BeginPath()
	SetLineWidth(w float64)
	SetStrokeColor(c color.Color)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke()
}

// Host owns the display a Surface lives in.
type Host interface {
	// Size reports the viewport dimensions. It is read once, at Start.
	Size() (width, height int)
	// Attach places the surface over the viewport and returns it.
	Attach() (Surface, error)
	// Detach removes the surface from the display. Called at most once.
	Detach()
}

// Random is the uniform source used for spawning and recycling.
// *rand.Rand from math/rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}
