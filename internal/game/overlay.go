package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/confetti-rain/internal/confetti"
)

// Overlay is a borderless, always-on-top, click-through window covering the
// monitor. It hosts the confetti canvas.
type Overlay struct {
	width, height int
	transparent   bool
	canvas        *canvas
	detached      bool

	// applyWindow styles the window; replaced in tests.
	applyWindow func(o *Overlay)
}

func NewOverlay(width, height int, transparent bool) *Overlay {
	return &Overlay{
		width:       width,
		height:      height,
		transparent: transparent,
		applyWindow: styleWindow,
	}
}

func styleWindow(o *Overlay) {
	ebiten.SetWindowTitle("confetti")
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowMousePassthrough(true)
	ebiten.SetWindowSize(o.width, o.height)
	ebiten.SetWindowPosition(0, 0)
}

func (o *Overlay) Size() (int, int) { return o.width, o.height }

// Attach styles the window and returns the canvas the confetti draws on.
func (o *Overlay) Attach() (confetti.Surface, error) {
	if o.width <= 0 || o.height <= 0 {
		return nil, fmt.Errorf("invalid overlay size %dx%d", o.width, o.height)
	}
	o.applyWindow(o)
	o.canvas = newCanvas()
	return o.canvas, nil
}

// Detach marks the overlay for closing; the game loop ends on its next update.
func (o *Overlay) Detach() { o.detached = true }

func (o *Overlay) Detached() bool { return o.detached }

// RunOptions returns the options the overlay must be run with.
func (o *Overlay) RunOptions() *ebiten.RunGameOptions {
	return &ebiten.RunGameOptions{
		ScreenTransparent: o.transparent,
		SkipTaskbar:       true,
	}
}
