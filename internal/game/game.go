// Package game runs the confetti in an ebiten overlay window.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/confetti-rain/internal/audio"
	"github.com/iburimskiy/confetti-rain/internal/confetti"
)

type action int

const (
	actionNone action = iota
	actionPause
	actionDrain
	actionQuit
)

var keyActions = map[ebiten.Key]action{
	ebiten.KeySpace:  actionPause,
	ebiten.KeyP:      actionPause,
	ebiten.KeyD:      actionDrain,
	ebiten.KeyEscape: actionQuit,
	ebiten.KeyQ:      actionQuit,
}

// Game implements ebiten.Game. Draw is the frame callback: it runs one
// confetti tick per display refresh.
type Game struct {
	rain    *confetti.Rain
	overlay *Overlay
	sound   audio.Sound
	hud     bool
	log     *slog.Logger

	started time.Time
	now     func() time.Time
}

// New returns a game driving rain on overlay. sound may be nil.
func New(rain *confetti.Rain, overlay *Overlay, sound audio.Sound, hud bool, logger *slog.Logger) *Game {
	return &Game{
		rain:    rain,
		overlay: overlay,
		sound:   sound,
		hud:     hud,
		log:     logger,
		now:     time.Now,
	}
}

// Start begins the effect and the fanfare. It must be called before Run.
func (g *Game) Start() error {
	if err := g.rain.Start(); err != nil {
		return err
	}
	g.started = g.now()
	if g.sound != nil {
		if err := g.sound.Play(); err != nil {
			// the confetti carries on without sound
			g.log.Warn("fanfare unavailable", "error", err)
		}
	}
	return nil
}

// Run blocks until the overlay is detached.
func (g *Game) Run() error {
	if err := ebiten.RunGameWithOptions(g, g.overlay.RunOptions()); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running overlay: %w", err)
	}
	return nil
}

func (g *Game) Update() error {
	for key, a := range keyActions {
		if inpututil.IsKeyJustPressed(key) {
			g.handle(a)
		}
	}
	return g.settle()
}

// settle uninstalls a finished rain and ends the loop once the overlay is gone.
func (g *Game) settle() error {
	if g.rain.Finished() && g.rain.State() != confetti.StateUninstalled {
		g.rain.Uninstall()
	}
	if g.overlay.Detached() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) handle(a action) {
	switch a {
	case actionPause:
		g.rain.Pause()
		if g.sound != nil {
			g.sound.Pause()
		}
	case actionDrain:
		g.rain.Drain()
	case actionQuit:
		if g.sound != nil {
			g.sound.Pause()
		}
		g.rain.Uninstall()
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.overlay.canvas == nil {
		return
	}
	g.overlay.canvas.target = screen
	g.rain.Tick()

	if g.hud {
		ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
	}
}

func (g *Game) status() string {
	living := len(g.rain.LivingParticles())
	return fmt.Sprintf("%s | living %d | %s", g.rain.State(), living, formatDuration(g.now().Sub(g.started)))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.overlay.Size()
}
