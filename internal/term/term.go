// Package term runs the confetti in a terminal, one cell per few surface
// units, using tcell.
package term

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/confetti-rain/internal/audio"
	"github.com/iburimskiy/confetti-rain/internal/confetti"
)

// Terminal hosts the confetti on a tcell screen.
type Terminal struct {
	screen       tcell.Screen
	cellW, cellH int
	surface      *cellSurface
	detached     bool
	log          *slog.Logger
}

// Open initializes screen, or the process terminal when screen is nil.
func Open(screen tcell.Screen, cellW, cellH int, logger *slog.Logger) (*Terminal, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("creating terminal screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	return &Terminal{
		screen: screen,
		cellW:  cellW,
		cellH:  cellH,
		log:    logger,
	}, nil
}

// Size reports the terminal in surface units.
func (t *Terminal) Size() (int, int) {
	cols, rows := t.screen.Size()
	return cols * t.cellW, rows * t.cellH
}

func (t *Terminal) Attach() (confetti.Surface, error) {
	if t.detached {
		return nil, fmt.Errorf("terminal already closed")
	}
	t.screen.HideCursor()
	t.screen.Clear()
	t.surface = newCellSurface(t.screen, t.cellW, t.cellH)
	return t.surface, nil
}

// Detach restores the terminal.
func (t *Terminal) Detach() {
	if t.detached {
		return
	}
	t.detached = true
	t.screen.Fini()
}

// Run drives rain at fps until it finishes, the user quits or ctx ends.
// The rain must already be started. Terminal events are read on a separate
// goroutine; rain is only touched from the loop.
func (t *Terminal) Run(ctx context.Context, rain *confetti.Rain, fps int, sound audio.Sound) error {
	if fps < 1 {
		return fmt.Errorf("fps must be positive: got %d", fps)
	}
	defer t.Detach()

	events := make(chan tcell.Event, 8)
	stop := make(chan struct{})
	defer close(stop)
	go t.poll(events, stop)

	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()

	quit := func() {
		if sound != nil {
			sound.Pause()
		}
		rain.Uninstall()
	}

	for {
		select {
		case <-ctx.Done():
			quit()
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if t.handleKey(ev, rain, sound) {
					quit()
					return nil
				}
			case *tcell.EventResize:
				// dimensions stay as captured at start
				t.screen.Sync()
			}
		case <-tick.C:
			if !rain.Tick() {
				t.log.Debug("terminal loop done", "frames", rain.Frames())
				quit()
				return nil
			}
			t.screen.Show()
		}
	}
}

// handleKey applies a key press and reports whether the loop should end.
func (t *Terminal) handleKey(ev *tcell.EventKey, rain *confetti.Rain, sound audio.Sound) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case ' ', 'p', 'P':
			rain.Pause()
			if sound != nil {
				sound.Pause()
			}
		case 'd', 'D':
			rain.Drain()
		}
	}
	return false
}

func (t *Terminal) poll(events chan<- tcell.Event, stop <-chan struct{}) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-stop:
			return
		}
	}
}
