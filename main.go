package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/confetti-rain/internal/audio"
	"github.com/iburimskiy/confetti-rain/internal/confetti"
	"github.com/iburimskiy/confetti-rain/internal/config"
	"github.com/iburimskiy/confetti-rain/internal/game"
	"github.com/iburimskiy/confetti-rain/internal/telemetry"
	"github.com/iburimskiy/confetti-rain/internal/term"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	backend := flag.String("backend", "", "Surface to draw on: window or terminal")
	continuous := flag.Bool("continuous", false, "Recycle flakes until paused")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config or time-based)")
	sound := flag.String("sound", "", "Fanfare to play with the confetti (wav, mp3, flac)")
	pickSound := flag.Bool("pick-sound", false, "Choose the fanfare with a file dialog")
	statsPath := flag.String("stats", "", "Write per-frame stats to this CSV file")
	hud := flag.Bool("hud", false, "Show living count and elapsed time (window backend)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	writeConfig := flag.String("write-config", "", "Write the effective config to this file and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	applyFlags(cfg, *backend, *continuous, *seed, *sound, *statsPath, *hud, *debug)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	if *pickSound {
		path, err := audio.PickSound()
		if err != nil {
			logger.Warn("sound picker failed", "error", err)
		} else if path != "" {
			cfg.Audio.Sound = path
		}
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("confetti failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// newLogger builds the process logger. The terminal backend owns the screen,
// so without a log file it only reports errors, which land after the
// terminal is restored.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		return logger, func() { _ = f.Close() }, nil
	}
	if cfg.Backend == config.BackendTerminal && level < slog.LevelError {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), func() {}, nil
}

func applyFlags(cfg *config.Config, backend string, continuous bool, seed int64, sound, stats string, hud, debug bool) {
	if backend != "" {
		cfg.Backend = backend
	}
	if continuous {
		cfg.Effect.Continuous = true
	}
	if seed != 0 {
		cfg.Effect.Seed = seed
	}
	if sound != "" {
		cfg.Audio.Sound = sound
	}
	if stats != "" {
		cfg.Stats.Output = stats
	}
	if hud {
		cfg.Window.HUD = true
	}
	if debug {
		cfg.Log.Level = "debug"
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	rngSeed := cfg.Effect.Seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	frames, err := telemetry.Open(cfg.Stats.Output)
	if err != nil {
		return err
	}
	defer frames.Close()

	var fanfare *audio.Fanfare
	if cfg.Audio.Sound != "" {
		if fanfare, err = audio.Load(cfg.Audio.Sound, logger); err != nil {
			logger.Warn("fanfare disabled", "error", err)
			fanfare = nil
		}
	}
	defer fanfare.Close()

	opts := []confetti.Option{
		confetti.WithRandom(rand.New(rand.NewSource(rngSeed))),
		confetti.WithLogger(logger),
		confetti.WithRecycling(cfg.Effect.Continuous),
		confetti.WithFrameObserver(frames.Observer(logger)),
	}
	logger.Info("starting confetti", "backend", cfg.Backend, "seed", rngSeed, "continuous", cfg.Effect.Continuous)

	switch cfg.Backend {
	case config.BackendTerminal:
		return runTerminal(cfg, logger, fanfare, opts)
	default:
		return runWindow(cfg, logger, fanfare, opts)
	}
}

func runWindow(cfg *config.Config, logger *slog.Logger, fanfare *audio.Fanfare, opts []confetti.Option) error {
	monitorW, monitorH := ebiten.Monitor().Size()
	w, h := cfg.WindowSize(monitorW, monitorH)
	overlay := game.NewOverlay(w, h, cfg.Window.Transparent)

	rain := confetti.New(overlay, opts...)
	g := game.New(rain, overlay, fanfare, cfg.Window.HUD, logger)
	if err := g.Start(); err != nil {
		return err
	}
	return g.Run()
}

func runTerminal(cfg *config.Config, logger *slog.Logger, fanfare *audio.Fanfare, opts []confetti.Option) error {
	t, err := term.Open(nil, cfg.Terminal.CellWidth, cfg.Terminal.CellHeight, logger)
	if err != nil {
		return err
	}
	defer t.Detach()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rain := confetti.New(t, opts...)
	if err := rain.Start(); err != nil {
		return err
	}
	if err := fanfare.Play(); err != nil {
		logger.Warn("fanfare unavailable", "error", err)
	}
	return t.Run(ctx, rain, cfg.Terminal.FPS, fanfare)
}
