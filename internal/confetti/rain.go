// Package confetti implements the falling-confetti effect: a fixed batch of
// tilted flakes that drift down a surface until they fall off or are killed.
package confetti

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

const (
	// MaxParticles is the number of flakes spawned by Start.
	MaxParticles = 150

	angleStep     = 0.01
	tiltAngleStep = 0.1

	offscreenMargin = 20
	sideEntryOffset = 5
	topEntryY       = -10
)

var (
	// ErrIndexOutOfRange is returned by KillParticle for an index outside the collection.
	ErrIndexOutOfRange = errors.New("particle index out of range")
	// ErrSurfaceUnavailable is returned by Start when the host has no surface to draw on.
	ErrSurfaceUnavailable = errors.New("drawing surface unavailable")
	// ErrAlreadyStarted is returned by Start on a rain that has already been started.
	ErrAlreadyStarted = errors.New("rain already started")
)

// State is the controller's lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateAllDead
	StateUninstalled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateAllDead:
		return "all-dead"
	case StateUninstalled:
		return "uninstalled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FrameStats describes one completed Tick.
type FrameStats struct {
	Frame    int
	Living   int
	Recycled int
	Killed   int
}

// Option configures a Rain.
type Option func(*Rain)

// WithMaxParticles overrides the number of flakes spawned by Start.
func WithMaxParticles(n int) Option {
	return func(r *Rain) { r.maxParticles = n }
}

// WithRandom sets the random source. Defaults to a time-seeded *rand.Rand.
func WithRandom(rnd Random) Option {
	return func(r *Rain) { r.rnd = rnd }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Rain) { r.log = l }
}

// WithRecycling starts the rain with off-screen flakes re-entering instead
// of dying.
func WithRecycling(on bool) Option {
	return func(r *Rain) { r.recycling = on }
}

// WithFrameObserver registers fn to be called at the end of every frame that
// was drawn.
func WithFrameObserver(fn func(FrameStats)) Option {
	return func(r *Rain) { r.observer = fn }
}

// Rain owns the flakes and the surface they fall on.
// All methods must be called from the goroutine driving Tick.
type Rain struct {
	host    Host
	surface Surface
	rnd     Random
	colors  *ColorSequence
	log     *slog.Logger

	maxParticles int
	particles    []*Particle

	width, height int
	angle         float64
	tiltAngle     float64

	recycling bool
	state     State
	finished  bool
	frame     int
	observer  func(FrameStats)
}

// New returns an unstarted rain for host.
func New(host Host, opts ...Option) *Rain {
	r := &Rain{
		host:         host,
		maxParticles: MaxParticles,
		colors:       NewColorSequence(DefaultPalette, ColorBatch),
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rnd == nil {
		r.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r
}

// Start attaches the surface and spawns the flakes. The caller then drives
// the animation by calling Tick once per frame.
func (r *Rain) Start() error {
	if r.state != StateUninitialized {
		return fmt.Errorf("start in state %s: %w", r.state, ErrAlreadyStarted)
	}
	r.width, r.height = r.host.Size()
	surface, err := r.host.Attach()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	if surface == nil {
		return ErrSurfaceUnavailable
	}
	r.surface = surface

	r.particles = make([]*Particle, 0, r.maxParticles)
	for i := 0; i < r.maxParticles; i++ {
		r.particles = append(r.particles, newParticle(r.colors.Next(), r.width, r.height, float64(r.maxParticles), r.rnd))
	}
	r.state = StateRunning
	r.log.Info("confetti started",
		"particles", len(r.particles),
		"width", r.width,
		"height", r.height,
		"recycling", r.recycling,
	)
	return nil
}

// Tick runs one frame: clear, draw every living flake, then move them.
// It reports whether another frame should be scheduled; once every flake is
// dead it draws nothing and returns false.
func (r *Rain) Tick() bool {
	if r.state == StateUninitialized || r.state == StateUninstalled {
		return false
	}
	if r.AllParticlesDead() {
		r.state = StateAllDead
		if !r.finished {
			r.finished = true
			r.log.Info("confetti finished", "frames", r.frame)
		}
		return false
	}

	r.surface.ClearRect(0, 0, float64(r.width), float64(r.height))
	for _, p := range r.particles {
		p.Render(r.surface)
	}
	r.update()
	return true
}

func (r *Rain) update() {
	r.angle += angleStep
	r.tiltAngle += tiltAngleStep

	stats := FrameStats{Frame: r.frame}
	for i, p := range r.particles {
		if p.dead {
			continue
		}
		r.step(p, i)
		switch r.checkForReposition(p, i) {
		case outcomeRecycled:
			stats.Recycled++
		case outcomeKilled:
			stats.Killed++
		}
		if !p.dead {
			stats.Living++
		}
	}
	r.frame++

	if stats.Recycled > 0 || stats.Killed > 0 {
		r.log.Debug("offscreen flakes", "frame", stats.Frame, "recycled", stats.Recycled, "killed", stats.Killed, "living", stats.Living)
	}
	if r.observer != nil {
		r.observer(stats)
	}
}

func (r *Rain) step(p *Particle, index int) {
	p.tiltAngle += p.tiltIncrement
	p.y += (math.Cos(r.angle+p.d) + 3 + p.r/2) / 2
	p.x += math.Sin(r.angle)
	p.tilt = math.Sin(p.tiltAngle-float64(index)/3) * 15
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeRecycled
	outcomeKilled
)

func (r *Rain) offscreen(p *Particle) bool {
	w, h := float64(r.width), float64(r.height)
	return p.x > w+offscreenMargin || p.x < -offscreenMargin || p.y > h
}

func (r *Rain) checkForReposition(p *Particle, index int) outcome {
	if !r.offscreen(p) {
		return outcomeNone
	}
	if !r.recycling {
		p.Kill()
		return outcomeKilled
	}
	r.recycle(p, index)
	return outcomeRecycled
}

// reentersFromTop reports whether the flake at index comes back through the
// top edge. Only indexes ending in 5 come in from a side.
func reentersFromTop(index int) bool {
	return index%5 > 0 || index%2 == 0
}

// recycle brings an off-screen flake back in, through the top edge or
// through the side the wind blows from.
func (r *Rain) recycle(p *Particle, index int) {
	w, h := float64(r.width), float64(r.height)
	if reentersFromTop(index) {
		p.reposition(r.rnd.Float64()*w, topEntryY, randomTilt(r.rnd))
		return
	}
	if math.Sin(r.angle) > 0 {
		p.reposition(-sideEntryOffset, r.rnd.Float64()*h, randomTilt(r.rnd))
	} else {
		p.reposition(w+sideEntryOffset, r.rnd.Float64()*h, randomTilt(r.rnd))
	}
}

// Pause kills every living flake. Calling it again is a no-op.
func (r *Rain) Pause() {
	killed := 0
	for _, p := range r.particles {
		if p.dead {
			continue
		}
		p.Kill()
		killed++
	}
	if killed > 0 {
		r.log.Info("confetti paused", "killed", killed)
	}
	if r.state == StateRunning && r.AllParticlesDead() {
		r.state = StateAllDead
	}
}

// Drain stops recycling so the remaining flakes fall off and the loop ends
// on its own.
func (r *Rain) Drain() {
	if r.recycling {
		r.log.Info("confetti draining", "living", len(r.LivingParticles()))
	}
	r.recycling = false
}

// Uninstall pauses the rain and detaches the surface from its host. The
// surface is detached only once.
func (r *Rain) Uninstall() {
	r.Pause()
	if r.state == StateUninstalled {
		return
	}
	if r.surface != nil {
		r.host.Detach()
		r.surface = nil
	}
	r.state = StateUninstalled
	r.log.Info("confetti uninstalled")
}

// Stop is an alias for Uninstall.
func (r *Rain) Stop() { r.Uninstall() }

// KillParticle marks the flake at index dead.
func (r *Rain) KillParticle(index int) error {
	if index < 0 || index >= len(r.particles) {
		return fmt.Errorf("kill particle %d of %d: %w", index, len(r.particles), ErrIndexOutOfRange)
	}
	r.particles[index].Kill()
	return nil
}

// LivingParticles returns the flakes still alive, in spawn order.
func (r *Rain) LivingParticles() []*Particle {
	living := make([]*Particle, 0, len(r.particles))
	for _, p := range r.particles {
		if !p.dead {
			living = append(living, p)
		}
	}
	return living
}

// AllParticlesDead reports whether no flake is alive.
func (r *Rain) AllParticlesDead() bool {
	for _, p := range r.particles {
		if !p.dead {
			return false
		}
	}
	return true
}

// Particles returns a copy of the full collection, dead flakes included.
func (r *Rain) Particles() []*Particle {
	out := make([]*Particle, len(r.particles))
	copy(out, r.particles)
	return out
}

// SetRecycling switches off-screen flakes between re-entering and dying.
func (r *Rain) SetRecycling(on bool) { r.recycling = on }

// Recycling reports whether off-screen flakes re-enter.
func (r *Rain) Recycling() bool { return r.recycling }

// State returns the lifecycle stage.
func (r *Rain) State() State { return r.state }

// Finished reports whether the loop has observed every flake dead.
func (r *Rain) Finished() bool { return r.finished }

// Size returns the dimensions captured at Start.
func (r *Rain) Size() (width, height int) { return r.width, r.height }

// Frames returns the number of frames drawn so far.
func (r *Rain) Frames() int { return r.frame }
