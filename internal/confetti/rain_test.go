package confetti

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func newTestRain(t *testing.T, host *fakeHost, opts ...Option) *Rain {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithRandom(rand.New(rand.NewSource(7)))}, opts...)
	r := New(host, opts...)
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return r
}

func TestStartSeededScenario(t *testing.T) {
	host := newFakeHost(800, 600)
	rnd := &scriptedRandom{floats: []float64{0.5, 0.25, 0.5, 0.5}, ints: []int{5, 3}}
	r := newTestRain(t, host, WithMaxParticles(3), WithRandom(rnd))

	particles := r.Particles()
	if len(particles) != 3 {
		t.Fatalf("expected 3 particles, got %d", len(particles))
	}
	for i, p := range particles {
		x, y := p.Position()
		if x != 400 || y != -450 {
			t.Errorf("particle %d: expected (400, -450), got (%f, %f)", i, x, y)
		}
		if p.Radius() != 15 {
			t.Errorf("particle %d: expected radius 15, got %f", i, p.Radius())
		}
		if p.Density() != 11.5 {
			t.Errorf("particle %d: expected density 11.5, got %f", i, p.Density())
		}
		if p.Tilt() != -7 {
			t.Errorf("particle %d: expected tilt -7, got %f", i, p.Tilt())
		}
		if p.Color() != DefaultPalette[1] {
			t.Errorf("particle %d: expected first batch color, got %v", i, p.Color())
		}
	}
	if r.State() != StateRunning {
		t.Errorf("expected running, got %s", r.State())
	}

	r.Pause()
	if !r.AllParticlesDead() {
		t.Error("expected all particles dead after pause")
	}
	if n := len(r.LivingParticles()); n != 0 {
		t.Errorf("expected no living particles, got %d", n)
	}
}

func TestStartDefaultCount(t *testing.T) {
	r := newTestRain(t, newFakeHost(1024, 768))
	if n := len(r.Particles()); n != MaxParticles {
		t.Errorf("expected %d particles, got %d", MaxParticles, n)
	}
	w, h := r.Size()
	if w != 1024 || h != 768 {
		t.Errorf("expected size 1024x768, got %dx%d", w, h)
	}
}

func TestStartTwice(t *testing.T) {
	r := newTestRain(t, newFakeHost(100, 100))
	if err := r.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStartSurfaceUnavailable(t *testing.T) {
	host := newFakeHost(100, 100)
	host.attachErr = errNoCanvas
	r := New(host, WithLogger(quietLogger()))

	err := r.Start()
	if !errors.Is(err, ErrSurfaceUnavailable) || !errors.Is(err, errNoCanvas) {
		t.Fatalf("expected surface unavailable wrapping host error, got %v", err)
	}
	if r.State() != StateUninitialized {
		t.Errorf("expected uninitialized after failed start, got %s", r.State())
	}
	if r.Tick() {
		t.Error("tick before a successful start should not continue")
	}
}

func TestKillParticle(t *testing.T) {
	r := newTestRain(t, newFakeHost(800, 600), WithMaxParticles(3))

	if err := r.KillParticle(1); err != nil {
		t.Fatalf("kill 1: %v", err)
	}
	ps := r.Particles()
	if !ps[0].Alive() || ps[1].Alive() || !ps[2].Alive() {
		t.Errorf("expected only index 1 dead, got alive=%v,%v,%v", ps[0].Alive(), ps[1].Alive(), ps[2].Alive())
	}

	living := r.LivingParticles()
	if len(living) != 2 || living[0] != ps[0] || living[1] != ps[2] {
		t.Errorf("expected living [0 2] in order, got %v", living)
	}

	for _, idx := range []int{5, 3, -1} {
		if err := r.KillParticle(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("kill %d: expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
}

func TestLivingParticlesEmpty(t *testing.T) {
	r := New(newFakeHost(10, 10), WithLogger(quietLogger()))
	living := r.LivingParticles()
	if living == nil || len(living) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", living)
	}
	if !r.AllParticlesDead() {
		t.Error("empty collection counts as all dead")
	}
}

func TestPauseIdempotent(t *testing.T) {
	r := newTestRain(t, newFakeHost(800, 600), WithMaxParticles(20))
	_ = r.KillParticle(4)

	r.Pause()
	first := make([]bool, 0, 20)
	for _, p := range r.Particles() {
		first = append(first, p.Alive())
	}
	r.Pause()
	for i, p := range r.Particles() {
		if p.Alive() != first[i] {
			t.Errorf("particle %d changed on second pause", i)
		}
	}
	if r.State() != StateAllDead {
		t.Errorf("expected all-dead, got %s", r.State())
	}
}

func TestTickDrawsAndAdvances(t *testing.T) {
	host := newFakeHost(800, 600)
	r := newTestRain(t, host, WithMaxParticles(5))

	if !r.Tick() {
		t.Fatal("expected another frame while particles are alive")
	}
	s := host.surface
	if len(s.ops) == 0 || s.ops[0] != "clear 0 0 800 600" {
		t.Fatalf("expected frame to start with a full clear, got %v", s.ops)
	}
	if n := s.count("stroke"); n != 5 {
		t.Errorf("expected 5 strokes, got %d", n)
	}
	if math.Abs(r.angle-0.01) > 1e-12 || math.Abs(r.tiltAngle-0.1) > 1e-12 {
		t.Errorf("expected angles (0.01, 0.1), got (%f, %f)", r.angle, r.tiltAngle)
	}
	if r.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", r.Frames())
	}
}

func TestStepMotion(t *testing.T) {
	rnd := &scriptedRandom{floats: []float64{0.5, 0.25, 0.5, 0.5}, ints: []int{5, 3}}
	r := newTestRain(t, newFakeHost(800, 600), WithMaxParticles(2), WithRandom(rnd))

	r.Tick()

	const angle = 0.01
	for i, p := range r.Particles() {
		wantTiltAngle := 0.085
		wantY := -450 + (math.Cos(angle+11.5)+3+7.5)/2
		wantX := 400 + math.Sin(angle)
		wantTilt := math.Sin(wantTiltAngle-float64(i)/3) * 15

		x, y := p.Position()
		if math.Abs(p.TiltAngle()-wantTiltAngle) > 1e-12 {
			t.Errorf("particle %d: tilt angle %f, want %f", i, p.TiltAngle(), wantTiltAngle)
		}
		if math.Abs(x-wantX) > 1e-9 || math.Abs(y-wantY) > 1e-9 {
			t.Errorf("particle %d: position (%f, %f), want (%f, %f)", i, x, y, wantX, wantY)
		}
		if math.Abs(p.Tilt()-wantTilt) > 1e-9 {
			t.Errorf("particle %d: tilt %f, want %f", i, p.Tilt(), wantTilt)
		}
	}
}

func TestDeadParticleNeverMutated(t *testing.T) {
	host := newFakeHost(800, 600)
	r := newTestRain(t, host, WithMaxParticles(3), WithRecycling(true))
	_ = r.KillParticle(1)

	dead := r.Particles()[1]
	x0, y0 := dead.Position()
	tilt0, angle0 := dead.Tilt(), dead.TiltAngle()

	for i := 0; i < 50; i++ {
		r.Tick()
	}

	x, y := dead.Position()
	if x != x0 || y != y0 || dead.Tilt() != tilt0 || dead.TiltAngle() != angle0 {
		t.Error("dead particle was mutated by a frame step")
	}
	for _, p := range r.LivingParticles() {
		if p == dead {
			t.Error("dead particle listed as living")
		}
	}
	if n := host.surface.count("stroke"); n != 2*50 {
		t.Errorf("expected 100 strokes for two living particles, got %d", n)
	}
}

func TestTickTerminatesWhenAllKilled(t *testing.T) {
	host := newFakeHost(800, 600)
	r := newTestRain(t, host, WithMaxParticles(3))
	r.Tick()

	for i := 0; i < 3; i++ {
		if err := r.KillParticle(i); err != nil {
			t.Fatal(err)
		}
	}
	before := len(host.surface.ops)

	if r.Tick() {
		t.Error("expected no further frame once every particle is dead")
	}
	if len(host.surface.ops) != before {
		t.Error("terminal tick should not draw")
	}
	if !r.Finished() || r.State() != StateAllDead {
		t.Errorf("expected finished all-dead run, got finished=%v state=%s", r.Finished(), r.State())
	}
	if r.Tick() {
		t.Error("finished rain should stay stopped")
	}
}

func TestOffscreenKilledWithoutRecycling(t *testing.T) {
	r := newTestRain(t, newFakeHost(800, 600), WithMaxParticles(3))
	r.particles[0].y = 601
	r.particles[2].x = -30

	var stats FrameStats
	r.observer = func(s FrameStats) { stats = s }
	r.Tick()

	ps := r.Particles()
	if ps[0].Alive() || ps[2].Alive() {
		t.Error("off-screen particles should die when not recycling")
	}
	if !ps[1].Alive() {
		t.Error("on-screen particle should stay alive")
	}
	if stats.Killed != 2 || stats.Living != 1 || stats.Recycled != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestOneShotRunEnds(t *testing.T) {
	r := newTestRain(t, newFakeHost(320, 200), WithMaxParticles(30))

	frames := 0
	for r.Tick() {
		frames++
		if frames > 10000 {
			t.Fatal("one-shot rain never finished")
		}
	}
	if !r.Finished() {
		t.Error("expected finished run")
	}
}

func TestRecycleKeepsParticlesAlive(t *testing.T) {
	r := newTestRain(t, newFakeHost(320, 200), WithMaxParticles(30), WithRecycling(true))

	for i := 0; i < 2000; i++ {
		if !r.Tick() {
			t.Fatalf("recycling rain stopped at frame %d", i)
		}
	}
	if n := len(r.LivingParticles()); n != 30 {
		t.Errorf("expected all 30 alive, got %d", n)
	}

	r.Drain()
	frames := 0
	for r.Tick() {
		frames++
		if frames > 10000 {
			t.Fatal("drained rain never finished")
		}
	}
	if !r.Finished() {
		t.Error("expected drained rain to finish")
	}
}

func TestRecycleDistribution(t *testing.T) {
	r := newTestRain(t, newFakeHost(800, 600), WithMaxParticles(MaxParticles), WithRecycling(true))

	const samples = 1500
	top := 0
	for i := 0; i < samples; i++ {
		idx := i % MaxParticles
		p := r.particles[idx]
		p.y = 700

		if got := r.checkForReposition(p, idx); got != outcomeRecycled {
			t.Fatalf("sample %d: expected recycle, got %v", i, got)
		}
		if p.y == topEntryY {
			top++
		}
		if !p.Alive() {
			t.Fatalf("recycled particle %d died", idx)
		}
	}

	// nine residues out of every ten re-enter from the top
	ratio := float64(top) / samples
	if math.Abs(ratio-0.9) > 1e-9 {
		t.Errorf("expected 0.9 top entries, got %.3f", ratio)
	}
}

func TestReentersFromTop(t *testing.T) {
	tests := map[int]bool{
		0:  true,
		1:  true,
		3:  true,
		5:  false,
		6:  true,
		9:  true,
		10: true,
		15: false,
		25: false,
		30: true,
	}
	for idx, want := range tests {
		if got := reentersFromTop(idx); got != want {
			t.Errorf("index %d: expected top entry %v, got %v", idx, want, got)
		}
	}
}

func TestRecycleSideEntry(t *testing.T) {
	r := newTestRain(t, newFakeHost(800, 600), WithMaxParticles(6), WithRecycling(true))
	p := r.particles[5]

	tests := []struct {
		name  string
		angle float64
		wantX float64
	}{
		{"wind from left", math.Pi / 2, -5},
		{"wind from right", -math.Pi / 2, 805},
		{"calm", 0, 805},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r.angle = tc.angle
			p.x, p.y = 900, 300
			r.recycle(p, 5)

			x, y := p.Position()
			if x != tc.wantX {
				t.Errorf("expected x=%f, got %f", tc.wantX, x)
			}
			if y < 0 || y >= 600 {
				t.Errorf("expected y inside the surface, got %f", y)
			}
			if p.Tilt() < -10 || p.Tilt() >= 0 {
				t.Errorf("expected tilt in [-10,0), got %f", p.Tilt())
			}
		})
	}
}

func TestRecycleTopEntry(t *testing.T) {
	r := newTestRain(t, newFakeHost(800, 600), WithMaxParticles(4), WithRecycling(true))
	p := r.particles[1]
	p.y = 650

	r.recycle(p, 1)

	x, y := p.Position()
	if y != -10 {
		t.Errorf("expected y=-10, got %f", y)
	}
	if x < 0 || x >= 800 {
		t.Errorf("expected x inside the surface, got %f", x)
	}
}

func TestUninstall(t *testing.T) {
	host := newFakeHost(800, 600)
	r := newTestRain(t, host, WithMaxParticles(5))

	r.Uninstall()
	if host.detached != 1 {
		t.Fatalf("expected one detach, got %d", host.detached)
	}
	if !r.AllParticlesDead() {
		t.Error("uninstall should kill every particle")
	}
	if r.State() != StateUninstalled {
		t.Errorf("expected uninstalled, got %s", r.State())
	}

	r.Stop()
	if host.detached != 1 {
		t.Errorf("surface detached twice")
	}
	if r.Tick() {
		t.Error("uninstalled rain should not continue")
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateRunning:       "running",
		StateAllDead:       "all-dead",
		StateUninstalled:   "uninstalled",
		State(9):           "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
