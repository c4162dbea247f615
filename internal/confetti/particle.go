package confetti

import "image/color"

const (
	minRadius = 10
	maxRadius = 30

	minDensity = 10

	minTiltIncrement   = 0.05
	tiltIncrementRange = 0.07
)

// Particle is a single confetti flake.
type Particle struct {
	x, y          float64
	r             float64
	d             float64
	color         color.RGBA
	tilt          float64
	tiltAngle     float64
	tiltIncrement float64
	dead          bool
}

func newParticle(c color.RGBA, width, height int, densityScale float64, rnd Random) *Particle {
	w, h := float64(width), float64(height)
	return &Particle{
		x:             rnd.Float64() * w,
		y:             rnd.Float64()*h - h,
		r:             float64(randomInt(rnd, minRadius, maxRadius)),
		d:             rnd.Float64()*densityScale + minDensity,
		color:         c,
		tilt:          randomTilt(rnd),
		tiltIncrement: rnd.Float64()*tiltIncrementRange + minTiltIncrement,
	}
}

// Render strokes the flake as a short tilted segment. Dead flakes draw nothing.
func (p *Particle) Render(s Surface) {
	if p.dead {
		return
	}
	s.BeginPath()
	s.SetLineWidth(p.r / 2)
	s.SetStrokeColor(p.color)
	s.MoveTo(p.x+p.tilt+p.r/4, p.y)
	s.LineTo(p.x+p.tilt, p.y+p.tilt+p.r/4)
	s.Stroke()
}

// Kill marks the flake dead. It stays inert for the rest of the run.
func (p *Particle) Kill() { p.dead = true }

func (p *Particle) Alive() bool { return !p.dead }

// Position returns the flake's horizontal and vertical coordinates.
func (p *Particle) Position() (x, y float64) { return p.x, p.y }

func (p *Particle) Radius() float64  { return p.r }
func (p *Particle) Density() float64 { return p.d }
func (p *Particle) Tilt() float64    { return p.tilt }

// TiltAngle is the flake's own oscillation phase.
func (p *Particle) TiltAngle() float64 { return p.tiltAngle }

func (p *Particle) TiltIncrement() float64 { return p.tiltIncrement }
func (p *Particle) Color() color.RGBA      { return p.color }

func (p *Particle) reposition(x, y, tilt float64) {
	p.x = x
	p.y = y
	p.tilt = tilt
}

// randomInt returns an integer in [from, to].
func randomInt(rnd Random, from, to int) int {
	return rnd.Intn(to-from+1) + from
}

// randomTilt returns an integer tilt in [-10, 0).
func randomTilt(rnd Random) float64 {
	return float64(rnd.Intn(10) - 10)
}
