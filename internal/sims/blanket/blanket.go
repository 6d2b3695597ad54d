// Package blanket animates a Markov blanket: internal states held behind an
// elastic membrane of blanket nodes, with external states drifting past.
// The model lives in normalized [0,1] coordinates, so a viewport change only
// rescales the drawing and accumulated state survives re-layout.
package blanket

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"cogcanvas/internal/core"
	"cogcanvas/internal/registry"
	"cogcanvas/internal/render"
)

const (
	membraneNodes  = 48
	membraneRadius = 0.30
	centerX        = 0.5
	centerY        = 0.5

	dt = 1.0 / 60.0
)

// Config holds the tunables of the blanket unit.
type Config struct {
	Internal int
	External int
	Noise    float64
	Seed     int64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Internal: 26, External: 90, Noise: 0.05, Seed: 7}
}

// FromMap populates a Config from marker attribute values.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["internal"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Internal = parsed
		}
	}
	if v, ok := cfg["external"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.External = parsed
		}
	}
	if v, ok := cfg["noise"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Noise = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	return c
}

type particle struct {
	x, y   float64
	vx, vy float64
}

// Blanket is the unit state.
type Blanket struct {
	cfg Config
	rng *core.RNG

	internal []particle
	external []particle
	membrane []particle

	pressX, pressY float64
	pressing       bool

	vp    core.Viewport
	frame *image.RGBA
}

// New constructs the unit and seeds its model.
func New(vp core.Viewport, cfg map[string]string) core.Unit {
	b := &Blanket{cfg: FromMap(cfg)}
	b.seed()
	b.Layout(vp)
	return b
}

// Descriptor returns the registry entry for this unit.
func Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:          "blanket",
		Title:       "Markov Blanket",
		Description: "Internal states insulated from external flow by an elastic sensory-active membrane.",
		New:         New,
	}
}

func (b *Blanket) seed() {
	b.rng = core.NewRNG(b.cfg.Seed)
	b.internal = make([]particle, b.cfg.Internal)
	for i := range b.internal {
		angle := b.rng.Range(0, 2*math.Pi)
		radius := membraneRadius * 0.7 * math.Sqrt(b.rng.Float())
		b.internal[i] = particle{
			x: centerX + radius*math.Cos(angle),
			y: centerY + radius*math.Sin(angle),
		}
	}
	b.external = make([]particle, b.cfg.External)
	for i := range b.external {
		b.external[i] = particle{
			x:  b.rng.Float(),
			y:  b.rng.Float(),
			vx: b.rng.Range(0.02, 0.08),
			vy: b.rng.Range(-0.01, 0.01),
		}
	}
	b.membrane = make([]particle, membraneNodes)
	for i := range b.membrane {
		angle := 2 * math.Pi * float64(i) / membraneNodes
		b.membrane[i] = particle{
			x: centerX + membraneRadius*math.Cos(angle),
			y: centerY + membraneRadius*math.Sin(angle),
		}
	}
}

// Layout resizes the frame. Model state is viewport-independent and is kept.
func (b *Blanket) Layout(vp core.Viewport) {
	b.vp = vp
	b.frame = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
}

// Frame returns the last drawn raster.
func (b *Blanket) Frame() *image.RGBA { return b.frame }

// Step advances membrane, internal jitter, and external drift by one tick.
func (b *Blanket) Step() {
	b.stepExternal()
	b.stepMembrane()
	b.stepInternal()
	b.draw()
}

func (b *Blanket) stepExternal() {
	for i := range b.external {
		p := &b.external[i]
		p.vy += b.rng.Range(-b.cfg.Noise, b.cfg.Noise) * dt * 10
		if b.pressing {
			dx := p.x - b.pressX
			dy := p.y - b.pressY
			d2 := dx*dx + dy*dy
			if d2 < 0.04 && d2 > 1e-6 {
				d := math.Sqrt(d2)
				push := 0.6 * (0.2 - d) / 0.2
				p.vx += dx / d * push * dt * 10
				p.vy += dy / d * push * dt * 10
			}
		}
		// the membrane deflects outside flow
		dx := p.x - centerX
		dy := p.y - centerY
		dist := math.Hypot(dx, dy)
		if dist < membraneRadius+0.02 && dist > 1e-6 {
			p.vx += dx / dist * 0.5 * dt * 10
			p.vy += dy / dist * 0.5 * dt * 10
		}
		p.x += p.vx * dt
		p.y += p.vy * dt
		p.vy *= 0.99
		if p.x > 1.02 {
			p.x = -0.02
			p.y = b.rng.Float()
			p.vx = b.rng.Range(0.02, 0.08)
			p.vy = 0
		}
		if p.y < -0.02 {
			p.y = 1.02
		}
		if p.y > 1.02 {
			p.y = -0.02
		}
	}
}

func (b *Blanket) stepMembrane() {
	const (
		radialSpring   = 6.0
		neighborSpring = 10.0
		damping        = 0.90
	)
	n := len(b.membrane)
	for i := range b.membrane {
		p := &b.membrane[i]
		angle := 2 * math.Pi * float64(i) / float64(n)
		restX := centerX + membraneRadius*math.Cos(angle)
		restY := centerY + membraneRadius*math.Sin(angle)
		p.vx += (restX - p.x) * radialSpring * dt
		p.vy += (restY - p.y) * radialSpring * dt

		prev := b.membrane[(i+n-1)%n]
		next := b.membrane[(i+1)%n]
		p.vx += (prev.x + next.x - 2*p.x) * neighborSpring * dt
		p.vy += (prev.y + next.y - 2*p.y) * neighborSpring * dt

		// external particles dent the membrane as they pass
		for j := range b.external {
			dx := p.x - b.external[j].x
			dy := p.y - b.external[j].y
			d2 := dx*dx + dy*dy
			if d2 < 0.0009 && d2 > 1e-8 {
				d := math.Sqrt(d2)
				p.vx += dx / d * 0.3 * dt
				p.vy += dy / d * 0.3 * dt
			}
		}
	}
	for i := range b.membrane {
		p := &b.membrane[i]
		p.x += p.vx * dt
		p.y += p.vy * dt
		p.vx *= damping
		p.vy *= damping
	}
}

func (b *Blanket) stepInternal() {
	for i := range b.internal {
		p := &b.internal[i]
		p.vx += b.rng.Range(-b.cfg.Noise, b.cfg.Noise) * dt * 6
		p.vy += b.rng.Range(-b.cfg.Noise, b.cfg.Noise) * dt * 6
		// soft confinement well inside the membrane
		dx := p.x - centerX
		dy := p.y - centerY
		dist := math.Hypot(dx, dy)
		if dist > membraneRadius*0.8 && dist > 1e-6 {
			p.vx -= dx / dist * 0.8 * dt
			p.vy -= dy / dist * 0.8 * dt
		}
		p.x += p.vx * dt
		p.y += p.vy * dt
		p.vx *= 0.98
		p.vy *= 0.98
	}
}

// PointerDown starts perturbing the external medium at the cursor.
func (b *Blanket) PointerDown(x, y int) {
	b.pressing = true
	b.setPress(x, y)
}

// PointerDrag moves the perturbation.
func (b *Blanket) PointerDrag(x, y int) {
	if b.pressing {
		b.setPress(x, y)
	}
}

// PointerUp ends the perturbation.
func (b *Blanket) PointerUp(int, int) { b.pressing = false }

func (b *Blanket) setPress(x, y int) {
	if b.vp.Width > 0 && b.vp.Height > 0 {
		b.pressX = float64(x) / float64(b.vp.Width)
		b.pressY = float64(y) / float64(b.vp.Height)
	}
}

func (b *Blanket) draw() {
	w := float64(b.vp.Width)
	h := float64(b.vp.Height)
	scale := math.Min(w, h)

	render.Clear(b.frame, color.RGBA{R: 12, G: 14, B: 22, A: 255})

	for _, p := range b.external {
		render.FillDisc(b.frame, p.x*w, p.y*h, scale*0.004+1, color.RGBA{R: 110, G: 116, B: 130, A: 255})
	}

	n := len(b.membrane)
	for i, p := range b.membrane {
		next := b.membrane[(i+1)%n]
		render.StrokeLine(b.frame, p.x*w, p.y*h, next.x*w, next.y*h, scale*0.004+1,
			color.RGBA{R: 96, G: 170, B: 220, A: 255})
	}

	for _, p := range b.internal {
		render.FillDisc(b.frame, p.x*w, p.y*h, scale*0.006+1, color.RGBA{R: 240, G: 196, B: 90, A: 255})
	}
}
