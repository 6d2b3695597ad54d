// Package gradient animates free-energy minimization: particles descending a
// double-well potential under noise, settling into the basins. Particle state
// is normalized and survives re-layout; the background field raster is
// recomputed per viewport.
package gradient

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"cogcanvas/internal/core"
	"cogcanvas/internal/registry"
	"cogcanvas/internal/render"
)

const dt = 1.0 / 60.0

// Config holds the tunables of the gradient unit.
type Config struct {
	Particles int
	Noise     float64
	Seed      int64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Particles: 120, Noise: 0.12, Seed: 5}
}

// FromMap populates a Config from marker attribute values.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["particles"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Particles = parsed
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
	x, y float64
}

// Gradient is the unit state.
type Gradient struct {
	cfg Config
	rng *core.RNG

	particles  []particle
	background *image.RGBA

	vp    core.Viewport
	frame *image.RGBA
}

// New constructs the unit with particles scattered uniformly.
func New(vp core.Viewport, cfg map[string]string) core.Unit {
	g := &Gradient{cfg: FromMap(cfg)}
	g.rng = core.NewRNG(g.cfg.Seed)
	g.particles = make([]particle, g.cfg.Particles)
	for i := range g.particles {
		g.particles[i] = particle{x: g.rng.Float(), y: g.rng.Float()}
	}
	g.Layout(vp)
	return g
}

// Descriptor returns the registry entry for this unit.
func Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:          "gradient",
		Title:       "Free-Energy Descent",
		Description: "Particles rolling down a surprise landscape into its basins of attraction.",
		New:         New,
	}
}

// potential is a double well in normalized coordinates: two basins at
// (0.3, 0.5) and (0.72, 0.45) of different depths.
func potential(x, y float64) float64 {
	return well(x, y, 0.30, 0.50, 1.0) + well(x, y, 0.72, 0.45, 0.7)
}

func well(x, y, cx, cy, depth float64) float64 {
	dx := x - cx
	dy := y - cy
	return -depth * math.Exp(-(dx*dx+dy*dy)/0.02)
}

// gradientAt returns the finite-difference gradient of the potential.
func gradientAt(x, y float64) (float64, float64) {
	const eps = 1e-3
	gx := (potential(x+eps, y) - potential(x-eps, y)) / (2 * eps)
	gy := (potential(x, y+eps) - potential(x, y-eps)) / (2 * eps)
	return gx, gy
}

// Layout recomputes the background field raster; particles are kept.
func (g *Gradient) Layout(vp core.Viewport) {
	g.vp = vp
	g.frame = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	g.background = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))

	low := color.RGBA{R: 30, G: 42, B: 70, A: 255}
	high := color.RGBA{R: 12, G: 14, B: 22, A: 255}
	for y := 0; y < vp.Height; y++ {
		for x := 0; x < vp.Width; x++ {
			v := potential(float64(x)/float64(vp.Width), float64(y)/float64(vp.Height))
			// v ranges roughly [-1, 0]; deeper is brighter
			t := math.Min(1, math.Max(0, -v))
			c := render.Lerp(high, low, t)
			i := g.background.PixOffset(x, y)
			g.background.Pix[i+0] = c.R
			g.background.Pix[i+1] = c.G
			g.background.Pix[i+2] = c.B
			g.background.Pix[i+3] = c.A
		}
	}
}

// Frame returns the last drawn raster.
func (g *Gradient) Frame() *image.RGBA { return g.frame }

// Particles exposes positions for tests.
func (g *Gradient) Particles() []struct{ X, Y float64 } {
	out := make([]struct{ X, Y float64 }, len(g.particles))
	for i, p := range g.particles {
		out[i] = struct{ X, Y float64 }{p.x, p.y}
	}
	return out
}

// Step moves every particle one gradient-descent-with-noise tick.
func (g *Gradient) Step() {
	for i := range g.particles {
		p := &g.particles[i]
		gx, gy := gradientAt(p.x, p.y)
		p.x += (-gx*0.05 + g.rng.Range(-g.cfg.Noise, g.cfg.Noise)) * dt
		p.y += (-gy*0.05 + g.rng.Range(-g.cfg.Noise, g.cfg.Noise)) * dt
		if p.x < 0 {
			p.x = 0
		}
		if p.x > 1 {
			p.x = 1
		}
		if p.y < 0 {
			p.y = 0
		}
		if p.y > 1 {
			p.y = 1
		}
	}
	g.draw()
}

// PointerDown scatters nearby particles away from the cursor.
func (g *Gradient) PointerDown(x, y int) {
	if g.vp.Width <= 0 || g.vp.Height <= 0 {
		return
	}
	cx := float64(x) / float64(g.vp.Width)
	cy := float64(y) / float64(g.vp.Height)
	for i := range g.particles {
		p := &g.particles[i]
		dx := p.x - cx
		dy := p.y - cy
		d2 := dx*dx + dy*dy
		if d2 < 0.02 && d2 > 1e-8 {
			d := math.Sqrt(d2)
			p.x += dx / d * 0.05
			p.y += dy / d * 0.05
		}
	}
}

// PointerDrag keeps scattering.
func (g *Gradient) PointerDrag(x, y int) { g.PointerDown(x, y) }

// PointerUp is a no-op.
func (g *Gradient) PointerUp(int, int) {}

func (g *Gradient) draw() {
	copy(g.frame.Pix, g.background.Pix)
	w := float64(g.vp.Width)
	h := float64(g.vp.Height)
	for _, p := range g.particles {
		render.FillDisc(g.frame, p.x*w, p.y*h, math.Max(1.5, math.Min(w, h)*0.005),
			color.RGBA{R: 240, G: 196, B: 90, A: 255})
	}
}
