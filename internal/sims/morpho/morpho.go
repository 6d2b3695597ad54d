// Package morpho animates bioelectric morphogenesis: a voltage field
// diffusing from organizer cells across a tissue grid, with cells committing
// to a fate once their potential crosses a threshold. Grid dimensions derive
// from the viewport, so a re-layout re-seeds the field — the documented
// re-initialize fallback for dimension-dependent models.
package morpho

import (
	"image"
	"image/color"
	"strconv"

	"cogcanvas/internal/core"
	"cogcanvas/internal/registry"
	"cogcanvas/internal/render"
)

const cellSize = 6

// Config holds the tunables of the morpho unit.
type Config struct {
	Diffusion float64
	Threshold float64
	Organizer int
	Seed      int64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Diffusion: 0.18, Threshold: 0.35, Organizer: 3, Seed: 11}
}

// FromMap populates a Config from marker attribute values.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["diffusion"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed <= 0.25 {
			c.Diffusion = parsed
		}
	}
	if v, ok := cfg["threshold"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed < 1 {
			c.Threshold = parsed
		}
	}
	if v, ok := cfg["organizers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Organizer = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	return c
}

// Morpho is the unit state.
type Morpho struct {
	cfg Config

	w, h       int
	voltage    []float64
	next       []float64
	committed  []uint8
	organizers []int

	vp    core.Viewport
	frame *image.RGBA
}

// New constructs the unit and seeds its grid.
func New(vp core.Viewport, cfg map[string]string) core.Unit {
	m := &Morpho{cfg: FromMap(cfg)}
	m.Layout(vp)
	return m
}

// Descriptor returns the registry entry for this unit.
func Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:          "morpho",
		Title:       "Bioelectric Morphogenesis",
		Description: "Voltage gradients spreading from organizer cells pattern a sheet of tissue.",
		New:         New,
	}
}

// Layout re-derives the grid from the viewport and re-seeds the field.
func (m *Morpho) Layout(vp core.Viewport) {
	m.vp = vp
	m.frame = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	m.w = vp.Width / cellSize
	m.h = vp.Height / cellSize
	if m.w < 1 {
		m.w = 1
	}
	if m.h < 1 {
		m.h = 1
	}
	total := m.w * m.h
	m.voltage = make([]float64, total)
	m.next = make([]float64, total)
	m.committed = make([]uint8, total)

	rng := core.NewRNG(m.cfg.Seed)
	m.organizers = m.organizers[:0]
	for i := 0; i < m.cfg.Organizer; i++ {
		x := rng.IntN(m.w)
		y := rng.IntN(m.h)
		m.organizers = append(m.organizers, y*m.w+x)
	}
}

// GridSize reports the derived cell dimensions.
func (m *Morpho) GridSize() (int, int) { return m.w, m.h }

// Voltage exposes the field for tests.
func (m *Morpho) Voltage() []float64 { return m.voltage }

// Committed exposes the fate map for tests.
func (m *Morpho) Committed() []uint8 { return m.committed }

// Frame returns the last drawn raster.
func (m *Morpho) Frame() *image.RGBA { return m.frame }

// Step diffuses the voltage field once and commits cells past threshold.
func (m *Morpho) Step() {
	for _, idx := range m.organizers {
		m.voltage[idx] = 1
	}
	w, h := m.w, m.h
	d := m.cfg.Diffusion
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			sum := 0.0
			count := 0
			if x > 0 {
				sum += m.voltage[idx-1]
				count++
			}
			if x+1 < w {
				sum += m.voltage[idx+1]
				count++
			}
			if y > 0 {
				sum += m.voltage[idx-w]
				count++
			}
			if y+1 < h {
				sum += m.voltage[idx+w]
				count++
			}
			v := m.voltage[idx]
			if count > 0 {
				v += d * (sum/float64(count) - v)
			}
			m.next[idx] = v
			if v >= m.cfg.Threshold {
				m.committed[idx] = 1
			}
		}
	}
	m.voltage, m.next = m.next, m.voltage
	for _, idx := range m.organizers {
		m.voltage[idx] = 1
	}
	m.draw()
}

// PointerDown plants a new organizer cell under the cursor.
func (m *Morpho) PointerDown(x, y int) {
	gx := x / cellSize
	gy := y / cellSize
	if gx < 0 || gx >= m.w || gy < 0 || gy >= m.h {
		return
	}
	m.organizers = append(m.organizers, gy*m.w+gx)
}

// PointerDrag is a no-op; organizers are planted per press.
func (m *Morpho) PointerDrag(int, int) {}

// PointerUp is a no-op.
func (m *Morpho) PointerUp(int, int) {}

var (
	restColor   = color.RGBA{R: 16, G: 20, B: 30, A: 255}
	depolarized = color.RGBA{R: 80, G: 200, B: 170, A: 255}
	fateColor   = color.RGBA{R: 235, G: 120, B: 80, A: 255}
)

func (m *Morpho) draw() {
	render.Clear(m.frame, restColor)
	for i, v := range m.voltage {
		gx := (i % m.w) * cellSize
		gy := (i / m.w) * cellSize
		c := render.Lerp(restColor, depolarized, v)
		if m.committed[i] == 1 {
			c = render.Lerp(c, fateColor, 0.65)
		}
		render.FillRect(m.frame, image.Rect(gx, gy, gx+cellSize, gy+cellSize), c)
	}
}
