// Package homeostat animates homeostatic regulation: a sensed variable
// disturbed by noise and pulled back toward a setpoint by a proportional
// controller, drawn as a scrolling trace. Clicking injects a perturbation at
// the click height; the setpoint and gain are exposed as adjustable
// parameters.
package homeostat

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
	dt         = 1.0 / 60.0
	historyLen = 360
)

// Config holds the tunables of the homeostat unit.
type Config struct {
	Setpoint float64
	Gain     float64
	Noise    float64
	Seed     int64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Setpoint: 0.5, Gain: 2.2, Noise: 0.15, Seed: 3}
}

// FromMap populates a Config from marker attribute values.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["setpoint"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Setpoint = parsed
		}
	}
	if v, ok := cfg["gain"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Gain = parsed
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

// Homeostat is the unit state.
type Homeostat struct {
	cfg Config
	rng *core.RNG

	value    float64
	velocity float64
	history  []float64

	vp    core.Viewport
	frame *image.RGBA
}

// New constructs the unit at its setpoint.
func New(vp core.Viewport, cfg map[string]string) core.Unit {
	h := &Homeostat{cfg: FromMap(cfg)}
	h.rng = core.NewRNG(h.cfg.Seed)
	h.value = h.cfg.Setpoint
	h.history = make([]float64, 0, historyLen)
	h.Layout(vp)
	return h
}

// Descriptor returns the registry entry for this unit.
func Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:          "homeostat",
		Title:       "Homeostatic Regulation",
		Description: "A regulated variable returning to its setpoint against noise and perturbation.",
		New:         New,
	}
}

// Layout resizes the frame; the trace history is viewport-independent.
func (h *Homeostat) Layout(vp core.Viewport) {
	h.vp = vp
	h.frame = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
}

// Frame returns the last drawn raster.
func (h *Homeostat) Frame() *image.RGBA { return h.frame }

// Value exposes the regulated variable for tests.
func (h *Homeostat) Value() float64 { return h.value }

// Step integrates one controller tick and appends to the trace.
func (h *Homeostat) Step() {
	disturbance := h.rng.Range(-h.cfg.Noise, h.cfg.Noise)
	control := -h.cfg.Gain * (h.value - h.cfg.Setpoint)
	h.velocity += (control + disturbance) * dt
	h.velocity *= 0.95
	h.value += h.velocity

	if h.value < 0 {
		h.value = 0
		h.velocity = 0
	}
	if h.value > 1 {
		h.value = 1
		h.velocity = 0
	}

	h.history = append(h.history, h.value)
	if len(h.history) > historyLen {
		h.history = h.history[1:]
	}
	h.draw()
}

// PointerDown perturbs the variable toward the click height.
func (h *Homeostat) PointerDown(_, y int) {
	if h.vp.Height <= 0 {
		return
	}
	target := 1 - float64(y)/float64(h.vp.Height)
	h.velocity += (target - h.value) * 0.4
}

// PointerDrag keeps pulling toward the cursor height.
func (h *Homeostat) PointerDrag(x, y int) { h.PointerDown(x, y) }

// PointerUp is a no-op; regulation takes over.
func (h *Homeostat) PointerUp(int, int) {}

// ParameterControls exposes setpoint and gain to the control strip.
func (h *Homeostat) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "setpoint", Label: "Setpoint", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "gain", Label: "Gain", Type: core.ParamTypeFloat, Step: 0.2, Min: 0.2, Max: 8, HasMin: true, HasMax: true},
	}
}

// SetFloatParameter applies a control strip adjustment.
func (h *Homeostat) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "setpoint":
		if value < 0 || value > 1 {
			return false
		}
		h.cfg.Setpoint = value
	case "gain":
		if value <= 0 {
			return false
		}
		h.cfg.Gain = value
	default:
		return false
	}
	return true
}

// FloatParameter reads a parameter back for display.
func (h *Homeostat) FloatParameter(key string) (float64, bool) {
	switch key {
	case "setpoint":
		return h.cfg.Setpoint, true
	case "gain":
		return h.cfg.Gain, true
	}
	return 0, false
}

func (h *Homeostat) draw() {
	w := h.vp.Width
	fh := float64(h.vp.Height)
	render.Clear(h.frame, color.RGBA{R: 12, G: 14, B: 22, A: 255})

	setY := (1 - h.cfg.Setpoint) * fh
	render.StrokeLine(h.frame, 0, setY, float64(w), setY, 1, color.RGBA{R: 70, G: 80, B: 100, A: 255})

	if len(h.history) < 2 {
		return
	}
	stride := float64(w) / float64(historyLen-1)
	traceColor := color.RGBA{R: 240, G: 196, B: 90, A: 255}
	for i := 1; i < len(h.history); i++ {
		x1 := float64(i-1) * stride
		x2 := float64(i) * stride
		y1 := (1 - h.history[i-1]) * fh
		y2 := (1 - h.history[i]) * fh
		render.StrokeLine(h.frame, x1, y1, x2, y2, 2, traceColor)
	}

	headX := float64(len(h.history)-1) * stride
	headY := (1 - h.value) * fh
	render.FillDisc(h.frame, headX, headY, math.Max(3, fh*0.012), color.RGBA{R: 96, G: 170, B: 220, A: 255})
}
