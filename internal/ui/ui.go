//go:build ebiten

// Package ui holds the drawing primitives of the reader shell: text, panels,
// error placeholders, and the fullscreen control strip.
package ui

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"cogcanvas/internal/core"
)

// LineHeight is the vertical advance for one line of shell text.
const LineHeight = 18

var pixel *ebiten.Image

func pixelImage() *ebiten.Image {
	if pixel == nil {
		pixel = ebiten.NewImage(1, 1)
		pixel.Fill(color.White)
	}
	return pixel
}

// DrawText draws one line of text with the baseline at y.
func DrawText(dst *ebiten.Image, s string, x, y int, col color.Color) {
	text.Draw(dst, s, basicfont.Face7x13, x, y, col)
}

// TextWidth measures a string in the shell font.
func TextWidth(s string) int {
	return text.BoundString(basicfont.Face7x13, s).Dx()
}

// WrapText breaks s into lines no wider than maxW pixels, on word
// boundaries where possible.
func WrapText(s string, maxW int) []string {
	if maxW <= 0 {
		return []string{s}
	}
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		var line string
		for _, word := range strings.Fields(paragraph) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if TextWidth(candidate) <= maxW || line == "" {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = word
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// FillRect fills a rectangle.
func FillRect(dst *ebiten.Image, r image.Rectangle, col color.RGBA) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Dx()), float64(r.Dy()))
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	dst.DrawImage(pixelImage(), op)
}

// StrokeRect outlines a rectangle with 1px edges.
func StrokeRect(dst *ebiten.Image, r image.Rectangle, col color.RGBA) {
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	FillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	FillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

// DrawLine draws a line of the given thickness.
func DrawLine(dst *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 || thickness <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	dst.DrawImage(pixelImage(), op)
}

// ErrorPanel renders the inline placeholder used for unknown ids and failed
// units: a bordered box with a title line and an optional detail line.
func ErrorPanel(dst *ebiten.Image, r image.Rectangle, title, detail string) {
	FillRect(dst, r, color.RGBA{R: 40, G: 22, B: 24, A: 255})
	StrokeRect(dst, r, color.RGBA{R: 180, G: 90, B: 90, A: 255})
	x := r.Min.X + 12
	y := r.Min.Y + 24
	DrawText(dst, title, x, y, color.RGBA{R: 235, G: 160, B: 150, A: 255})
	if detail != "" {
		for _, line := range WrapText(detail, r.Dx()-24) {
			y += LineHeight
			if y > r.Max.Y-6 {
				break
			}
			DrawText(dst, line, x, y, color.RGBA{R: 190, G: 140, B: 135, A: 255})
		}
	}
}

// ControlStrip renders the +/- parameter controls for a fullscreen unit.
type ControlStrip struct {
	controls []stripControl
	setter   core.FloatParameterSetter
	getter   core.FloatParameter
}

type stripControl struct {
	control   core.ParameterControl
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	stripPadding = 12
	stripLine    = 30
	buttonSize   = 22
	buttonGap    = 6
	controlColW  = 240
)

// NewControlStrip returns nil when the unit exposes no adjustable
// parameters.
func NewControlStrip(unit core.Unit) *ControlStrip {
	provider, ok := unit.(core.ParameterControlsProvider)
	if !ok {
		return nil
	}
	controls := provider.ParameterControls()
	if len(controls) == 0 {
		return nil
	}
	s := &ControlStrip{}
	for _, c := range controls {
		if c.Type != core.ParamTypeFloat {
			continue
		}
		s.controls = append(s.controls, stripControl{control: c})
	}
	if len(s.controls) == 0 {
		return nil
	}
	s.setter, _ = unit.(core.FloatParameterSetter)
	s.getter, _ = unit.(core.FloatParameter)
	if s.setter == nil || s.getter == nil {
		return nil
	}
	return s
}

// Height reports the strip's pixel height.
func (s *ControlStrip) Height() int {
	return stripPadding*2 + len(s.controls)*stripLine
}

// Layout positions the buttons for a strip anchored at (x, y).
func (s *ControlStrip) Layout(x, y int) {
	for i := range s.controls {
		top := y + stripPadding + i*stripLine
		buttonY := top + (stripLine-buttonSize)/2
		plus := image.Rect(x+controlColW-buttonSize, buttonY, x+controlColW, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		s.controls[i].plusRect = plus
		s.controls[i].minusRect = minus
	}
}

// Click applies a press at (mx, my); it reports whether a button was hit.
func (s *ControlStrip) Click(mx, my int) bool {
	for i := range s.controls {
		c := &s.controls[i]
		direction := 0
		if pointInRect(mx, my, c.minusRect) {
			direction = -1
		} else if pointInRect(mx, my, c.plusRect) {
			direction = 1
		}
		if direction == 0 {
			continue
		}
		value, ok := s.getter.FloatParameter(c.control.Key)
		if !ok {
			return true
		}
		step := c.control.Step
		if step <= 0 {
			step = 0.05
		}
		target := value + float64(direction)*step
		if c.control.HasMin && target < c.control.Min {
			target = c.control.Min
		}
		if c.control.HasMax && target > c.control.Max {
			target = c.control.Max
		}
		if math.Abs(target-value) > 1e-9 {
			s.setter.SetFloatParameter(c.control.Key, target)
		}
		return true
	}
	return false
}

// Draw paints the strip anchored at (x, y). Call Layout first.
func (s *ControlStrip) Draw(dst *ebiten.Image, x, y int) {
	labelCol := color.RGBA{R: 220, G: 220, B: 230, A: 255}
	for i := range s.controls {
		c := &s.controls[i]
		top := y + stripPadding + i*stripLine
		DrawText(dst, c.control.Label, x, top+18, labelCol)
		if value, ok := s.getter.FloatParameter(c.control.Key); ok {
			v := strconv.FormatFloat(value, 'f', 2, 64)
			DrawText(dst, v, c.minusRect.Min.X-buttonGap-TextWidth(v), top+18, labelCol)
		}
		drawButton(dst, c.minusRect, "-")
		drawButton(dst, c.plusRect, "+")
	}
}

func drawButton(dst *ebiten.Image, r image.Rectangle, label string) {
	FillRect(dst, r, color.RGBA{R: 54, G: 56, B: 64, A: 255})
	w := TextWidth(label)
	DrawText(dst, label, r.Min.X+(r.Dx()-w)/2, r.Min.Y+r.Dy()/2+5, color.RGBA{R: 230, G: 230, B: 240, A: 255})
}

func pointInRect(x, y int, r image.Rectangle) bool {
	return x >= r.Min.X && x < r.Max.X && y >= r.Min.Y && y < r.Max.Y
}
