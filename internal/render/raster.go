// Package render provides the raster helpers simulation units draw with.
// Everything operates on a plain *image.RGBA so units stay headless; the GUI
// shell uploads the finished frame to the screen.
package render

import (
	"image"
	"image/color"
	"math"
)

// Clear fills the whole frame with the given color.
func Clear(frame *image.RGBA, c color.RGBA) {
	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		base := frame.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			i := base + x*4
			frame.Pix[i+0] = c.R
			frame.Pix[i+1] = c.G
			frame.Pix[i+2] = c.B
			frame.Pix[i+3] = c.A
		}
	}
}

// FillRect fills the axis-aligned rectangle, clipped to the frame.
func FillRect(frame *image.RGBA, rect image.Rectangle, c color.RGBA) {
	r := rect.Intersect(frame.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setPixel(frame, x, y, c)
		}
	}
}

// FillDisc fills a disc centered at (cx, cy), clipped to the frame.
func FillDisc(frame *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	if radius <= 0 {
		return
	}
	minX := int(math.Floor(cx - radius))
	maxX := int(math.Ceil(cx + radius))
	minY := int(math.Floor(cy - radius))
	maxY := int(math.Ceil(cy + radius))
	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				setPixel(frame, x, y, c)
			}
		}
	}
}

// StrokeLine draws a line of the given thickness between two points.
func StrokeLine(frame *image.RGBA, x1, y1, x2, y2, thickness float64, c color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		FillDisc(frame, x1, y1, thickness/2, c)
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	steps := int(math.Ceil(length))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		FillDisc(frame, x1+dx*t, y1+dy*t, thickness/2, c)
	}
}

// BlitBinary expands binary cell data (0/1) into the frame, one cell per
// scale×scale pixel block, row-major with the given grid width.
func BlitBinary(frame *image.RGBA, cells []uint8, gridW, scale int, on, off color.RGBA) {
	if gridW <= 0 || scale <= 0 {
		return
	}
	for i, v := range cells {
		c := off
		if v != 0 {
			c = on
		}
		gx := (i % gridW) * scale
		gy := (i / gridW) * scale
		FillRect(frame, image.Rect(gx, gy, gx+scale, gy+scale), c)
	}
}

// BlitPalette expands cell values into the frame through a palette, clamping
// out-of-range values to the last entry. An empty palette clears nothing.
func BlitPalette(frame *image.RGBA, cells []uint8, gridW, scale int, palette []color.RGBA) {
	if gridW <= 0 || scale <= 0 || len(palette) == 0 {
		return
	}
	last := len(palette) - 1
	for i, v := range cells {
		idx := int(v)
		if idx > last {
			idx = last
		}
		gx := (i % gridW) * scale
		gy := (i / gridW) * scale
		FillRect(frame, image.Rect(gx, gy, gx+scale, gy+scale), palette[idx])
	}
}

// Lerp interpolates between two colors with t clamped to [0, 1].
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func setPixel(frame *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(frame.Bounds()) {
		return
	}
	i := frame.PixOffset(x, y)
	frame.Pix[i+0] = c.R
	frame.Pix[i+1] = c.G
	frame.Pix[i+2] = c.B
	frame.Pix[i+3] = c.A
}
