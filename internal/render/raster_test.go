package render

import (
	"image"
	"image/color"
	"testing"
)

func at(frame *image.RGBA, x, y int) color.RGBA {
	i := frame.PixOffset(x, y)
	return color.RGBA{R: frame.Pix[i], G: frame.Pix[i+1], B: frame.Pix[i+2], A: frame.Pix[i+3]}
}

func TestClearFillsEveryPixel(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 3))
	c := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	Clear(frame, c)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if at(frame, x, y) != c {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, at(frame, x, y), c)
			}
		}
	}
}

func TestFillRectClips(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	c := color.RGBA{R: 255, A: 255}
	FillRect(frame, image.Rect(2, 2, 10, 10), c)
	if at(frame, 3, 3) != c {
		t.Fatalf("inside pixel not filled")
	}
	if at(frame, 1, 1) == c {
		t.Fatalf("pixel outside rect was filled")
	}
}

func TestBlitBinaryScales(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 2))
	on := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	off := color.RGBA{A: 255}
	// 2x1 grid at scale 2: left cell on, right cell off.
	BlitBinary(frame, []uint8{1, 0}, 2, 2, on, off)
	if at(frame, 0, 0) != on || at(frame, 1, 1) != on {
		t.Fatalf("left cell block not on")
	}
	if at(frame, 2, 0) != off || at(frame, 3, 1) != off {
		t.Fatalf("right cell block not off")
	}
}

func TestBlitPaletteClampsHighValues(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 2, 1))
	palette := []color.RGBA{{A: 255}, {R: 200, A: 255}}
	BlitPalette(frame, []uint8{0, 9}, 2, 1, palette)
	if at(frame, 1, 0) != palette[1] {
		t.Fatalf("out-of-range value not clamped to last palette entry")
	}
}

func TestLerpEndpoints(t *testing.T) {
	a := color.RGBA{R: 0, G: 100, B: 200, A: 255}
	b := color.RGBA{R: 100, G: 0, B: 100, A: 255}
	if Lerp(a, b, 0) != a {
		t.Fatalf("t=0 should return first color")
	}
	if Lerp(a, b, 1) != b {
		t.Fatalf("t=1 should return second color")
	}
	if Lerp(a, b, -5) != a || Lerp(a, b, 5) != b {
		t.Fatalf("t outside [0,1] should clamp")
	}
}
