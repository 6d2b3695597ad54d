package gradient

import (
	"testing"

	"cogcanvas/internal/core"
)

func TestParticlesDescendThePotential(t *testing.T) {
	u := New(core.Viewport{Width: 160, Height: 100}, map[string]string{"noise": "0", "seed": "2"})
	g := u.(*Gradient)

	mean := func() float64 {
		total := 0.0
		for _, p := range g.Particles() {
			total += potential(p.X, p.Y)
		}
		return total / float64(len(g.Particles()))
	}

	before := mean()
	for i := 0; i < 600; i++ {
		g.Step()
	}
	after := mean()
	if after >= before {
		t.Fatalf("mean potential did not decrease: %f -> %f", before, after)
	}
}

func TestParticlesStayInBounds(t *testing.T) {
	u := New(core.Viewport{Width: 160, Height: 100}, map[string]string{"seed": "6"})
	g := u.(*Gradient)
	for i := 0; i < 300; i++ {
		g.Step()
	}
	for i, p := range g.Particles() {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Fatalf("particle %d out of bounds: (%f, %f)", i, p.X, p.Y)
		}
	}
}

func TestLayoutKeepsParticlesAndResizesFrame(t *testing.T) {
	u := New(core.Viewport{Width: 160, Height: 100}, map[string]string{"noise": "0"})
	g := u.(*Gradient)
	for i := 0; i < 50; i++ {
		g.Step()
	}
	before := g.Particles()
	g.Layout(core.Viewport{Width: 320, Height: 200})
	after := g.Particles()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d moved across Layout", i)
		}
	}
	if b := g.Frame().Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("frame = %dx%d", b.Dx(), b.Dy())
	}
}
