package doc

import (
	"image"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"cogcanvas/internal/core"
	"cogcanvas/internal/host"
	"cogcanvas/internal/marker"
	"cogcanvas/internal/registry"
	"cogcanvas/internal/vault"
)

type stub struct {
	frame       *image.RGBA
	steps       int
	panicOnStep bool
}

func (s *stub) Layout(vp core.Viewport) {
	s.frame = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
}
func (s *stub) Step() {
	if s.panicOnStep {
		panic("stub fault")
	}
	s.steps++
}
func (s *stub) Frame() *image.RGBA { return s.frame }

func stubFactory(panicky bool) core.Factory {
	return func(vp core.Viewport, cfg map[string]string) core.Unit {
		s := &stub{panicOnStep: panicky}
		s.Layout(vp)
		return s
	}
}

func testEnv(t *testing.T) (*host.Host, *core.Scheduler, *registry.Registry) {
	t.Helper()
	sched := core.NewScheduler()
	h := host.New(sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
	reg := registry.MustNew(
		registry.Descriptor{ID: "ok", Title: "Works", New: stubFactory(false)},
		registry.Descriptor{ID: "boom", Title: "Faults", New: stubFactory(true)},
	)
	return h, sched, reg
}

func layout() Layout { return Layout{ContainerW: 600} }

func TestAssemblePreservesOrder(t *testing.T) {
	h, _, reg := testEnv(t)
	segments := marker.Parse("intro\n::sim[ok]\nmiddle\n::sim[missing]\noutro")
	blocks := Assemble(segments, h, reg, layout())

	if len(blocks) != 5 {
		t.Fatalf("blocks = %d, want 5", len(blocks))
	}
	if b, ok := blocks[0].(TextBlock); !ok || b.Markdown != "intro" {
		t.Fatalf("block 0 = %#v", blocks[0])
	}
	if _, ok := blocks[1].(SimBlock); !ok {
		t.Fatalf("block 1 = %#v", blocks[1])
	}
	if b, ok := blocks[3].(MissingBlock); !ok || b.ID != "missing" {
		t.Fatalf("block 3 = %#v", blocks[3])
	}
}

func TestUnknownIDIsolation(t *testing.T) {
	h, sched, reg := testEnv(t)
	// the bad embed comes first; the valid one must still mount
	blocks := Assemble(marker.Parse("::sim[nope]\n::sim[ok]"), h, reg, layout())

	missing, ok := blocks[0].(MissingBlock)
	if !ok || missing.ID != "nope" {
		t.Fatalf("block 0 = %#v", blocks[0])
	}
	sim, ok := blocks[1].(SimBlock)
	if !ok {
		t.Fatalf("block 1 = %#v", blocks[1])
	}
	if sim.Mount.State() != host.StateActive {
		t.Fatalf("valid mount state = %v", sim.Mount.State())
	}
	if sched.Pending() != 1 {
		t.Fatalf("pending = %d, want 1 (only the valid mount)", sched.Pending())
	}
}

func TestDuplicateEmbedsGetIndependentMounts(t *testing.T) {
	h, sched, reg := testEnv(t)
	blocks := Assemble(marker.Parse("::sim[ok]\n::sim[ok]"), h, reg, layout())

	first := blocks[0].(SimBlock).Mount
	second := blocks[1].(SimBlock).Mount
	if first == second || first.Instance() == second.Instance() {
		t.Fatal("duplicate embeds share a mount")
	}
	first.Unmount()
	sched.Tick()
	if second.State() != host.StateActive {
		t.Fatalf("sibling state = %v after first unmounted", second.State())
	}
	if sched.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", sched.Pending())
	}
}

func TestFaultIsolationEndToEnd(t *testing.T) {
	h, sched, reg := testEnv(t)
	blocks := Assemble(marker.Parse("prose\n::sim[boom]\nmore prose\n::sim[ok]"), h, reg, layout())

	for i := 0; i < 5; i++ {
		sched.Tick()
	}

	var failed, active int
	for _, b := range blocks {
		sim, ok := b.(SimBlock)
		if !ok {
			continue
		}
		switch sim.Mount.State() {
		case host.StateFailed:
			failed++
			if sim.Mount.Fault() == "" {
				t.Fatal("failed mount has no diagnostic")
			}
		case host.StateActive:
			active++
		}
	}
	if failed != 1 || active != 1 {
		t.Fatalf("failed=%d active=%d, want exactly one of each", failed, active)
	}
}

func testVault(t *testing.T) *vault.Vault {
	t.Helper()
	v, err := vault.Load(fstest.MapFS{
		"manifest.yaml": {Data: []byte("title: Essay\nsections: [one, two]\n")},
		"one.md": {Data: []byte(`---
title: One
refs:
  - key: friston2010
    citation: "Friston 2010"
---

First section.

::sim[ok]
`)},
		"two.md": {Data: []byte(`---
title: Two
refs:
  - key: friston2010
    citation: "Friston 2010"
  - key: ashby1952
    citation: "Ashby 1952"
---

Second section. [[one]]
`)},
	})
	if err != nil {
		t.Fatalf("vault.Load: %v", err)
	}
	return v
}

func TestNavigationUnmountsPreviousSection(t *testing.T) {
	h, sched, reg := testEnv(t)
	d := NewDocument(testVault(t), h, reg, layout())

	d.Open(0)
	if d.Current() == nil || d.Current().Slug != "one" {
		t.Fatalf("current = %+v", d.Current())
	}
	if sched.Pending() != 1 {
		t.Fatalf("pending = %d after opening section one", sched.Pending())
	}

	var firstMount *host.Mount
	for _, b := range d.Current().Blocks {
		if sim, ok := b.(SimBlock); ok {
			firstMount = sim.Mount
		}
	}

	d.Next()
	if d.Current().Slug != "two" {
		t.Fatalf("current = %q", d.Current().Slug)
	}
	if firstMount.State() != host.StateUnmounted {
		t.Fatalf("previous section mount state = %v", firstMount.State())
	}
	if sched.Pending() != 0 {
		t.Fatalf("pending = %d after navigating to sim-free section", sched.Pending())
	}

	d.Prev()
	if d.Current().Slug != "one" {
		t.Fatalf("current = %q after Prev", d.Current().Slug)
	}
	d.Close()
	if sched.Pending() != 0 {
		t.Fatalf("pending = %d after Close", sched.Pending())
	}
}

func TestBibliographyDedupesAcrossSections(t *testing.T) {
	h, _, reg := testEnv(t)
	d := NewDocument(testVault(t), h, reg, layout())
	refs := d.Bibliography()
	if len(refs) != 2 {
		t.Fatalf("refs = %+v, want 2 deduped entries", refs)
	}
	if refs[0].Key != "ashby1952" || refs[1].Key != "friston2010" {
		t.Fatalf("refs order = %+v", refs)
	}
}

func TestGraphFromDocument(t *testing.T) {
	h, _, reg := testEnv(t)
	d := NewDocument(testVault(t), h, reg, layout())
	g := d.Graph()
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("graph = %+v", g)
	}
	if g.Edges[0] != (vault.GraphEdge{From: "two", To: "one"}) {
		t.Fatalf("edge = %+v", g.Edges[0])
	}
}
