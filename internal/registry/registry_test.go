package registry

import (
	"image"
	"strings"
	"testing"

	"cogcanvas/internal/core"
)

type nullUnit struct{ frame *image.RGBA }

func (u *nullUnit) Layout(vp core.Viewport) {
	u.frame = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
}
func (u *nullUnit) Step()               {}
func (u *nullUnit) Frame() *image.RGBA  { return u.frame }

func nullFactory(vp core.Viewport, cfg map[string]string) core.Unit {
	u := &nullUnit{}
	u.Layout(vp)
	return u
}

func TestLookupResolvesAndReportsMissing(t *testing.T) {
	reg, err := New(
		Descriptor{ID: "blanket", Title: "Markov Blanket", New: nullFactory},
		Descriptor{ID: "morpho", Title: "Morphogenesis", New: nullFactory},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, ok := reg.Lookup("blanket")
	if !ok || d.Title != "Markov Blanket" {
		t.Fatalf("Lookup(blanket) = %+v, %v", d, ok)
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Fatal("Lookup of unregistered id reported ok")
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}
}

func TestNewRejectsDuplicateID(t *testing.T) {
	_, err := New(
		Descriptor{ID: "x", New: nullFactory},
		Descriptor{ID: "x", New: nullFactory},
	)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("want duplicate-id error, got %v", err)
	}
}

func TestNewRejectsEmptyIDAndNilFactory(t *testing.T) {
	if _, err := New(Descriptor{ID: "  ", New: nullFactory}); err == nil {
		t.Fatal("want error for blank id")
	}
	if _, err := New(Descriptor{ID: "ok"}); err == nil {
		t.Fatal("want error for nil factory")
	}
}

func TestMustNewPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustNew did not panic on duplicate id")
		}
	}()
	MustNew(
		Descriptor{ID: "x", New: nullFactory},
		Descriptor{ID: "x", New: nullFactory},
	)
}

func TestIDsSorted(t *testing.T) {
	reg := MustNew(
		Descriptor{ID: "c", New: nullFactory},
		Descriptor{ID: "a", New: nullFactory},
		Descriptor{ID: "b", New: nullFactory},
	)
	ids := reg.IDs()
	want := []string{"a", "b", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs = %v, want %v", ids, want)
		}
	}
}
