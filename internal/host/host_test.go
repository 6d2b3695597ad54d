package host

import (
	"image"
	"io"
	"log/slog"
	"testing"

	"cogcanvas/internal/core"
	"cogcanvas/internal/registry"
)

// probe is a minimal instrumented unit.
type probe struct {
	layouts []core.Viewport
	steps   int
	frame   *image.RGBA

	panicOnStep  int // 1-based step index to panic at, 0 = never
	pointerDowns int
	panicOnDown  bool
}

func (p *probe) Layout(vp core.Viewport) {
	p.layouts = append(p.layouts, vp)
	p.frame = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
}

func (p *probe) Step() {
	p.steps++
	if p.panicOnStep > 0 && p.steps == p.panicOnStep {
		panic("probe step fault")
	}
}

func (p *probe) Frame() *image.RGBA { return p.frame }

func (p *probe) PointerDown(x, y int) {
	if p.panicOnDown {
		panic("probe pointer fault")
	}
	p.pointerDowns++
}
func (p *probe) PointerDrag(int, int) {}
func (p *probe) PointerUp(int, int)   {}

func probeDescriptor(id string, make func() *probe) (registry.Descriptor, *[]*probe) {
	built := &[]*probe{}
	return registry.Descriptor{
		ID:    id,
		Title: "Probe",
		New: func(vp core.Viewport, cfg map[string]string) core.Unit {
			p := make()
			*built = append(*built, p)
			p.Layout(vp)
			return p
		},
	}, built
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHost() (*Host, *core.Scheduler) {
	sched := core.NewScheduler()
	return New(sched, quietLog()), sched
}

func TestMountSchedulesAndStepsUnit(t *testing.T) {
	h, sched := newHost()
	desc, built := probeDescriptor("p", func() *probe { return &probe{} })

	m := h.Mount(desc, nil, 600, false)
	if m.State() != StateActive {
		t.Fatalf("state = %v, want active", m.State())
	}
	if got := m.Viewport(); got.Width != 600 || got.Height != 375 {
		t.Fatalf("viewport = %+v, want 600x375", got)
	}
	if sched.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", sched.Pending())
	}

	for i := 0; i < 3; i++ {
		sched.Tick()
	}
	if (*built)[0].steps != 3 {
		t.Fatalf("steps = %d, want 3", (*built)[0].steps)
	}
}

func TestUnmountBeforeFirstFrameLeavesNoCallback(t *testing.T) {
	h, sched := newHost()
	desc, built := probeDescriptor("p", func() *probe { return &probe{} })

	m := h.Mount(desc, nil, 600, false)
	m.Unmount()

	if sched.Pending() != 0 {
		t.Fatalf("pending = %d after unmount, want 0", sched.Pending())
	}
	for i := 0; i < 3; i++ {
		sched.Tick()
	}
	if (*built)[0].steps != 0 {
		t.Fatalf("unit stepped %d times after unmount, want 0", (*built)[0].steps)
	}
}

func TestUnmountAfterFramesLeavesNoCallback(t *testing.T) {
	h, sched := newHost()
	desc, built := probeDescriptor("p", func() *probe { return &probe{} })

	m := h.Mount(desc, nil, 600, false)
	for i := 0; i < 5; i++ {
		sched.Tick()
	}
	m.Unmount()
	m.Unmount() // repeated teardown is safe

	if sched.Pending() != 0 {
		t.Fatalf("pending = %d after unmount, want 0", sched.Pending())
	}
	for i := 0; i < 4; i++ {
		sched.Tick()
	}
	if (*built)[0].steps != 5 {
		t.Fatalf("zombie callback advanced the unit: steps = %d, want 5", (*built)[0].steps)
	}
	if m.State() != StateUnmounted {
		t.Fatalf("state = %v", m.State())
	}
}

func TestResizeReachesUnitWithNewDimensions(t *testing.T) {
	h, sched := newHost()
	desc, built := probeDescriptor("p", func() *probe { return &probe{} })

	m := h.Mount(desc, nil, 600, false)
	sched.Tick()
	m.Relayout(400)

	p := (*built)[0]
	last := p.layouts[len(p.layouts)-1]
	if last.Width != 400 || last.Height != 250 {
		t.Fatalf("unit saw %+v, want 400x250", last)
	}
	if b := p.Frame().Bounds(); b.Dx() != 400 || b.Dy() != 250 {
		t.Fatalf("frame = %dx%d after resize", b.Dx(), b.Dy())
	}
	// unchanged width is not re-laid out
	n := len(p.layouts)
	m.Relayout(400)
	if len(p.layouts) != n {
		t.Fatal("relayout with unchanged dimensions reached the unit")
	}
}

func TestHeightClampBand(t *testing.T) {
	if vp := deriveViewport(200, false); vp.Height != minHeight {
		t.Fatalf("narrow height = %d, want clamp to %d", vp.Height, minHeight)
	}
	if vp := deriveViewport(2000, false); vp.Height != maxHeight {
		t.Fatalf("wide height = %d, want clamp to %d", vp.Height, maxHeight)
	}
	if vp := deriveViewport(650, true); vp.Height != mobilePreviewHeight || !vp.Mobile {
		t.Fatalf("mobile viewport = %+v", vp)
	}
	if vp := deriveViewport(900, true); vp.Mobile {
		t.Fatal("wide touch viewport misclassified as mobile")
	}
}

func TestZeroWidthDefersConstruction(t *testing.T) {
	h, sched := newHost()
	desc, built := probeDescriptor("p", func() *probe { return &probe{} })

	m := h.Mount(desc, nil, 0, false)
	if m.State() != StateDeferred {
		t.Fatalf("state = %v, want deferred", m.State())
	}
	if len(*built) != 0 || sched.Pending() != 0 {
		t.Fatal("deferred mount constructed a unit or scheduled a frame")
	}

	m.Relayout(600)
	if m.State() != StateActive || len(*built) != 1 || sched.Pending() != 1 {
		t.Fatalf("retry did not construct: state=%v built=%d pending=%d",
			m.State(), len(*built), sched.Pending())
	}
}

func TestInitPanicBecomesFailedState(t *testing.T) {
	h, sched := newHost()
	desc := registry.Descriptor{
		ID:    "boom",
		Title: "Boom",
		New: func(core.Viewport, map[string]string) core.Unit {
			panic("init fault")
		},
	}

	m := h.Mount(desc, nil, 600, false)
	if m.State() != StateFailed {
		t.Fatalf("state = %v, want failed", m.State())
	}
	if m.Fault() == "" {
		t.Fatal("failed mount carries no diagnostic")
	}
	if sched.Pending() != 0 {
		t.Fatalf("pending = %d for failed mount, want 0", sched.Pending())
	}
	m.Unmount() // still safe
}

func TestStepPanicFailsMountAndStopsLoop(t *testing.T) {
	h, sched := newHost()
	desc, _ := probeDescriptor("boom", func() *probe { return &probe{panicOnStep: 1} })

	m := h.Mount(desc, nil, 600, false)
	sched.Tick()

	if m.State() != StateFailed {
		t.Fatalf("state = %v, want failed", m.State())
	}
	if sched.Pending() != 0 {
		t.Fatalf("pending = %d after fault, want 0", sched.Pending())
	}
}

func TestFaultIsolationBetweenSiblings(t *testing.T) {
	h, sched := newHost()
	badDesc, _ := probeDescriptor("bad", func() *probe { return &probe{panicOnStep: 1} })
	goodDesc, goodBuilt := probeDescriptor("good", func() *probe { return &probe{} })

	bad := h.Mount(badDesc, nil, 600, false)
	good := h.Mount(goodDesc, nil, 600, false)

	for i := 0; i < 4; i++ {
		sched.Tick()
	}
	if bad.State() != StateFailed {
		t.Fatalf("bad state = %v", bad.State())
	}
	if good.State() != StateActive {
		t.Fatalf("good state = %v", good.State())
	}
	if (*goodBuilt)[0].steps != 4 {
		t.Fatalf("healthy sibling stepped %d times, want 4", (*goodBuilt)[0].steps)
	}
}

func TestFullscreenEnterExitRestoresViewport(t *testing.T) {
	h, _ := newHost()
	desc, built := probeDescriptor("p", func() *probe { return &probe{} })

	m := h.Mount(desc, nil, 600, false)
	inline := m.Viewport()

	m.EnterFullscreen(1280, 800, Insets{Top: 20, Bottom: 10})
	if m.State() != StateFullscreen {
		t.Fatalf("state = %v", m.State())
	}
	vp := m.Viewport()
	if vp.Width != 1280 || vp.Height != 770 || !vp.Fullscreen {
		t.Fatalf("fullscreen viewport = %+v", vp)
	}

	m.ExitFullscreen()
	if m.State() != StateActive || m.Viewport() != inline {
		t.Fatalf("exit did not restore: state=%v vp=%+v", m.State(), m.Viewport())
	}

	p := (*built)[0]
	last := p.layouts[len(p.layouts)-1]
	if last != inline {
		t.Fatalf("unit left at %+v, want restored %+v", last, inline)
	}
}

func TestSyncPlatformFullscreenIsAuthoritative(t *testing.T) {
	h, _ := newHost()
	desc, _ := probeDescriptor("p", func() *probe { return &probe{} })
	m := h.Mount(desc, nil, 600, false)

	// platform says fullscreen, mount disagrees
	m.SyncPlatformFullscreen(true, 1024, 768, Insets{})
	if m.State() != StateFullscreen {
		t.Fatalf("state = %v after platform enter", m.State())
	}
	// platform dropped fullscreen behind our back
	m.SyncPlatformFullscreen(false, 1024, 768, Insets{})
	if m.State() != StateActive {
		t.Fatalf("state = %v after platform exit", m.State())
	}
}

func TestMobilePreviewGatesInteractionAndPromotes(t *testing.T) {
	h, sched := newHost()
	desc, built := probeDescriptor("p", func() *probe { return &probe{} })

	m := h.Mount(desc, nil, 400, true)
	if m.State() != StatePreview || !m.InteractionGated() {
		t.Fatalf("state = %v gated=%v", m.State(), m.InteractionGated())
	}

	// preview still animates but stays inert
	sched.Tick()
	m.PointerDown(10, 10)
	if (*built)[0].pointerDowns != 0 {
		t.Fatal("preview forwarded pointer input")
	}
	if (*built)[0].steps != 1 {
		t.Fatalf("preview did not animate: steps = %d", (*built)[0].steps)
	}

	// a tap promotes through the fullscreen path
	m.EnterFullscreen(800, 600, Insets{})
	if m.State() != StateFullscreen || m.InteractionGated() {
		t.Fatalf("promotion failed: state = %v", m.State())
	}
	m.PointerDown(10, 10)
	if (*built)[0].pointerDowns != 1 {
		t.Fatal("fullscreen pointer input not forwarded")
	}

	m.ExitFullscreen()
	if m.State() != StatePreview {
		t.Fatalf("state = %v after exit, want preview restored", m.State())
	}
}

func TestPointerPanicFailsMount(t *testing.T) {
	h, sched := newHost()
	desc, _ := probeDescriptor("p", func() *probe { return &probe{panicOnDown: true} })
	m := h.Mount(desc, nil, 600, false)

	m.PointerDown(5, 5)
	if m.State() != StateFailed {
		t.Fatalf("state = %v, want failed", m.State())
	}
	if sched.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", sched.Pending())
	}
}

func TestOverridesShadowDescriptorDefaults(t *testing.T) {
	h, _ := newHost()
	desc, _ := probeDescriptor("p", func() *probe { return &probe{} })
	desc.Title = "Default Title"
	desc.Description = "Default description"

	m := h.Mount(desc, map[string]string{"title": "Custom", "speed": "2"}, 600, false)
	if m.Title() != "Custom" {
		t.Fatalf("title = %q", m.Title())
	}
	if m.Description() != "Default description" {
		t.Fatalf("description = %q", m.Description())
	}
}
