// Package host bridges document layout and simulation units. A Host owns the
// frame scheduler; each Mount owns one unit instance, its viewport, and the
// cancellable handle for its frame loop. Every fault a unit can raise — a
// panicking factory, a panicking step, a panicking input handler — is captured
// here and becomes a per-mount failed state, never an escaping panic.
package host

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cogcanvas/internal/core"
	"cogcanvas/internal/marker"
	"cogcanvas/internal/registry"
)

// Sizing policy. Width comes from the container; height follows a fixed
// aspect ratio clamped to a band, with a tighter clamp for mobile previews.
const (
	aspectW = 16
	aspectH = 10

	minHeight           = 220
	maxHeight           = 520
	mobilePreviewHeight = 260

	// Below this container width a touch viewport is treated as mobile.
	mobileWidthThreshold = 700
)

// State describes where a Mount is in its lifecycle.
type State int

const (
	// StateDeferred means the container had no measured size yet; the unit
	// is not constructed until a layout pass supplies one.
	StateDeferred State = iota
	// StatePreview is the inert mobile presentation: the unit animates at
	// reduced opacity and direct interaction is gated behind fullscreen.
	StatePreview
	// StateActive is the normal inline interactive presentation.
	StateActive
	// StateFullscreen covers both native fullscreen and the overlay
	// emulation fallback; they share this path.
	StateFullscreen
	// StateFailed means the unit panicked during init or a step and has
	// been replaced by an error placeholder.
	StateFailed
	// StateUnmounted is terminal; the frame handle has been canceled.
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateDeferred:
		return "deferred"
	case StatePreview:
		return "preview"
	case StateActive:
		return "active"
	case StateFullscreen:
		return "fullscreen"
	case StateFailed:
		return "failed"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Insets are the device safe-area margins subtracted from the window when
// computing a fullscreen viewport.
type Insets struct {
	Top, Right, Bottom, Left int
}

// Host constructs mounts against a shared scheduler.
type Host struct {
	sched *core.Scheduler
	log   *slog.Logger
}

// New returns a Host stepping its mounts on sched.
func New(sched *core.Scheduler, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	return &Host{sched: sched, log: log}
}

// Mount is one hosted unit instance.
type Mount struct {
	host     *Host
	instance string

	desc      registry.Descriptor
	overrides map[string]string

	title       string
	description string

	unit  core.Unit
	vp    core.Viewport
	state State
	fault string

	// restore targets for fullscreen exit
	prevVP    core.Viewport
	prevState State

	touch  bool
	handle *core.Handle
	frames int
}

// Mount measures a container and hosts a unit of the given descriptor in it.
// Title and description overrides from the marker attribute block shadow the
// descriptor defaults. A zero container width defers construction until
// Relayout supplies a real measurement.
func (h *Host) Mount(desc registry.Descriptor, overrides map[string]string, containerW int, touch bool) *Mount {
	m := &Mount{
		host:        h,
		instance:    uuid.NewString(),
		desc:        desc,
		overrides:   overrides,
		title:       desc.Title,
		description: desc.Description,
		touch:       touch,
		state:       StateDeferred,
	}
	if v, ok := overrides[marker.AttrTitle]; ok {
		m.title = v
	}
	if v, ok := overrides[marker.AttrDescription]; ok {
		m.description = v
	}
	m.Relayout(containerW)
	return m
}

// Relayout recomputes the viewport for a new container width. On a deferred
// mount with a now-positive width it performs the postponed construction; on
// a live mount with changed dimensions it re-lays the unit out in place.
// Dimension changes are never silently dropped.
func (m *Mount) Relayout(containerW int) {
	switch m.state {
	case StateUnmounted, StateFailed, StateFullscreen:
		return
	}
	if containerW <= 0 {
		return
	}
	vp := deriveViewport(containerW, m.touch)

	if m.state == StateDeferred {
		m.vp = vp
		m.construct()
		return
	}
	if vp == m.vp {
		return
	}
	m.vp = vp
	m.state = inlineState(vp)
	m.safeLayout(vp)
}

// construct builds the unit for the current viewport and starts its frame
// loop. A panicking factory fails the mount without scheduling anything.
func (m *Mount) construct() {
	unit, err := m.buildUnit(m.vp)
	if err != nil {
		m.fail(err)
		return
	}
	m.unit = unit
	m.state = inlineState(m.vp)
	m.handle = m.host.sched.Schedule(m.frame)
	m.host.log.Debug("mounted simulation",
		"sim", m.desc.ID, "instance", m.instance,
		"w", m.vp.Width, "h", m.vp.Height, "state", m.state.String())
}

func (m *Mount) buildUnit(vp core.Viewport) (unit core.Unit, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: init: %v", m.desc.ID, r)
		}
	}()
	unit = m.desc.New(vp, m.overrides)
	if unit == nil {
		return nil, fmt.Errorf("%s: factory returned no unit", m.desc.ID)
	}
	return unit, nil
}

// frame advances the unit once and schedules its own continuation. A failed
// or unmounted mount schedules nothing, so the loop dies with the mount.
func (m *Mount) frame() {
	m.handle = nil
	switch m.state {
	case StatePreview, StateActive, StateFullscreen:
	default:
		return
	}
	if err := m.safeStep(); err != nil {
		m.fail(err)
		return
	}
	m.frames++
	m.handle = m.host.sched.Schedule(m.frame)
}

func (m *Mount) safeStep() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: step %d: %v", m.desc.ID, m.frames, r)
		}
	}()
	m.unit.Step()
	return nil
}

func (m *Mount) safeLayout(vp core.Viewport) {
	defer func() {
		if r := recover(); r != nil {
			m.fail(fmt.Errorf("%s: layout: %v", m.desc.ID, r))
		}
	}()
	m.unit.Layout(vp)
}

func (m *Mount) fail(err error) {
	m.fault = err.Error()
	m.state = StateFailed
	if m.handle != nil {
		m.handle.Cancel()
		m.handle = nil
	}
	m.host.log.Warn("simulation fault", "sim", m.desc.ID, "instance", m.instance, "error", err)
}

// EnterFullscreen re-lays the unit out at window size minus safe-area insets.
// The prior inline viewport and state are kept for restoration on exit. The
// same path serves native fullscreen and the overlay emulation fallback, and
// it is how a mobile preview tap promotes to the interactive presentation.
func (m *Mount) EnterFullscreen(winW, winH int, insets Insets) {
	switch m.state {
	case StatePreview, StateActive:
	default:
		return
	}
	w := winW - insets.Left - insets.Right
	h := winH - insets.Top - insets.Bottom
	if w <= 0 || h <= 0 {
		return
	}
	m.prevVP = m.vp
	m.prevState = m.state
	m.vp = core.Viewport{Width: w, Height: h, Mobile: m.vp.Mobile, Fullscreen: true}
	m.state = StateFullscreen
	m.safeLayout(m.vp)
}

// ExitFullscreen restores the inline viewport and state captured on entry.
func (m *Mount) ExitFullscreen() {
	if m.state != StateFullscreen {
		return
	}
	m.vp = m.prevVP
	m.state = m.prevState
	m.safeLayout(m.vp)
}

// SyncPlatformFullscreen reconciles this mount with the platform's native
// fullscreen flag. When the two disagree the platform wins: the mount replays
// the corresponding enter or exit transition.
func (m *Mount) SyncPlatformFullscreen(active bool, winW, winH int, insets Insets) {
	if active && m.state != StateFullscreen {
		m.EnterFullscreen(winW, winH, insets)
		return
	}
	if !active && m.state == StateFullscreen {
		m.ExitFullscreen()
	}
}

// InteractionGated reports whether pointer input should promote to fullscreen
// instead of reaching the unit. Small simulations are not usably interactive
// at preview scale on touch devices, so the preview is inert.
func (m *Mount) InteractionGated() bool { return m.state == StatePreview }

// PointerDown forwards a press to the unit when interaction is permitted.
func (m *Mount) PointerDown(x, y int) { m.forwardPointer(x, y, pointerDown) }

// PointerDrag forwards a drag to the unit when interaction is permitted.
func (m *Mount) PointerDrag(x, y int) { m.forwardPointer(x, y, pointerDrag) }

// PointerUp forwards a release to the unit when interaction is permitted.
func (m *Mount) PointerUp(x, y int) { m.forwardPointer(x, y, pointerUp) }

type pointerPhase int

const (
	pointerDown pointerPhase = iota
	pointerDrag
	pointerUp
)

func (m *Mount) forwardPointer(x, y int, phase pointerPhase) {
	if m.state != StateActive && m.state != StateFullscreen {
		return
	}
	handler, ok := m.unit.(core.PointerHandler)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.fail(fmt.Errorf("%s: pointer: %v", m.desc.ID, r))
		}
	}()
	switch phase {
	case pointerDown:
		handler.PointerDown(x, y)
	case pointerDrag:
		handler.PointerDrag(x, y)
	case pointerUp:
		handler.PointerUp(x, y)
	}
}

// Unmount tears the mount down and cancels any pending frame callback. It is
// safe on every state, including deferred and failed mounts and repeated
// calls.
func (m *Mount) Unmount() {
	if m.handle != nil {
		m.handle.Cancel()
		m.handle = nil
	}
	m.state = StateUnmounted
	m.unit = nil
}

// State reports the mount's lifecycle state.
func (m *Mount) State() State { return m.state }

// ID returns the descriptor id this mount hosts.
func (m *Mount) ID() string { return m.desc.ID }

// Instance returns the unique id of this mount, used in logs.
func (m *Mount) Instance() string { return m.instance }

// Title returns the effective title after overrides.
func (m *Mount) Title() string { return m.title }

// Description returns the effective description after overrides.
func (m *Mount) Description() string { return m.description }

// Fault returns the captured diagnostic for a failed mount.
func (m *Mount) Fault() string { return m.fault }

// Viewport returns the viewport currently supplied to the unit.
func (m *Mount) Viewport() core.Viewport { return m.vp }

// Unit exposes the hosted unit for frame readback; nil unless live.
func (m *Mount) Unit() core.Unit { return m.unit }

func inlineState(vp core.Viewport) State {
	if vp.Mobile {
		return StatePreview
	}
	return StateActive
}

func deriveViewport(containerW int, touch bool) core.Viewport {
	mobile := touch && containerW < mobileWidthThreshold
	h := containerW * aspectH / aspectW
	if h < minHeight {
		h = minHeight
	}
	if h > maxHeight {
		h = maxHeight
	}
	if mobile && h > mobilePreviewHeight {
		h = mobilePreviewHeight
	}
	return core.Viewport{Width: containerW, Height: h, Mobile: mobile}
}
