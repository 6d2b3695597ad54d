package core

// Scheduler is a single-threaded cooperative frame scheduler. A unit host
// schedules one callback per frame; the callback advances the unit and
// schedules its own continuation. The host keeps the returned Handle and must
// cancel it on teardown, which makes the cancel-on-unmount invariant a
// mechanical check instead of a convention.
//
// Tick runs the callbacks registered before the tick in registration order.
// Callers must not rely on ordering between callbacks from different hosts.
type Scheduler struct {
	queue []*Handle
}

// Handle identifies one pending frame callback.
type Handle struct {
	fn       func()
	canceled bool
}

// Cancel withdraws the callback. It is idempotent and takes effect
// synchronously: once Cancel returns the callback will never fire, even if a
// Tick is in progress.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.canceled = true
	h.fn = nil
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule registers fn to run on the next Tick and returns its handle.
func (s *Scheduler) Schedule(fn func()) *Handle {
	h := &Handle{fn: fn}
	s.queue = append(s.queue, h)
	return h
}

// Tick runs every callback registered before this call. Callbacks scheduled
// during the tick (continuations) run on the next Tick, never this one.
func (s *Scheduler) Tick() {
	due := s.queue
	s.queue = nil
	for _, h := range due {
		if h.canceled {
			continue
		}
		fn := h.fn
		h.fn = nil
		fn()
	}
}

// Pending reports the number of live callbacks awaiting the next Tick. Test
// harnesses use it to assert that no zombie callback survives a teardown.
func (s *Scheduler) Pending() int {
	n := 0
	for _, h := range s.queue {
		if !h.canceled {
			n++
		}
	}
	return n
}
