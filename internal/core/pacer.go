package core

import "time"

// maxTicksPerPoll caps the catch-up after a stall so a long pause does not
// turn into a burst of simulation work.
const maxTicksPerPoll = 4

// Pacer converts elapsed wall time into a number of due simulation ticks at a
// target ticks-per-second rate.
type Pacer struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewPacer constructs a Pacer targeting the given TPS.
func NewPacer(tps int) *Pacer {
	p := &Pacer{}
	p.SetTPS(tps)
	p.accumulator = p.step
	return p
}

// SetTPS changes the tick rate. Safe to call between polls.
func (p *Pacer) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	p.step = time.Second / time.Duration(tps)
}

// Ticks returns how many ticks are due since the previous call.
func (p *Pacer) Ticks() int {
	now := time.Now()
	if p.last.IsZero() {
		p.last = now
	}
	p.accumulator += now.Sub(p.last)
	p.last = now

	n := 0
	for p.accumulator >= p.step && n < maxTicksPerPoll {
		p.accumulator -= p.step
		n++
	}
	if n == maxTicksPerPoll {
		p.accumulator = 0
	}
	return n
}
