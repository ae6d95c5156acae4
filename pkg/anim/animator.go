package anim

import "time"

// Animator holds the state of one animated number.
//
// The one-shot latch (hasRun) and the visibility signal (eligible) are kept
// apart: a run starts only on a false->true transition of eligible while the
// latch is unfired. Leaving and re-entering the viewport therefore never
// restarts the count; only SetTarget with a different value re-arms it.
type Animator struct {
	target   float64
	duration time.Duration

	current  float64
	hasRun   bool
	eligible bool
	running  bool
	released bool
	start    time.Time
}

// New returns an Animator at zero for target.
func New(target float64, duration time.Duration) *Animator {
	return &Animator{target: target, duration: duration}
}

// SetTarget re-arms the animator for a new target. It reports whether the
// target actually changed; an unchanged target leaves all state alone.
func (a *Animator) SetTarget(target float64) bool {
	if target == a.target {
		return false
	}
	a.target = target
	a.current = 0
	a.hasRun = false
	a.running = false
	a.eligible = false
	return true
}

// Observe feeds a visibility ratio sampled at now. It returns true when this
// observation started a run.
func (a *Animator) Observe(ratio float64, now time.Time) bool {
	if a.released {
		return false
	}
	wasEligible := a.eligible
	a.eligible = ratio >= Threshold
	if !shouldStart(wasEligible, a.eligible, a.hasRun) {
		return false
	}
	a.hasRun = true
	if a.target == 0 {
		return false
	}
	if a.duration <= 0 {
		a.current = a.target
		return false
	}
	a.running = true
	a.start = now
	return true
}

func shouldStart(wasEligible, eligible, hasRun bool) bool {
	return eligible && !wasEligible && !hasRun
}

// Sample recomputes the value at now. done is true once the run has finished
// (or when no run is active); later samples keep returning the frozen value.
func (a *Animator) Sample(now time.Time) (value float64, done bool) {
	if !a.running {
		return a.current, true
	}
	p := Progress(a.start, now, a.duration)
	a.current = Interpolate(a.target, p)
	if p >= 1 {
		a.current = a.target
		a.running = false
		return a.current, true
	}
	return a.current, false
}

// Degrade shows the target statically. Used when visibility cannot be
// observed at all.
func (a *Animator) Degrade() {
	a.running = false
	a.hasRun = true
	a.current = a.target
}

// Release tears the animator down. Any active run stops where it is and
// further observations are ignored.
func (a *Animator) Release() {
	a.released = true
	a.running = false
}

// Value returns the current display value.
func (a *Animator) Value() float64 { return a.current }

// Target returns the value being animated toward.
func (a *Animator) Target() float64 { return a.target }

// HasRun reports whether the one-shot latch has fired.
func (a *Animator) HasRun() bool { return a.hasRun }

// Running reports whether a run is in progress.
func (a *Animator) Running() bool { return a.running }

// Released reports whether Release was called.
func (a *Animator) Released() bool { return a.released }
