package anim

import (
	"sync"
	"time"
)

// FrameInterval is the default spacing between published frames.
const FrameInterval = 16 * time.Millisecond

// Scheduler schedules f to run after d. It exists so tests can drive Run
// with a fake clock.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// TimerScheduler schedules on the real clock with time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) Now() time.Time { return time.Now() }

func (TimerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Run counts from zero to target over d, calling publish with every sampled
// value and finally with exactly target. Each callback samples the clock and
// reschedules itself until progress reaches one. The returned cancel stops
// any pending callback; publish is never called after cancel returns.
func Run(s Scheduler, start time.Time, target float64, d time.Duration, publish func(value float64, done bool)) (cancel func()) {
	r := &runner{s: s, start: start, target: target, d: d, publish: publish}
	if target == 0 || d <= 0 {
		publish(target, true)
		return func() {}
	}
	r.mu.Lock()
	r.stop = s.AfterFunc(0, r.tick)
	r.mu.Unlock()
	return r.cancel
}

type runner struct {
	mu       sync.Mutex
	s        Scheduler
	start    time.Time
	target   float64
	d        time.Duration
	publish  func(float64, bool)
	stop     func() bool
	canceled bool
}

func (r *runner) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.canceled {
		return
	}
	p := Progress(r.start, r.s.Now(), r.d)
	if p >= 1 {
		r.publish(r.target, true)
		r.stop = nil
		return
	}
	r.publish(Interpolate(r.target, p), false)
	r.stop = r.s.AfterFunc(FrameInterval, r.tick)
}

func (r *runner) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canceled = true
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}
