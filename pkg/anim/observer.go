package anim

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned when visibility cannot be observed, e.g. before
// the terminal size is known or when rendering without a viewport.
var ErrUnavailable = errors.New("visibility observation unavailable")

// Region is a span of content lines occupied by an element.
type Region struct {
	Top    int
	Height int
}

// VisibleFraction returns how much of r lies inside the window
// [top, top+height).
func (r Region) VisibleFraction(top, height int) float64 {
	if r.Height <= 0 || height <= 0 {
		return 0
	}
	lo := max(r.Top, top)
	hi := min(r.Top+r.Height, top+height)
	if hi <= lo {
		return 0
	}
	return float64(hi-lo) / float64(r.Height)
}

// Observer reports visibility of registered regions within a scrolling
// window. It plays the role of an intersection observer for terminal
// content: Scroll is called whenever the window moves or resizes.
type Observer struct {
	mu     sync.Mutex
	subs   map[int]*Subscription
	nextID int
	top    int
	height int
}

// Subscription is a live registration on an Observer.
type Subscription struct {
	id     int
	region Region
	fn     func(ratio float64)
	obs    *Observer
}

// NewObserver returns an Observer for a window of the given height.
func NewObserver(height int) *Observer {
	return &Observer{subs: make(map[int]*Subscription), height: height}
}

// Observe registers r and immediately reports its current visibility to fn.
func (o *Observer) Observe(r Region, fn func(ratio float64)) (*Subscription, error) {
	if o == nil {
		return nil, ErrUnavailable
	}
	o.mu.Lock()
	if o.height <= 0 {
		o.mu.Unlock()
		return nil, ErrUnavailable
	}
	o.nextID++
	sub := &Subscription{id: o.nextID, region: r, fn: fn, obs: o}
	o.subs[sub.id] = sub
	ratio := r.VisibleFraction(o.top, o.height)
	o.mu.Unlock()

	fn(ratio)
	return sub, nil
}

// Scroll moves the window and notifies every subscription of its new
// visible fraction.
func (o *Observer) Scroll(top, height int) {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.top, o.height = top, height
	subs := make([]*Subscription, 0, len(o.subs))
	for _, s := range o.subs {
		subs = append(subs, s)
	}
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(s.region.VisibleFraction(top, height))
	}
}

// Len returns the number of live subscriptions.
func (o *Observer) Len() int {
	if o == nil {
		return 0
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Release unsubscribes. Safe to call more than once.
func (s *Subscription) Release() {
	if s == nil || s.obs == nil {
		return
	}
	s.obs.mu.Lock()
	delete(s.obs.subs, s.id)
	s.obs.mu.Unlock()
	s.obs = nil
}
