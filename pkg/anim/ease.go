// Package anim drives one-shot count-up animations for headline numbers.
//
// An Animator starts counting from zero the first time its element becomes
// at least Threshold visible, eases toward its target with a cubic ease-out
// and freezes on the exact target once the duration has elapsed. Progress is
// always derived from wall-clock time, never from a frame count, so a slow
// renderer only drops frames, it never stretches the animation.
package anim

import (
	"math"
	"time"
)

// Threshold is the minimum visible fraction that makes an element eligible
// to start animating.
const Threshold = 0.3

// DefaultDuration is the count-up duration used when none is configured.
const DefaultDuration = 1500 * time.Millisecond

// EaseOutCubic maps linear progress p to 1-(1-p)^3. p is clamped to [0,1].
func EaseOutCubic(p float64) float64 {
	p = clamp01(p)
	return 1 - math.Pow(1-p, 3)
}

// Progress returns the fraction of d elapsed between start and now, clamped
// to [0,1]. A non-positive duration is always complete.
func Progress(start, now time.Time, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	return clamp01(float64(now.Sub(start)) / float64(d))
}

// Interpolate returns the eased value for target at linear progress p.
func Interpolate(target, p float64) float64 {
	if p >= 1 {
		return target
	}
	return EaseOutCubic(p) * target
}

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
