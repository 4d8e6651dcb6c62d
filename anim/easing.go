package anim

import "math"

// Easing curves used by the tween schedule. Every curve maps [0,1] to [0,1]
// with f(0)=0 and f(1)=1; callers clamp t before applying.

// Linear returns t unchanged.
func Linear(t float64) float64 { return t }

// EaseOutCubic decelerates towards the end: 1-(1-t)^3.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutCosine accelerates then decelerates along a half cosine wave.
func EaseInOutCosine(t float64) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*t)
}

// EaseOutBack overshoots slightly before settling, giving staggered glyphs a
// small bounce into their final position.
func EaseOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}

// clampT limits t to [0,1].
func clampT(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
