package tween

// Ease remaps linear progress t in [0, 1].
type Ease func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseInCubic starts slow and accelerates.
func EaseInCubic(t float64) float64 { return t * t * t }

// EaseOutCubic starts fast and decelerates toward 1.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutCubic accelerates through the first half and decelerates through the second.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Hermite evaluates the cubic Hermite curve from p0 to p1 with endpoint
// slopes m0 and m1 (already scaled to the unit parameter interval).
func Hermite(p0, p1, m0, m1, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*p0 + h10*m0 + h01*p1 + h11*m1
}

// Clamp01 clamps t into [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
