package orbit

import "math"

// MaxEccentricity keeps every body on a bound orbit.
const MaxEccentricity = 0.99

// Elements are the classical orbital elements of a body plus the rotation
// parameters the scene needs. Angles are radians, times are scene seconds.
// Immutable after NewElements.
type Elements struct {
	SemiMajorAxis float64
	Eccentricity  float64
	Inclination   float64
	NodeLongitude float64 // Ω
	PeriapsisArg  float64 // ω
	AxialTilt     float64
	DayLength     float64 // sidereal day; negative means retrograde rotation
	OrbitalPeriod float64 // 0 = does not orbit (the sun)
	MeanAnomaly0  float64
}

// NewElements builds Elements from degree-valued angles, clamping the
// eccentricity into [0, MaxEccentricity].
func NewElements(a, e, inclDeg, nodeDeg, periDeg, tiltDeg, day, period, m0Deg float64) Elements {
	return Elements{
		SemiMajorAxis: a,
		Eccentricity:  clamp(e, 0, MaxEccentricity),
		Inclination:   deg2rad(inclDeg),
		NodeLongitude: deg2rad(nodeDeg),
		PeriapsisArg:  deg2rad(periDeg),
		AxialTilt:     deg2rad(tiltDeg),
		DayLength:     day,
		OrbitalPeriod: period,
		MeanAnomaly0:  deg2rad(m0Deg),
	}
}

// MeanMotion returns the mean angular rate in rad/s, 0 if the body does not orbit.
func (el Elements) MeanMotion() float64 {
	if el.OrbitalPeriod <= 0 {
		return 0
	}
	return 2 * math.Pi / el.OrbitalPeriod
}

// MeanAnomalyAt returns the mean anomaly t seconds after the time origin.
func (el Elements) MeanAnomalyAt(t float64) float64 {
	return el.MeanAnomaly0 + el.MeanMotion()*t
}

// SpinRate returns the signed rotation rate in rad/s. A negative day length
// or a tilt past 90° means retrograde, reported as a negative rate.
func SpinRate(dayLength, tilt float64) float64 {
	if dayLength == 0 {
		return 0
	}
	rate := 2 * math.Pi / math.Abs(dayLength)
	if dayLength < 0 || tilt > math.Pi/2 {
		rate = -rate
	}
	return rate
}

// SpinRate is the signed rotation rate of el.
func (el Elements) SpinRate() float64 {
	return SpinRate(el.DayLength, el.AxialTilt)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
