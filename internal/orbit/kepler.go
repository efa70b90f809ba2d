package orbit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultIterations is the fixed Newton-Raphson step count used by
// SolveEccentricAnomaly. Enough for the near-circular orbits in the scene;
// raise it for eccentricities approaching 1.
const DefaultIterations = 6

// highEccentricity switches the initial guess from M to π.
const highEccentricity = 0.8

// NormalizeAngle wraps x into [-π, π].
func NormalizeAngle(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}

// SolveEccentricAnomaly solves Kepler's equation E - e·sin(E) = M for E.
// M is normalized first; the iteration count is fixed, there is no
// convergence check.
func SolveEccentricAnomaly(meanAnomaly, e float64, iterations int) float64 {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	m := NormalizeAngle(meanAnomaly)

	E := m
	if e >= highEccentricity {
		E = math.Pi
	}
	for i := 0; i < iterations; i++ {
		f := E - e*math.Sin(E) - m
		fp := 1 - e*math.Cos(E)
		E -= f / fp
	}
	return E
}

// TrueAnomaly converts an eccentric anomaly to the true anomaly using the
// half-angle relation. Bound orbits only: e >= 1 yields NaN.
func TrueAnomaly(E, e float64) float64 {
	return 2 * math.Atan2(math.Sqrt(1+e)*math.Sin(E/2), math.Sqrt(1-e)*math.Cos(E/2))
}

// Radius returns the orbital-plane distance from the focus for true anomaly nu.
func Radius(a, e, nu float64) float64 {
	return a * (1 - e*e) / (1 + e*math.Cos(nu))
}

// PositionFromElements returns the position for true anomaly nu, rotated
// through inclination and node longitude into the ecliptic frame and then
// remapped so that +Y is up (ecliptic z becomes engine y).
func PositionFromElements(a, e, inclination, node, periapsis, nu float64) mgl64.Vec3 {
	r := Radius(a, e, nu)
	u := periapsis + nu // argument of latitude

	cosU, sinU := math.Cos(u), math.Sin(u)
	cosO, sinO := math.Cos(node), math.Sin(node)
	cosI, sinI := math.Cos(inclination), math.Sin(inclination)

	x := r * (cosO*cosU - sinO*sinU*cosI)
	y := r * (sinO*cosU + cosO*sinU*cosI)
	z := r * (sinU * sinI)

	return mgl64.Vec3{x, z, y}
}

// PositionAt solves for the position of el at mean anomaly m.
func PositionAt(el Elements, m float64) mgl64.Vec3 {
	E := SolveEccentricAnomaly(m, el.Eccentricity, DefaultIterations)
	nu := TrueAnomaly(E, el.Eccentricity)
	return PositionFromElements(el.SemiMajorAxis, el.Eccentricity, el.Inclination, el.NodeLongitude, el.PeriapsisArg, nu)
}

// Path samples the orbit of el at segments+1 evenly spaced true anomalies in
// [0, 2π]. The last point is the first one, so the polyline is closed.
func Path(el Elements, segments int) []mgl64.Vec3 {
	if segments < 3 {
		segments = 3
	}
	pts := make([]mgl64.Vec3, segments+1)
	for i := 0; i < segments; i++ {
		nu := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = PositionFromElements(el.SemiMajorAxis, el.Eccentricity, el.Inclination, el.NodeLongitude, el.PeriapsisArg, nu)
	}
	pts[segments] = pts[0]
	return pts
}
