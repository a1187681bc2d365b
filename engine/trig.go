package engine

import "math"

const (
	d2r = math.Pi / 180.0
	r2d = 180.0 / math.Pi

	// Tolerance for ill-conditioning checks in the pole solution.
	tol = 1e-10
)

// Degree-mode trig with exact values at multiples of 90 so that pole and
// equator cases compare cleanly against literals.

func sind(a float64) float64 {
	if math.Mod(a, 90) == 0 {
		i := int(math.Round(a/90)) % 4
		if i < 0 {
			i += 4
		}
		switch i {
		case 0, 2:
			return 0
		case 1:
			return 1
		default:
			return -1
		}
	}
	return math.Sin(a * d2r)
}

func cosd(a float64) float64 {
	return sind(a + 90)
}

func tand(a float64) float64 {
	return sind(a) / cosd(a)
}

func atan2d(y, x float64) float64 {
	return math.Atan2(y, x) * r2d
}

func acosd(v float64) float64 {
	return math.Acos(v) * r2d
}

// normAngle folds a into (-180, +180].
func normAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}
