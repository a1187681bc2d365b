package engine

import "math"

// projection maps a 3-letter code to its class and the forward
// spherical-to-planar transform used for fiducial offsets.
type projection struct {
	s2x      func(r0, phi, theta float64) (x, y float64, ok bool)
	zenithal bool
}

// projections is the registry of supported codes. Zenithal projections
// place the reference point at the native pole; cylindrical ones at the
// native equator.
var projections = map[string]projection{
	"TAN": {zenithal: true, s2x: zenithalS2X(radiusTan)},
	"STG": {zenithal: true, s2x: zenithalS2X(radiusStg)},
	"SIN": {zenithal: true, s2x: zenithalS2X(radiusSin)},
	"ARC": {zenithal: true, s2x: zenithalS2X(radiusArc)},
	"ZEA": {zenithal: true, s2x: zenithalS2X(radiusZea)},
	"CAR": {s2x: carS2X},
	"MER": {s2x: merS2X},
	"CEA": {s2x: ceaS2X},
}

// zenithalS2X builds the forward transform for a radial zenithal
// projection from its radius function R(theta).
func zenithalS2X(radius func(r0, theta float64) (float64, bool)) func(r0, phi, theta float64) (float64, float64, bool) {
	return func(r0, phi, theta float64) (float64, float64, bool) {
		r, ok := radius(r0, theta)
		if !ok {
			return 0, 0, false
		}
		return r * sind(phi), -r * cosd(phi), true
	}
}

func radiusTan(r0, theta float64) (float64, bool) {
	s := sind(theta)
	if s == 0 {
		return 0, false
	}
	return r0 * cosd(theta) / s, true
}

func radiusStg(r0, theta float64) (float64, bool) {
	t := (90 - theta) / 2
	c := cosd(t)
	if c == 0 {
		return 0, false
	}
	return 2 * r0 * sind(t) / c, true
}

func radiusSin(r0, theta float64) (float64, bool) {
	return r0 * cosd(theta), true
}

func radiusArc(r0, theta float64) (float64, bool) {
	return r0 * (90 - theta) * d2r, true
}

func radiusZea(r0, theta float64) (float64, bool) {
	return 2 * r0 * sind((90-theta)/2), true
}

func carS2X(r0, phi, theta float64) (float64, float64, bool) {
	return r0 * phi * d2r, r0 * theta * d2r, true
}

func merS2X(r0, phi, theta float64) (float64, float64, bool) {
	if math.Abs(theta) >= 90 {
		return 0, 0, false
	}
	return r0 * phi * d2r, r0 * math.Log(tand((90+theta)/2)), true
}

func ceaS2X(r0, phi, theta float64) (float64, float64, bool) {
	return r0 * phi * d2r, r0 * sind(theta), true
}
