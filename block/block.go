package block

import "math"

// Undefined is the sentinel double meaning "field intentionally unset;
// the engine computes a default". The value matches the native library.
const Undefined = 987654321.0e99

// IsUndefined reports whether v carries the sentinel. NaN counts as
// undefined so that values passing through lossy numeric front ends
// normalize to the sentinel instead of poisoning comparisons.
func IsUndefined(v float64) bool {
	return v == Undefined || math.IsNaN(v)
}

// Latpreq values describing how the native pole latitude was determined.
const (
	LatpreqNone          int32 = 0 // pole latitude not required
	LatpreqRequired      int32 = 1 // required to disambiguate two solutions
	LatpreqUnconstrained int32 = 2 // unconstrained, taken verbatim
)

// PVCount is the number of projection parameter slots.
const PVCount = 30

// ErrInfo carries engine-internal error context attached to a block.
// It is host-side state: never serialized, never deep-copied.
type ErrInfo struct {
	Status int
	Msg    string
}

// Prjprm is the projection parameter record embedded by value inside
// Celprm. It is a distinct record with its own dirty flag, not a share
// of the celestial block.
type Prjprm struct {
	Err    *ErrInfo
	Code   string
	PV     [PVCount]float64
	R0     float64
	Phi0   float64
	Theta0 float64
	X0     float64
	Y0     float64
	Flag   int32
	Bounds int32
}

// Celprm is the native celestial transform parameter record.
//
// Flag is the dirty bit: zero means Euler, Latpreq, and Isolat are stale
// and must not be trusted until the engine's Derive runs. Any effective
// mutation of Offset, Phi0, Theta0, or Ref resets Flag to zero.
type Celprm struct {
	Err     *ErrInfo
	Phi0    float64
	Theta0  float64
	Ref     [4]float64
	Euler   [5]float64
	Prj     Prjprm
	Flag    int32
	Latpreq int32
	Offset  bool
	Isolat  bool
}

// RefDefaults returns the initial reference point parameters:
// fiducial longitude 0, latitude 0, native pole longitude unset,
// native pole latitude +90.
func RefDefaults() [4]float64 {
	return [4]float64{0.0, 0.0, Undefined, 90.0}
}

// Reset restores celini defaults: cleared flag, no offset, unset
// fiducial angles, default reference parameters, and a reset embedded
// projection record.
func (c *Celprm) Reset() {
	*c = Celprm{
		Phi0:   Undefined,
		Theta0: Undefined,
		Ref:    RefDefaults(),
	}
	c.Prj.Reset()
}

// Reset restores prjini defaults on the projection record.
func (p *Prjprm) Reset() {
	*p = Prjprm{
		Phi0:   Undefined,
		Theta0: Undefined,
	}
	for i := range p.PV {
		p.PV[i] = Undefined
	}
}

// CopyFrom copies every scalar and array field of src into c, resetting
// the engine error context on both records. Used by deep copy; the
// result must be fully independent of src.
func (c *Celprm) CopyFrom(src *Celprm) {
	*c = *src
	c.Err = nil
	c.Prj.Err = nil
}
