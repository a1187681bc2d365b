// Package prj wraps the projection parameter record embedded inside a
// celestial block. Handles here are always attached: they borrow the
// record from a parent and keep the parent alive, but the record is an
// embedded value and does not participate in the parent block's shared
// reference count.
package prj

import (
	"github.com/astrokit/cel-runtime/block"
	"github.com/astrokit/cel-runtime/errors"
)

// Handle is an attached view onto a projection record owned by a parent
// object. Not safe for concurrent use; the host serializes calls.
type Handle struct {
	p        *block.Prjprm
	owner    any
	readonly bool
}

// Attach creates a view onto p. The owner reference is retained for the
// handle's lifetime so the parent outlives the view. readonly mirrors
// the parent handle's own mutability: a view reached through a read-only
// celestial handle must not be writable either.
func Attach(owner any, p *block.Prjprm, readonly bool) *Handle {
	return &Handle{p: p, owner: owner, readonly: readonly}
}

// Owner returns the retained parent object.
func (h *Handle) Owner() any { return h.owner }

// Close releases the handle's reference to its owner. The record itself
// belongs to the parent and is never freed here.
func (h *Handle) Close() {
	h.p = nil
	h.owner = nil
}

// Null-check precedes the read-only check on every guarded path.
func (h *Handle) guard(path string) error {
	if h == nil || h.p == nil {
		return errors.NullBlock(errors.PhaseAccess, "prj", path)
	}
	return nil
}

func (h *Handle) guardMutate(path string) error {
	if err := h.guard(path); err != nil {
		return err
	}
	if h.readonly {
		return errors.ReadOnly("prj", path)
	}
	return nil
}

// Code returns the three-letter projection code, empty if unset.
func (h *Handle) Code() (string, error) {
	if err := h.guard("code"); err != nil {
		return "", err
	}
	return h.p.Code, nil
}

// SetCode sets the projection code. A change invalidates the record's
// derived state.
func (h *Handle) SetCode(code string) error {
	if err := h.guardMutate("code"); err != nil {
		return err
	}
	if len(code) > 3 {
		return errors.InvalidValue([]string{"prj", "code"}, "projection code %q exceeds 3 characters", code)
	}
	if code != h.p.Code {
		h.p.Code = code
		h.p.Flag = 0
	}
	return nil
}

// R0 returns the radius of the generating sphere; zero means "engine
// default".
func (h *Handle) R0() (float64, error) {
	if err := h.guard("r0"); err != nil {
		return 0, err
	}
	return h.p.R0, nil
}

// SetR0 sets the radius of the generating sphere.
func (h *Handle) SetR0(r0 float64) error {
	if err := h.guardMutate("r0"); err != nil {
		return err
	}
	if r0 != h.p.R0 {
		h.p.R0 = r0
		h.p.Flag = 0
	}
	return nil
}

// PV returns projection parameter i. ok is false when the slot is unset.
func (h *Handle) PV(i int) (v float64, ok bool, err error) {
	if err := h.guard("pv"); err != nil {
		return 0, false, err
	}
	if i < 0 || i >= block.PVCount {
		return 0, false, errors.InvalidValue([]string{"prj", "pv"}, "index %d out of range [0, %d)", i, block.PVCount)
	}
	v = h.p.PV[i]
	if block.IsUndefined(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// SetPV sets projection parameter i.
func (h *Handle) SetPV(i int, v float64) error {
	if err := h.guardMutate("pv"); err != nil {
		return err
	}
	if i < 0 || i >= block.PVCount {
		return errors.InvalidValue([]string{"prj", "pv"}, "index %d out of range [0, %d)", i, block.PVCount)
	}
	if v != h.p.PV[i] {
		h.p.PV[i] = v
		h.p.Flag = 0
	}
	return nil
}

// ClearPV resets projection parameter i to the unset sentinel.
func (h *Handle) ClearPV(i int) error {
	if err := h.guardMutate("pv"); err != nil {
		return err
	}
	if i < 0 || i >= block.PVCount {
		return errors.InvalidValue([]string{"prj", "pv"}, "index %d out of range [0, %d)", i, block.PVCount)
	}
	if !block.IsUndefined(h.p.PV[i]) {
		h.p.PV[i] = block.Undefined
		h.p.Flag = 0
	}
	return nil
}

// Phi0 returns the native longitude of the projection's reference point.
// Derived by the engine; ok is false until a default has been computed.
func (h *Handle) Phi0() (v float64, ok bool, err error) {
	if err := h.guard("phi0"); err != nil {
		return 0, false, err
	}
	v = h.p.Phi0
	if block.IsUndefined(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// Theta0 returns the native latitude of the projection's reference point.
func (h *Handle) Theta0() (v float64, ok bool, err error) {
	if err := h.guard("theta0"); err != nil {
		return 0, false, err
	}
	v = h.p.Theta0
	if block.IsUndefined(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// X0 returns the fiducial x offset computed by the engine.
func (h *Handle) X0() (float64, error) {
	if err := h.guard("x0"); err != nil {
		return 0, err
	}
	return h.p.X0, nil
}

// Y0 returns the fiducial y offset computed by the engine.
func (h *Handle) Y0() (float64, error) {
	if err := h.guard("y0"); err != nil {
		return 0, err
	}
	return h.p.Y0, nil
}

// Flag returns the record's dirty flag; zero means derived state is stale.
func (h *Handle) Flag() (int32, error) {
	if err := h.guard("_flag"); err != nil {
		return 0, err
	}
	return h.p.Flag, nil
}
