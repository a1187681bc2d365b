package cel

import (
	"math"
	"sort"

	"github.com/astrokit/cel-runtime/block"
	"github.com/astrokit/cel-runtime/errors"
)

// Opt is one slot of a reference-parameter sequence. Some(v) writes v
// into the slot; Skip() leaves the current slot value untouched.
type Opt struct {
	v   float64
	set bool
}

// Some returns a slot carrying v.
func Some(v float64) Opt { return Opt{v: v, set: true} }

// Skip returns a slot that leaves the stored value alone.
func Skip() Opt { return Opt{} }

// The null-block check precedes the read-only check on every path.
func (h *Handle) guard(path string) error {
	if h == nil || h.blk == nil {
		return errors.NullBlock(errors.PhaseAccess, path)
	}
	return nil
}

func (h *Handle) guardMutate(path string) error {
	if err := h.guard(path); err != nil {
		return err
	}
	if h.ReadOnly() {
		return errors.ReadOnly(path)
	}
	return nil
}

// Offset reports whether the coordinate offset convention is applied.
func (h *Handle) Offset() (bool, error) {
	if err := h.guard("offset"); err != nil {
		return false, err
	}
	return h.blk.Offset, nil
}

// SetOffset sets the coordinate offset convention. An effective change
// invalidates the derived state.
func (h *Handle) SetOffset(v bool) error {
	if err := h.guardMutate("offset"); err != nil {
		return err
	}
	if v != h.blk.Offset {
		h.blk.Offset = v
		h.blk.Flag = 0
	}
	return nil
}

// Phi0 returns the native longitude of the fiducial point. ok is false
// when the field is unset and the engine will compute a default.
func (h *Handle) Phi0() (v float64, ok bool, err error) {
	if err := h.guard("phi0"); err != nil {
		return 0, false, err
	}
	v = h.blk.Phi0
	if block.IsUndefined(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// SetPhi0 sets the native longitude of the fiducial point. Writing the
// value already stored leaves the flag untouched.
func (h *Handle) SetPhi0(v float64) error {
	if err := h.guardMutate("phi0"); err != nil {
		return err
	}
	if v != h.blk.Phi0 {
		h.blk.Phi0 = v
		h.blk.Flag = 0
	}
	return nil
}

// ClearPhi0 resets phi0 to unset. A no-op if already unset.
func (h *Handle) ClearPhi0() error {
	if err := h.guardMutate("phi0"); err != nil {
		return err
	}
	if h.blk.Phi0 != block.Undefined {
		h.blk.Phi0 = block.Undefined
		h.blk.Flag = 0
	}
	return nil
}

// Theta0 returns the native latitude of the fiducial point.
func (h *Handle) Theta0() (v float64, ok bool, err error) {
	if err := h.guard("theta0"); err != nil {
		return 0, false, err
	}
	v = h.blk.Theta0
	if block.IsUndefined(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// SetTheta0 sets the native latitude of the fiducial point.
func (h *Handle) SetTheta0(v float64) error {
	if err := h.guardMutate("theta0"); err != nil {
		return err
	}
	if v != h.blk.Theta0 {
		h.blk.Theta0 = v
		h.blk.Flag = 0
	}
	return nil
}

// ClearTheta0 resets theta0 to unset. A no-op if already unset.
func (h *Handle) ClearTheta0() error {
	if err := h.guardMutate("theta0"); err != nil {
		return err
	}
	if h.blk.Theta0 != block.Undefined {
		h.blk.Theta0 = block.Undefined
		h.blk.Flag = 0
	}
	return nil
}

// Ref returns the four reference point parameters verbatim, sentinels
// included.
func (h *Handle) Ref() ([4]float64, error) {
	if err := h.guard("ref"); err != nil {
		return [4]float64{}, err
	}
	return h.blk.Ref, nil
}

// SetRef writes a sequence of 1 to 4 reference parameter slots. A Skip
// slot leaves the corresponding stored value untouched; slots beyond the
// sequence are filled with the initialization defaults. A slot whose
// current stored value is NaN normalizes to the Undefined sentinel.
// Any accepted sequence invalidates the derived state.
func (h *Handle) SetRef(vals []Opt) error {
	if err := h.guardMutate("ref"); err != nil {
		return err
	}
	if len(vals) == 0 {
		return errors.InvalidValue([]string{"ref"}, "ref must be a non-empty sequence of up to 4 values")
	}
	if len(vals) > 4 {
		return errors.InvalidValue([]string{"ref"}, "number of ref values cannot exceed 4, got %d", len(vals))
	}

	defaults := block.RefDefaults()
	for i, o := range vals {
		if !o.set {
			continue
		}
		if math.IsNaN(h.blk.Ref[i]) {
			h.blk.Ref[i] = block.Undefined
		} else {
			h.blk.Ref[i] = o.v
		}
	}
	for i := len(vals); i < 4; i++ {
		h.blk.Ref[i] = defaults[i]
	}
	h.blk.Flag = 0
	return nil
}

// SetRefValues is SetRef with every slot present.
func (h *Handle) SetRefValues(vals ...float64) error {
	opts := make([]Opt, len(vals))
	for i, v := range vals {
		opts[i] = Some(v)
	}
	return h.SetRef(opts)
}

// ResetRef restores all four slots to the initialization defaults,
// regardless of prior state, and invalidates the derived state.
func (h *Handle) ResetRef() error {
	if err := h.guardMutate("ref"); err != nil {
		return err
	}
	h.blk.Ref = block.RefDefaults()
	h.blk.Flag = 0
	return nil
}

// Euler returns the five derived rotation parameters. Only meaningful
// while the flag is nonzero.
func (h *Handle) Euler() ([5]float64, error) {
	if err := h.guard("euler"); err != nil {
		return [5]float64{}, err
	}
	return h.blk.Euler, nil
}

// Latpreq reports how the native pole latitude was determined. Only
// meaningful while the flag is nonzero.
func (h *Handle) Latpreq() (int32, error) {
	if err := h.guard("latpreq"); err != nil {
		return 0, err
	}
	return h.blk.Latpreq, nil
}

// Isolat reports whether celestial latitude depends only on native
// latitude. Only meaningful while the flag is nonzero.
func (h *Handle) Isolat() (bool, error) {
	if err := h.guard("isolat"); err != nil {
		return false, err
	}
	return h.blk.Isolat, nil
}

// Flag returns the recomputation flag; zero means derived fields are
// stale.
func (h *Handle) Flag() (int32, error) {
	if err := h.guard("_flag"); err != nil {
		return 0, err
	}
	return h.blk.Flag, nil
}

// accessor binds a property name to its typed get and set functions.
// set is nil for read-only properties. Each entry is independently
// testable; the table is fixed at init.
type accessor struct {
	get func(h *Handle) (any, error)
	set func(h *Handle, v any) error
}

var properties = map[string]accessor{
	"offset": {
		get: func(h *Handle) (any, error) { return h.Offset() },
		set: setOffsetAny,
	},
	"phi0": {
		get: getOptional((*Handle).Phi0),
		set: setOptionalDouble("phi0", (*Handle).SetPhi0, (*Handle).ClearPhi0),
	},
	"theta0": {
		get: getOptional((*Handle).Theta0),
		set: setOptionalDouble("theta0", (*Handle).SetTheta0, (*Handle).ClearTheta0),
	},
	"ref": {
		get: func(h *Handle) (any, error) { return h.Ref() },
		set: setRefAny,
	},
	"euler": {
		get: func(h *Handle) (any, error) { return h.Euler() },
	},
	"latpreq": {
		get: func(h *Handle) (any, error) { return h.Latpreq() },
	},
	"isolat": {
		get: func(h *Handle) (any, error) { return h.Isolat() },
	},
	"_flag": {
		get: func(h *Handle) (any, error) { return h.Flag() },
	},
	"prj": {
		get: func(h *Handle) (any, error) { return h.Prj() },
	},
}

func getOptional(get func(*Handle) (float64, bool, error)) func(*Handle) (any, error) {
	return func(h *Handle) (any, error) {
		v, ok, err := get(h)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return v, nil
	}
}

func setOptionalDouble(name string, set func(*Handle, float64) error, clear func(*Handle) error) func(*Handle, any) error {
	return func(h *Handle, v any) error {
		switch x := v.(type) {
		case nil:
			return clear(h)
		case float64:
			return set(h, x)
		case float32:
			return set(h, float64(x))
		case int:
			return set(h, float64(x))
		default:
			return errors.InvalidValue([]string{name}, "expected a number or nil, got %T", v)
		}
	}
}

func setOffsetAny(h *Handle, v any) error {
	switch x := v.(type) {
	case nil:
		return h.SetOffset(false)
	case bool:
		return h.SetOffset(x)
	default:
		return errors.InvalidValue([]string{"offset"}, "expected a bool or nil, got %T", v)
	}
}

func setRefAny(h *Handle, v any) error {
	switch x := v.(type) {
	case nil:
		return h.ResetRef()
	case []Opt:
		return h.SetRef(x)
	case []float64:
		return h.SetRefValues(x...)
	case []*float64:
		opts := make([]Opt, len(x))
		for i, p := range x {
			if p != nil {
				opts[i] = Some(*p)
			}
		}
		return h.SetRef(opts)
	default:
		return errors.InvalidValue([]string{"ref"}, "expected a numeric sequence or nil, got %T", v)
	}
}

// Properties returns the property names in sorted order.
func Properties() []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get reads a property by name. Nullable properties return nil when
// unset.
func (h *Handle) Get(name string) (any, error) {
	acc, ok := properties[name]
	if !ok {
		return nil, errors.NotFound(name)
	}
	return acc.get(h)
}

// SetProperty writes a property by name; nil stands for the unset input.
// Read-only properties reject all writes.
func (h *Handle) SetProperty(name string, v any) error {
	acc, ok := properties[name]
	if !ok {
		return errors.NotFound(name)
	}
	if acc.set == nil {
		return errors.New(errors.PhaseAccess, errors.KindReadOnly).
			Path(name).
			Detail("property %q is read-only", name).
			Build()
	}
	return acc.set(h, v)
}
