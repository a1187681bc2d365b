package cel

import (
	"bytes"
	"fmt"
	"io"

	celruntime "github.com/astrokit/cel-runtime"
	"github.com/astrokit/cel-runtime/block"
	"github.com/astrokit/cel-runtime/errors"
	"github.com/astrokit/cel-runtime/prj"
)

// Handle fronts a celestial parameter block. A handle is either the sole
// owner of its block (created by New) or an attached view into a block
// owned by a parent object (created by Attach). Every handle referencing
// the same block shares one reference-count cell; the block is torn down
// exactly once, when that cell reaches zero.
//
// Handles are not safe for concurrent use. The reference-count cell is
// mutated non-atomically; the host environment serializes all calls.
type Handle struct {
	blk   *block.Celprm
	refs  *int32
	owner any
	eng   celruntime.Engine
}

// New creates a sole-owner handle with a fresh engine-initialized block
// and a reference count of one. On engine failure nothing is retained.
func New(eng celruntime.Engine) (*Handle, error) {
	if eng == nil {
		return nil, errors.New(errors.PhaseLifecycle, errors.KindInvalidValue).
			Detail("nil engine").Build()
	}
	blk := &block.Celprm{}
	if st := eng.Init(blk); st != celruntime.StatusSuccess {
		return nil, errors.FromStatus(errors.PhaseLifecycle, st)
	}
	refs := new(int32)
	*refs = 1
	return &Handle{blk: blk, refs: refs, eng: eng}, nil
}

// Attach creates a shared view onto a block owned by parent, sharing the
// supplied reference-count cell. The cell must be the one guarding blk's
// backing storage: it is the single source of truth for the release, and
// the parent must not free the block out of band. The parent reference
// is retained until the handle is closed; attached handles reject all
// mutating operations.
func Attach(parent any, blk *block.Celprm, refs *int32, eng celruntime.Engine) *Handle {
	if refs != nil {
		*refs++
	}
	return &Handle{blk: blk, refs: refs, owner: parent, eng: eng}
}

// Copy returns a shallow copy sharing this handle's block and counter.
// The copy carries the original's owner (or none) and increments the
// shared count; mutations through either handle are visible to both.
func (h *Handle) Copy() (*Handle, error) {
	if h.blk == nil {
		return nil, errors.NullBlock(errors.PhaseLifecycle)
	}
	return Attach(h.owner, h.blk, h.refs, h.eng), nil
}

// DeepCopy returns an independent sole-owner handle whose block is a
// field-for-field copy of this one, minus any engine error context.
func (h *Handle) DeepCopy() (*Handle, error) {
	if h.blk == nil {
		return nil, errors.NullBlock(errors.PhaseLifecycle)
	}
	nh, err := New(h.eng)
	if err != nil {
		return nil, err
	}
	nh.blk.CopyFrom(h.blk)
	return nh, nil
}

// ReadOnly reports whether this handle is an attached view. Attached
// handles reject all mutation.
func (h *Handle) ReadOnly() bool { return h.owner != nil }

// Owner returns the retained parent object, nil for sole owners.
func (h *Handle) Owner() any { return h.owner }

// Closed reports whether Close has run on this handle.
func (h *Handle) Closed() bool { return h.blk == nil }

// Close tears down the handle. The engine's Free always runs, releasing
// per-handle engine state such as error-message context; the block and
// counter are released only when the shared count reaches zero. The
// owner reference is dropped on every path. Closing twice is a no-op.
func (h *Handle) Close() error {
	if h.blk == nil {
		return nil
	}

	st := h.eng.Free(h.blk)
	var err error
	if st != celruntime.StatusSuccess {
		err = errors.FromStatus(errors.PhaseLifecycle, st)
	}

	if h.refs != nil {
		*h.refs--
		if *h.refs == 0 {
			if r, ok := h.eng.(celruntime.Releaser); ok {
				r.Release(h.blk)
			}
		}
	}

	h.blk = nil
	h.refs = nil
	h.owner = nil
	return err
}

// Set runs the engine's validation and derivation on the block. On
// success the flag becomes nonzero and euler/latpreq/isolat are
// trustworthy. On failure the translated error is returned and the flag
// keeps its pre-call value; field values written by earlier setters are
// not rolled back.
func (h *Handle) Set() error {
	if h.blk == nil {
		return errors.NullBlock(errors.PhaseEngine, "set")
	}
	if h.ReadOnly() {
		return errors.ReadOnly("set")
	}
	if st := h.eng.Derive(h.blk); st != celruntime.StatusSuccess {
		return errors.FromStatus(errors.PhaseEngine, st)
	}
	return nil
}

// Prj returns a new attached handle onto the embedded projection record.
// This handle is retained as the view's parent for lifetime purposes,
// but the embedded record is a distinct value and does not count against
// the shared block counter. The view is writable iff this handle is.
func (h *Handle) Prj() (*prj.Handle, error) {
	if h.blk == nil {
		return nil, errors.NullBlock(errors.PhaseAccess, "prj")
	}
	return prj.Attach(h, &h.blk.Prj, h.ReadOnly()), nil
}

// Render writes the block's current state to w, including values that
// may be stale while the flag is zero.
func (h *Handle) Render(w io.Writer) error {
	if h.blk == nil {
		return errors.NullBlock(errors.PhaseRender)
	}
	if st := h.eng.Render(h.blk, w); st != celruntime.StatusSuccess {
		return errors.FromStatus(errors.PhaseRender, st)
	}
	return nil
}

// String implements fmt.Stringer using Render.
func (h *Handle) String() string {
	var buf bytes.Buffer
	if err := h.Render(&buf); err != nil {
		return fmt.Sprintf("<celprm: %v>", err)
	}
	return buf.String()
}
