package celruntime

import (
	"io"

	"github.com/astrokit/cel-runtime/block"
)

// Status codes returned by every engine entry point. They mirror the
// native library's numbering; errors.FromStatus maps them to error kinds.
const (
	StatusSuccess        = 0
	StatusNullBlock      = 1
	StatusBadPrjParams   = 2
	StatusBadCelParams   = 3
	StatusIllConditioned = 4
	StatusBadPlanar      = 5
	StatusBadSpherical   = 6
	StatusInternal       = 7
)

// Engine is the native transform engine operating on parameter blocks.
// Implementations must be safe to share between handles; individual
// calls are serialized by the caller.
type Engine interface {
	// Init resets a block to its initial defaults.
	Init(c *block.Celprm) int

	// Free releases engine-internal state attached to the block, such as
	// error-message context. It does not release the block itself and is
	// called once per handle close, not once per block.
	Free(c *block.Celprm) int

	// Derive validates the block's fields and computes the derived
	// euler/latpreq/isolat state, marking the block's flag nonzero on
	// success.
	Derive(c *block.Celprm) int

	// Render writes a diagnostic listing of the block's current state,
	// stale or not, to w.
	Render(c *block.Celprm, w io.Writer) int
}

// Releaser is optionally implemented by engines that track backing
// storage for blocks. Release is invoked exactly once per block, when
// the last handle referencing it is closed.
type Releaser interface {
	Release(c *block.Celprm)
}
