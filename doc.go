// Package celruntime wraps a native celestial-transform parameter block
// behind handles with typed properties, validated mutation, and a
// well-defined lifetime.
//
// A celestial parameter block describes the spherical-coordinate
// rotation used by astrometric projections: the fiducial point, the
// native pole, and the euler angles derived from them. The block is a
// plain mutable record; the interesting part is the ownership protocol
// around it. Several handles may reference the same block - one created
// fresh, others attached as views into a block embedded in a larger
// parent structure - and the block must be torn down exactly once, when
// the last reference goes away.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	celruntime/          Root package with the Engine contract and status codes
//	├── block/           The native parameter record, defaults, and wire layout
//	├── cel/             Shared-ownership handles and typed property accessors
//	├── prj/             Attached wrapper for the embedded projection record
//	├── engine/          Engine implementations: pure Go and wazero-hosted
//	└── errors/          Structured error types and the status-code translator
//
// # Quick Start
//
// Create a block, configure it, and derive the rotation:
//
//	h, err := cel.New(engine.NewNative())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	p, _ := h.Prj()
//	p.SetCode("TAN")
//	h.SetRefValues(45.0, 30.0)
//
//	if err := h.Set(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(h) // rendered diagnostic listing
//
// # Ownership Model
//
// Every handle shares a reference-count cell with all other handles (and
// possibly a parent object) referencing the same block. Close always
// runs the engine's teardown for the handle, then decrements the cell;
// the block's backing storage is released only on the 1 -> 0 transition.
// Handles attached to a parent-owned block are read-only and hold a
// strong reference to the parent so the parent cannot be collected out
// from under them.
//
// # Thread Safety
//
// The wrapper performs no internal locking. The reference-count cell and
// the block itself are mutated non-atomically; the host environment must
// serialize all calls into a given block's handles.
package celruntime
