// Package engine provides the celestial-transform engines behind the
// handle layer.
//
// Two implementations are offered. Native is a pure Go engine that
// derives the spherical rotation in-process: projection validation,
// fiducial defaults, the native pole solution, and the euler angles.
// Wazero hosts an engine compiled to WebAssembly, mirroring parameter
// blocks into guest linear memory for each call and decoding the
// guest's view back out.
//
// Both satisfy the Engine contract from the root package, so callers
// construct handles the same way regardless of where the math runs:
//
//	h, err := cel.New(engine.NewNative())
//
// Engines are stateless with respect to blocks; all parameter state
// lives in the caller's block.Celprm.
package engine
