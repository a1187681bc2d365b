// Package errors provides structured error types for the cel-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Native engine status codes translate to kinds through a closed
// table rather than an open-ended exception hierarchy:
//
//	0  success           no error
//	1  allocation        null parameter block
//	2  bad_prj_params    invalid projection parameters
//	3  bad_cel_params    invalid transformation parameters
//	4  ill_conditioned   ill-conditioned transformation parameters
//	5  bad_planar_coords invalid (x, y) coordinates
//	6  bad_spherical...  invalid (lng, lat) coordinates
//	>6 internal          unrecognized status
//
// Use FromStatus at every native call site:
//
//	if st := eng.Derive(blk); st != 0 {
//	    return errors.FromStatus(errors.PhaseEngine, st)
//	}
//
// Or the Builder for structured construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindInvalidValue).
//		Path("ref").
//		Detail("sequence too long").
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As;
// Is matches on Phase and Kind so callers can discriminate programmatically.
package errors
