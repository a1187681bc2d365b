// Package cel provides shared-ownership handles over celestial
// parameter blocks: construction, attachment, copy, destruction, and the
// typed property surface with mutation tracking.
//
// A sole-owner handle allocates its own block; an attached handle is a
// read-only view into a block owned by a parent object. Both kinds share
// one reference-count cell per block, and the block is released exactly
// once, when the cell reaches zero. Mutating any field that feeds the
// transform resets the block's recomputation flag; Set reruns the
// engine's derivation and restores it.
package cel
