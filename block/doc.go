// Package block defines the native celestial parameter record, its
// initialization defaults, the Undefined sentinel, and the fixed wire
// layout used to mirror a block into WASM linear memory.
package block
