package block

import (
	"encoding/binary"
	"math"
)

// Wire layout of a Celprm block as seen by an engine hosted in WASM
// linear memory. Fields are little-endian with doubles on 8-byte
// boundaries; booleans widen to i32. The engine error context is
// host-side only and never crosses the boundary.
const (
	offFlag    = 0
	offOffset  = 4
	offPhi0    = 8
	offTheta0  = 16
	offRef     = 24  // 4 doubles
	offEuler   = 56  // 5 doubles
	offLatpreq = 96
	offIsolat  = 100
	offPrj     = 104

	prjOffFlag   = 0
	prjOffBounds = 4
	prjOffCode   = 8 // 3 chars + NUL
	prjOffR0     = 16
	prjOffPV     = 24 // 30 doubles
	prjOffPhi0   = 264
	prjOffTheta0 = 272
	prjOffX0     = 280
	prjOffY0     = 288

	// PrjEncodedSize is the wire size of an embedded projection record.
	PrjEncodedSize = 296

	// EncodedSize is the wire size of a full celestial block.
	EncodedSize = offPrj + PrjEncodedSize
)

func putF64(dst []byte, off int, v float64) {
	binary.LittleEndian.PutUint64(dst[off:], math.Float64bits(v))
}

func getF64(src []byte, off int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(src[off:]))
}

func putI32(dst []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(dst[off:], uint32(v))
}

func getI32(src []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(src[off:]))
}

func putBool(dst []byte, off int, v bool) {
	var u int32
	if v {
		u = 1
	}
	putI32(dst, off, u)
}

// Encode serializes c into dst, which must be at least EncodedSize bytes.
func Encode(dst []byte, c *Celprm) {
	_ = dst[EncodedSize-1]

	putI32(dst, offFlag, c.Flag)
	putBool(dst, offOffset, c.Offset)
	putF64(dst, offPhi0, c.Phi0)
	putF64(dst, offTheta0, c.Theta0)
	for i, v := range c.Ref {
		putF64(dst, offRef+8*i, v)
	}
	for i, v := range c.Euler {
		putF64(dst, offEuler+8*i, v)
	}
	putI32(dst, offLatpreq, c.Latpreq)
	putBool(dst, offIsolat, c.Isolat)
	encodePrj(dst[offPrj:], &c.Prj)
}

func encodePrj(dst []byte, p *Prjprm) {
	putI32(dst, prjOffFlag, p.Flag)
	putI32(dst, prjOffBounds, p.Bounds)
	code := p.Code
	if len(code) > 3 {
		code = code[:3]
	}
	for i := 0; i < 4; i++ {
		dst[prjOffCode+i] = 0
	}
	copy(dst[prjOffCode:prjOffCode+3], code)
	putF64(dst, prjOffR0, p.R0)
	for i, v := range p.PV {
		putF64(dst, prjOffPV+8*i, v)
	}
	putF64(dst, prjOffPhi0, p.Phi0)
	putF64(dst, prjOffTheta0, p.Theta0)
	putF64(dst, prjOffX0, p.X0)
	putF64(dst, prjOffY0, p.Y0)
}

// Decode deserializes src into c, leaving the engine error context
// untouched. src must be at least EncodedSize bytes.
func Decode(src []byte, c *Celprm) {
	_ = src[EncodedSize-1]

	c.Flag = getI32(src, offFlag)
	c.Offset = getI32(src, offOffset) != 0
	c.Phi0 = getF64(src, offPhi0)
	c.Theta0 = getF64(src, offTheta0)
	for i := range c.Ref {
		c.Ref[i] = getF64(src, offRef+8*i)
	}
	for i := range c.Euler {
		c.Euler[i] = getF64(src, offEuler+8*i)
	}
	c.Latpreq = getI32(src, offLatpreq)
	c.Isolat = getI32(src, offIsolat) != 0
	decodePrj(src[offPrj:], &c.Prj)
}

func decodePrj(src []byte, p *Prjprm) {
	p.Flag = getI32(src, prjOffFlag)
	p.Bounds = getI32(src, prjOffBounds)
	n := 0
	for n < 3 && src[prjOffCode+n] != 0 {
		n++
	}
	p.Code = string(src[prjOffCode : prjOffCode+n])
	p.R0 = getF64(src, prjOffR0)
	for i := range p.PV {
		p.PV[i] = getF64(src, prjOffPV+8*i)
	}
	p.Phi0 = getF64(src, prjOffPhi0)
	p.Theta0 = getF64(src, prjOffTheta0)
	p.X0 = getF64(src, prjOffX0)
	p.Y0 = getF64(src, prjOffY0)
}
