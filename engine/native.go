package engine

import (
	"fmt"
	"io"
	"math"
	"strings"

	celruntime "github.com/astrokit/cel-runtime"
	"github.com/astrokit/cel-runtime/block"
)

// flagSet marks a block whose derived state is current.
const flagSet = 137

// prjFlagSet marks a projection record validated by prjSet.
const prjFlagSet = 1

// Native is the pure Go reference engine. It implements the celestial
// parameter derivation for a registry of well-known projection codes:
// the fiducial point defaults, the native pole solution, and the euler
// angles feeding the spherical rotation.
type Native struct{}

// NewNative returns the reference engine.
func NewNative() *Native { return &Native{} }

func (Native) Init(c *block.Celprm) int {
	if c == nil {
		return celruntime.StatusNullBlock
	}
	c.Reset()
	return celruntime.StatusSuccess
}

func (Native) Free(c *block.Celprm) int {
	if c == nil {
		return celruntime.StatusNullBlock
	}
	c.Err = nil
	c.Prj.Err = nil
	return celruntime.StatusSuccess
}

func (Native) Derive(c *block.Celprm) int {
	if c == nil {
		return celruntime.StatusNullBlock
	}
	p := &c.Prj

	// Set up the projection first; its reference point supplies the
	// fiducial defaults.
	if st := prjSet(p); st != celruntime.StatusSuccess {
		c.Err = &block.ErrInfo{Status: st, Msg: "projection setup failed"}
		return celruntime.StatusBadPrjParams
	}
	proj := projections[strings.TrimSpace(p.Code)]

	if block.IsUndefined(c.Phi0) {
		c.Phi0 = p.Phi0
	}
	if block.IsUndefined(c.Theta0) {
		c.Theta0 = p.Theta0
	}
	if math.Abs(c.Theta0) > 90 {
		return fail(c, celruntime.StatusBadCelParams, "fiducial native latitude out of range")
	}

	lng0 := c.Ref[0]
	lat0 := c.Ref[1]
	if lat0 < -90 || lat0 > 90 {
		return fail(c, celruntime.StatusBadCelParams, "fiducial celestial latitude out of range")
	}

	phip := c.Ref[2]
	if block.IsUndefined(phip) {
		phip = 0
		if lat0 < c.Theta0 {
			phip = 180
		}
		phip = normAngle(phip + c.Phi0)
		c.Ref[2] = phip
	}
	latp0 := c.Ref[3]

	var lngp, latp float64
	c.Latpreq = block.LatpreqNone

	if c.Theta0 == 90 {
		// Fiducial point at the native pole.
		lngp = lng0
		latp = lat0
	} else {
		clat0, slat0 := cosd(lat0), sind(lat0)
		u := phip - c.Phi0
		cu, su := cosd(u), sind(u)
		ctheta0, stheta0 := cosd(c.Theta0), sind(c.Theta0)

		x := ctheta0 * cu
		y := stheta0
		z := math.Sqrt(x*x + y*y)
		if z == 0 {
			if slat0 != 0 {
				return fail(c, celruntime.StatusBadCelParams, "native pole indeterminate for nonzero fiducial latitude")
			}
			// Pole latitude unconstrained; taken verbatim from ref[3].
			c.Latpreq = block.LatpreqUnconstrained
			latp = latp0
			if block.IsUndefined(latp) {
				latp = 90
			}
		} else {
			slz := slat0 / z
			if math.Abs(slz) > 1 {
				if math.Abs(slz) > 1+tol {
					return fail(c, celruntime.StatusIllConditioned, "no solution for the native pole latitude")
				}
				slz = math.Copysign(1, slz)
			}
			base := atan2d(y, x)
			delta := acosd(slz)
			latp1 := normAngle(base + delta)
			latp2 := normAngle(base - delta)
			valid1 := math.Abs(latp1) <= 90+tol
			valid2 := math.Abs(latp2) <= 90+tol

			switch {
			case valid1 && valid2 && latp1 != latp2:
				// Two solutions; ref[3] disambiguates, northerly default.
				c.Latpreq = block.LatpreqRequired
				want := latp0
				if block.IsUndefined(want) {
					want = 90
				}
				if math.Abs(want-latp1) < math.Abs(want-latp2) {
					latp = latp1
				} else {
					latp = latp2
				}
			case valid1:
				latp = latp1
			case valid2:
				latp = latp2
			default:
				return fail(c, celruntime.StatusIllConditioned, "no valid native pole latitude")
			}
			if latp > 90 {
				latp = 90
			} else if latp < -90 {
				latp = -90
			}
		}

		z = cosd(latp) * clat0
		if math.Abs(z) < tol {
			if math.Abs(clat0) < tol {
				// Celestial pole at the fiducial point.
				lngp = lng0
			} else if latp > 0 {
				lngp = lng0 + phip - c.Phi0 - 180
			} else {
				lngp = lng0 - phip + c.Phi0
			}
		} else {
			xx := (stheta0 - sind(latp)*slat0) / z
			yy := su * ctheta0 / clat0
			if xx == 0 && yy == 0 {
				return fail(c, celruntime.StatusIllConditioned, "native pole longitude indeterminate")
			}
			lngp = lng0 - atan2d(yy, xx)
		}
		lngp = normAngle(lngp)
	}

	c.Euler[0] = lngp
	c.Euler[1] = 90 - latp
	c.Euler[2] = phip
	c.Euler[3] = cosd(c.Euler[1])
	c.Euler[4] = sind(c.Euler[1])
	c.Isolat = c.Euler[4] == 0

	// Offset the fiducial point to the planar origin.
	if c.Offset {
		x0, y0, ok := proj.s2x(p.R0, c.Phi0, c.Theta0)
		if !ok {
			return fail(c, celruntime.StatusBadPrjParams, "fiducial point unprojectable")
		}
		p.X0, p.Y0 = x0, y0
	} else {
		p.X0, p.Y0 = 0, 0
	}

	c.Err = nil
	c.Flag = flagSet
	return celruntime.StatusSuccess
}

func fail(c *block.Celprm, status int, msg string) int {
	c.Err = &block.ErrInfo{Status: status, Msg: msg}
	return status
}

// prjSet validates the embedded projection record and fills its
// reference point defaults.
func prjSet(p *block.Prjprm) int {
	if p == nil {
		return celruntime.StatusNullBlock
	}
	code := strings.TrimSpace(p.Code)
	proj, ok := projections[code]
	if !ok {
		p.Err = &block.ErrInfo{Status: celruntime.StatusBadPrjParams, Msg: fmt.Sprintf("unrecognized projection code %q", code)}
		return celruntime.StatusBadPrjParams
	}
	if p.R0 == 0 {
		p.R0 = r2d
	} else if p.R0 < 0 {
		p.Err = &block.ErrInfo{Status: celruntime.StatusBadPrjParams, Msg: "negative generating sphere radius"}
		return celruntime.StatusBadPrjParams
	}
	for i, v := range p.PV {
		if math.IsNaN(v) {
			p.Err = &block.ErrInfo{Status: celruntime.StatusBadPrjParams, Msg: fmt.Sprintf("pv[%d] is NaN", i)}
			return celruntime.StatusBadPrjParams
		}
	}
	if block.IsUndefined(p.Phi0) {
		p.Phi0 = 0
	}
	if block.IsUndefined(p.Theta0) {
		if proj.zenithal {
			p.Theta0 = 90
		} else {
			p.Theta0 = 0
		}
	}
	p.Err = nil
	p.Flag = prjFlagSet
	return celruntime.StatusSuccess
}

func (Native) Render(c *block.Celprm, w io.Writer) int {
	if c == nil {
		return celruntime.StatusNullBlock
	}
	var err error
	pr := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	pr("      flag: %d\n", c.Flag)
	pr("    offset: %s\n", boolInt(c.Offset))
	pr("      phi0: %s\n", renderVal(c.Phi0))
	pr("    theta0: %s\n", renderVal(c.Theta0))
	pr("       ref: %s %s %s %s\n",
		renderVal(c.Ref[0]), renderVal(c.Ref[1]), renderVal(c.Ref[2]), renderVal(c.Ref[3]))
	pr("     euler: %s %s %s %s %s\n",
		renderVal(c.Euler[0]), renderVal(c.Euler[1]), renderVal(c.Euler[2]),
		renderVal(c.Euler[3]), renderVal(c.Euler[4]))
	pr("   latpreq: %d%s\n", c.Latpreq, latpreqNote(c.Latpreq))
	pr("    isolat: %s\n", boolInt(c.Isolat))
	if c.Err != nil {
		pr("       err: status %d: %s\n", c.Err.Status, c.Err.Msg)
	}

	p := &c.Prj
	pr("\n     prj.*\n")
	pr("      flag: %d\n", p.Flag)
	pr("      code: %q\n", p.Code)
	pr("        r0: %s\n", renderVal(p.R0))
	npv := 0
	for i := range p.PV {
		if !block.IsUndefined(p.PV[i]) {
			pr("    pv[%02d]: %s\n", i, renderVal(p.PV[i]))
			npv++
		}
	}
	if npv == 0 {
		pr("        pv: (none)\n")
	}
	pr("      phi0: %s\n", renderVal(p.Phi0))
	pr("    theta0: %s\n", renderVal(p.Theta0))
	pr("  (x0, y0): (%s, %s)\n", renderVal(p.X0), renderVal(p.Y0))

	if err != nil {
		return celruntime.StatusInternal
	}
	return celruntime.StatusSuccess
}

func renderVal(v float64) string {
	if block.IsUndefined(v) {
		return "UNDEFINED"
	}
	return fmt.Sprintf("%.6f", v)
}

func boolInt(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func latpreqNote(v int32) string {
	switch v {
	case block.LatpreqRequired:
		return " (pole latitude required for disambiguation)"
	case block.LatpreqUnconstrained:
		return " (pole latitude unconstrained)"
	default:
		return ""
	}
}
