package block

import (
	"math"
	"testing"
)

func TestReset_Defaults(t *testing.T) {
	var c Celprm
	c.Flag = 137
	c.Offset = true
	c.Ref = [4]float64{1, 2, 3, 4}
	c.Err = &ErrInfo{Status: 2}

	c.Reset()

	if c.Flag != 0 {
		t.Fatalf("flag not cleared: %d", c.Flag)
	}
	if c.Offset {
		t.Fatal("offset not cleared")
	}
	if !IsUndefined(c.Phi0) || !IsUndefined(c.Theta0) {
		t.Fatal("phi0/theta0 should reset to the sentinel")
	}
	want := RefDefaults()
	if c.Ref != want {
		t.Fatalf("ref defaults: got %v, want %v", c.Ref, want)
	}
	if c.Err != nil {
		t.Fatal("error context should be dropped")
	}
	for i, v := range c.Prj.PV {
		if !IsUndefined(v) {
			t.Fatalf("pv[%d] should be the sentinel, got %g", i, v)
		}
	}
}

func TestRefDefaults(t *testing.T) {
	d := RefDefaults()
	if d[0] != 0 || d[1] != 0 || d[2] != Undefined || d[3] != 90 {
		t.Fatalf("unexpected defaults: %v", d)
	}
}

func TestIsUndefined(t *testing.T) {
	if !IsUndefined(Undefined) {
		t.Fatal("sentinel not recognized")
	}
	if !IsUndefined(math.NaN()) {
		t.Fatal("NaN should count as undefined")
	}
	if IsUndefined(0) || IsUndefined(90) {
		t.Fatal("ordinary values flagged as undefined")
	}
}

func TestCopyFrom_DropsErrContext(t *testing.T) {
	var src Celprm
	src.Reset()
	src.Phi0 = 12.5
	src.Euler = [5]float64{1, 2, 3, 4, 5}
	src.Err = &ErrInfo{Status: 3, Msg: "bad"}
	src.Prj.Err = &ErrInfo{Status: 2}

	var dst Celprm
	dst.CopyFrom(&src)

	if dst.Phi0 != 12.5 || dst.Euler != src.Euler {
		t.Fatal("fields not copied")
	}
	if dst.Err != nil || dst.Prj.Err != nil {
		t.Fatal("error context must not survive a deep copy")
	}

	// Mutations must not alias.
	dst.Ref[0] = 42
	if src.Ref[0] == 42 {
		t.Fatal("copy aliases source")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	var c Celprm
	c.Reset()
	c.Flag = 137
	c.Offset = true
	c.Phi0 = 1.25
	c.Theta0 = Undefined
	c.Ref = [4]float64{45, 30, Undefined, 90}
	c.Euler = [5]float64{45, 60, 180, 0.5, math.Sqrt(3) / 2}
	c.Latpreq = LatpreqRequired
	c.Isolat = true
	c.Prj.Code = "TAN"
	c.Prj.R0 = 180 / math.Pi
	c.Prj.PV[7] = 2.5
	c.Prj.Flag = 1
	c.Prj.Bounds = 7

	buf := make([]byte, EncodedSize)
	Encode(buf, &c)

	var got Celprm
	Decode(buf, &got)

	if got.Flag != c.Flag || got.Offset != c.Offset || got.Latpreq != c.Latpreq || got.Isolat != c.Isolat {
		t.Fatal("scalar fields did not round-trip")
	}
	if got.Phi0 != c.Phi0 || got.Theta0 != c.Theta0 {
		t.Fatal("fiducial angles did not round-trip")
	}
	if got.Ref != c.Ref || got.Euler != c.Euler {
		t.Fatal("arrays did not round-trip")
	}
	if got.Prj.Code != "TAN" || got.Prj.R0 != c.Prj.R0 || got.Prj.PV != c.Prj.PV {
		t.Fatal("projection record did not round-trip")
	}
	if got.Prj.Flag != 1 || got.Prj.Bounds != 7 {
		t.Fatal("projection scalars did not round-trip")
	}
}

func TestEncode_TruncatesLongCode(t *testing.T) {
	var c Celprm
	c.Reset()
	c.Prj.Code = "TANGENT"

	buf := make([]byte, EncodedSize)
	Encode(buf, &c)

	var got Celprm
	Decode(buf, &got)
	if got.Prj.Code != "TAN" {
		t.Fatalf("expected truncated code TAN, got %q", got.Prj.Code)
	}
}
