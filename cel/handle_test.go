package cel

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"

	celruntime "github.com/astrokit/cel-runtime"
	"github.com/astrokit/cel-runtime/block"
	"github.com/astrokit/cel-runtime/errors"
)

// fakeEngine counts engine calls and can be forced to fail.
type fakeEngine struct {
	initCalls    int
	freeCalls    int
	deriveCalls  int
	releaseCalls int

	initStatus   int
	deriveStatus int
}

func (e *fakeEngine) Init(c *block.Celprm) int {
	e.initCalls++
	if e.initStatus != 0 {
		return e.initStatus
	}
	c.Reset()
	return 0
}

func (e *fakeEngine) Free(c *block.Celprm) int {
	e.freeCalls++
	c.Err = nil
	return 0
}

func (e *fakeEngine) Derive(c *block.Celprm) int {
	e.deriveCalls++
	if e.deriveStatus != 0 {
		return e.deriveStatus
	}
	c.Flag = 137
	c.Euler = [5]float64{0, 90, 180, 0, 1}
	return 0
}

func (e *fakeEngine) Render(c *block.Celprm, w io.Writer) int {
	fmt.Fprintf(w, "flag: %d\n", c.Flag)
	return 0
}

func (e *fakeEngine) Release(c *block.Celprm) {
	e.releaseCalls++
}

func TestNew_SoleOwner(t *testing.T) {
	eng := &fakeEngine{}
	h, err := New(eng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	if eng.initCalls != 1 {
		t.Fatalf("expected 1 init call, got %d", eng.initCalls)
	}
	if h.ReadOnly() {
		t.Fatal("sole owner should be writable")
	}
	if *h.refs != 1 {
		t.Fatalf("fresh handle should start at refcount 1, got %d", *h.refs)
	}
}

func TestNew_InitFailureTranslated(t *testing.T) {
	eng := &fakeEngine{initStatus: 2}
	_, err := New(eng)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLifecycle, Kind: errors.KindBadPrjParams}) {
		t.Fatalf("expected translated init failure, got %v", err)
	}
}

func TestClose_FreesExactlyOnce(t *testing.T) {
	eng := &fakeEngine{}
	h, err := New(eng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c1, err := h.Copy()
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	c2, err := c1.Copy()
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}

	for i, hh := range []*Handle{c2, h, c1} {
		if err := hh.Close(); err != nil {
			t.Fatalf("Close %d: %v", i, err)
		}
	}

	// Engine teardown runs once per handle; backing release once per block.
	if eng.freeCalls != 3 {
		t.Fatalf("expected 3 teardown calls, got %d", eng.freeCalls)
	}
	if eng.releaseCalls != 1 {
		t.Fatalf("expected exactly 1 release, got %d", eng.releaseCalls)
	}

	// Double close is a no-op.
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if eng.freeCalls != 3 || eng.releaseCalls != 1 {
		t.Fatal("double close must not free again")
	}
}

func TestCopy_SharesBlock(t *testing.T) {
	eng := &fakeEngine{}
	h, _ := New(eng)
	defer h.Close()

	c, err := h.Copy()
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	defer c.Close()

	if c.ReadOnly() {
		t.Fatal("copy of a sole owner stays writable")
	}
	if err := h.SetPhi0(42); err != nil {
		t.Fatalf("SetPhi0: %v", err)
	}
	v, ok, err := c.Phi0()
	if err != nil || !ok || v != 42 {
		t.Fatalf("copy should observe original's mutation: v=%g ok=%v err=%v", v, ok, err)
	}

	if err := c.SetTheta0(-7); err != nil {
		t.Fatalf("SetTheta0 via copy: %v", err)
	}
	v, ok, _ = h.Theta0()
	if !ok || v != -7 {
		t.Fatal("original should observe copy's mutation")
	}
}

func TestDeepCopy_Independent(t *testing.T) {
	eng := &fakeEngine{}
	h, _ := New(eng)
	defer h.Close()

	h.SetPhi0(10)
	h.blk.Err = &block.ErrInfo{Status: 3, Msg: "stale"}

	d, err := h.DeepCopy()
	if err != nil {
		t.Fatalf("DeepCopy: %v", err)
	}
	defer d.Close()

	if v, ok, _ := d.Phi0(); !ok || v != 10 {
		t.Fatal("deep copy should carry field values")
	}
	if d.blk.Err != nil {
		t.Fatal("deep copy must not carry engine error context")
	}

	h.SetPhi0(99)
	if v, _, _ := d.Phi0(); v == 99 {
		t.Fatal("deep copy should not observe source mutations")
	}

	// Independent block: closing both releases two blocks.
	h2, _ := New(eng)
	d2, _ := h2.DeepCopy()
	before := eng.releaseCalls
	h2.Close()
	d2.Close()
	if eng.releaseCalls != before+2 {
		t.Fatalf("expected 2 releases for 2 independent blocks, got %d", eng.releaseCalls-before)
	}
}

func TestAttach_ReadOnlyView(t *testing.T) {
	eng := &fakeEngine{}
	owner, _ := New(eng)
	defer owner.Close()

	view := Attach(owner, owner.blk, owner.refs, eng)
	if !view.ReadOnly() {
		t.Fatal("attached view must be read-only")
	}
	if view.Owner() != owner {
		t.Fatal("owner reference not retained")
	}
	if *owner.refs != 2 {
		t.Fatalf("attach should bump the shared counter, got %d", *owner.refs)
	}

	err := view.SetPhi0(1)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAccess, Kind: errors.KindReadOnly}) {
		t.Fatalf("expected read_only, got %v", err)
	}
	if _, ok, _ := owner.Phi0(); ok {
		t.Fatal("rejected mutation must leave the block unchanged")
	}

	// Reads pass through to the shared block.
	owner.SetPhi0(5)
	if v, ok, _ := view.Phi0(); !ok || v != 5 {
		t.Fatal("view should observe owner's block")
	}

	if err := view.Close(); err != nil {
		t.Fatalf("view Close: %v", err)
	}
	if view.Owner() != nil {
		t.Fatal("owner reference should be dropped on close")
	}
	if *owner.refs != 1 {
		t.Fatalf("view close should decrement the counter, got %d", *owner.refs)
	}
}

func TestAttach_ViewOutlivesOwnerClose(t *testing.T) {
	eng := &fakeEngine{}
	owner, _ := New(eng)
	view := Attach(owner, owner.blk, owner.refs, eng)

	if err := owner.Close(); err != nil {
		t.Fatalf("owner Close: %v", err)
	}
	if eng.releaseCalls != 0 {
		t.Fatal("block must not be released while a view holds it")
	}

	if v, err := view.Ref(); err != nil || v != block.RefDefaults() {
		t.Fatalf("view should still read the block: %v %v", v, err)
	}

	view.Close()
	if eng.releaseCalls != 1 {
		t.Fatalf("block released %d times, want 1", eng.releaseCalls)
	}
}

func TestSet_DeriveAndFlag(t *testing.T) {
	eng := &fakeEngine{}
	h, _ := New(eng)
	defer h.Close()

	if err := h.Set(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if f, _ := h.Flag(); f == 0 {
		t.Fatal("flag should be nonzero after a successful Set")
	}
	if e, _ := h.Euler(); e[2] != 180 {
		t.Fatalf("derived euler not visible: %v", e)
	}
}

func TestSet_FailureLeavesFlag(t *testing.T) {
	eng := &fakeEngine{}
	h, _ := New(eng)
	defer h.Close()

	if err := h.Set(); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	pre, _ := h.Flag()

	eng.deriveStatus = 2
	err := h.Set()
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindBadPrjParams}) {
		t.Fatalf("expected bad_prj_params, got %v", err)
	}
	if post, _ := h.Flag(); post != pre {
		t.Fatalf("failed Set must leave the flag: pre=%d post=%d", pre, post)
	}
}

func TestSet_RejectsReadOnly(t *testing.T) {
	eng := &fakeEngine{}
	owner, _ := New(eng)
	defer owner.Close()

	view := Attach(owner, owner.blk, owner.refs, eng)
	defer view.Close()

	err := view.Set()
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAccess, Kind: errors.KindReadOnly}) {
		t.Fatalf("expected read_only, got %v", err)
	}
	if eng.deriveCalls != 0 {
		t.Fatal("derive must not run for a read-only handle")
	}
}

func TestClosedHandle_NullBlockErrors(t *testing.T) {
	eng := &fakeEngine{}
	h, _ := New(eng)
	h.Close()

	if !h.Closed() {
		t.Fatal("Closed() should report true")
	}
	_, _, err := h.Phi0()
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAccess, Kind: errors.KindAllocation}) {
		t.Fatalf("expected allocation error on closed handle, got %v", err)
	}
	if err := h.Set(); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindAllocation}) {
		t.Fatalf("Set on closed handle: %v", err)
	}
	if _, err := h.Copy(); err == nil {
		t.Fatal("Copy on closed handle should fail")
	}
}

func TestString_RendersState(t *testing.T) {
	eng := &fakeEngine{}
	h, _ := New(eng)
	defer h.Close()

	if s := h.String(); !strings.Contains(s, "flag: 0") {
		t.Fatalf("unexpected rendering: %q", s)
	}

	h.Set()
	if s := h.String(); !strings.Contains(s, "flag: 137") {
		t.Fatalf("rendering should reflect current state: %q", s)
	}
}

func TestPrj_AttachedView(t *testing.T) {
	eng := &fakeEngine{}
	h, _ := New(eng)
	defer h.Close()

	p, err := h.Prj()
	if err != nil {
		t.Fatalf("Prj: %v", err)
	}
	if p.Owner() != h {
		t.Fatal("prj view should retain this handle as parent")
	}
	// Embedded value: no effect on the shared block counter.
	if *h.refs != 1 {
		t.Fatalf("prj attach must not bump the block counter, got %d", *h.refs)
	}

	if err := p.SetCode("TAN"); err != nil {
		t.Fatalf("prj SetCode through writable parent: %v", err)
	}
	if h.blk.Prj.Code != "TAN" {
		t.Fatal("prj mutation should hit the embedded record")
	}

	// Through an attached parent the view inherits read-only.
	view := Attach(h, h.blk, h.refs, eng)
	defer view.Close()
	vp, _ := view.Prj()
	if err := vp.SetCode("SIN"); err == nil {
		t.Fatal("prj of a read-only handle must be read-only")
	}
}

var _ celruntime.Engine = (*fakeEngine)(nil)
var _ celruntime.Releaser = (*fakeEngine)(nil)
