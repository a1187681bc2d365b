package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestFromStatus_Table(t *testing.T) {
	cases := []struct {
		code int
		kind Kind
	}{
		{1, KindAllocation},
		{2, KindBadPrjParams},
		{3, KindBadCelParams},
		{4, KindIllConditioned},
		{5, KindBadPlanarCoords},
		{6, KindBadSphericalCoords},
		{7, KindInternal},
		{42, KindInternal},
		{-1, KindInternal},
	}

	for _, c := range cases {
		err := FromStatus(PhaseEngine, c.code)
		if err == nil {
			t.Fatalf("code %d: expected error", c.code)
		}
		if err.Kind != c.kind {
			t.Fatalf("code %d: expected kind %s, got %s", c.code, c.kind, err.Kind)
		}
		if err.Phase != PhaseEngine {
			t.Fatalf("code %d: wrong phase %s", c.code, err.Phase)
		}
		if err.Status != c.code {
			t.Fatalf("code %d: status not carried, got %d", c.code, err.Status)
		}
	}
}

func TestFromStatus_ZeroNeverErrors(t *testing.T) {
	if err := FromStatus(PhaseEngine, 0); err != nil {
		t.Fatalf("status 0 must not produce an error, got %v", err)
	}
}

func TestError_Is(t *testing.T) {
	err := FromStatus(PhaseEngine, 2)

	if !stderrors.Is(err, &Error{Phase: PhaseEngine, Kind: KindBadPrjParams}) {
		t.Fatal("expected Is match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseEngine, Kind: KindBadCelParams}) {
		t.Fatal("unexpected Is match on different kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseLifecycle, Kind: KindBadPrjParams}) {
		t.Fatal("unexpected Is match on different phase")
	}
}

func TestError_Message(t *testing.T) {
	err := New(PhaseValidate, KindInvalidValue).
		Path("ref").
		Detail("sequence of %d values exceeds 4", 5).
		Build()

	msg := err.Error()
	for _, want := range []string{"[validate]", "invalid_value", "at ref", "sequence of 5 values exceeds 4"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New(PhaseLifecycle, KindAllocation).Cause(cause).Build()

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Fatalf("cause missing from message: %q", err.Error())
	}
}

func TestReadOnly(t *testing.T) {
	err := ReadOnly("phi0")
	if err.Kind != KindReadOnly || err.Phase != PhaseAccess {
		t.Fatalf("wrong category: %v", err)
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("message should mention read-only: %q", err.Error())
	}
}

func TestNullBlock(t *testing.T) {
	err := NullBlock(PhaseAccess, "offset")
	if err.Kind != KindAllocation {
		t.Fatalf("null block should be an allocation error, got %s", err.Kind)
	}
	if err.Status != 1 {
		t.Fatalf("null block carries status 1, got %d", err.Status)
	}
}
