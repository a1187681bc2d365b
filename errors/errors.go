package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLifecycle Phase = "lifecycle" // construction, copy, teardown
	PhaseAccess    Phase = "access"    // property reads and writes
	PhaseValidate  Phase = "validate"  // caller-supplied value checks
	PhaseEngine    Phase = "engine"    // native validation/derivation
	PhaseRender    Phase = "render"    // diagnostic text rendering
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation         Kind = "allocation"
	KindReadOnly           Kind = "read_only"
	KindInvalidValue       Kind = "invalid_value"
	KindBadPrjParams       Kind = "bad_prj_params"
	KindBadCelParams       Kind = "bad_cel_params"
	KindIllConditioned     Kind = "ill_conditioned"
	KindBadPlanarCoords    Kind = "bad_planar_coords"
	KindBadSphericalCoords Kind = "bad_spherical_coords"
	KindInternal           Kind = "internal"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Status int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the property path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Status sets the native status code
func (b *Builder) Status(code int) *Builder {
	b.err.Status = code
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// statusKinds is the closed translation table from native status codes
// to error kinds. Codes outside the table map to KindInternal.
var statusKinds = map[int]Kind{
	1: KindAllocation,
	2: KindBadPrjParams,
	3: KindBadCelParams,
	4: KindIllConditioned,
	5: KindBadPlanarCoords,
	6: KindBadSphericalCoords,
}

// statusMessages mirrors the native library's error strings.
var statusMessages = map[int]string{
	1: "null parameter block pointer passed",
	2: "invalid projection parameters",
	3: "invalid coordinate transformation parameters",
	4: "ill-conditioned coordinate transformation parameters",
	5: "one or more of the (x, y) coordinates were invalid",
	6: "one or more of the (lng, lat) coordinates were invalid",
}

// FromStatus translates a native status code into an error.
// A zero status never produces an error.
func FromStatus(phase Phase, code int) *Error {
	if code == 0 {
		return nil
	}
	kind, ok := statusKinds[code]
	if !ok {
		return &Error{
			Phase:  phase,
			Kind:   KindInternal,
			Status: code,
			Detail: "unknown engine error occurred",
		}
	}
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Status: code,
		Detail: statusMessages[code],
	}
}

// Convenience constructors for common error patterns

// NullBlock reports access to a handle whose block pointer is gone.
func NullBlock(phase Phase, path ...string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Path:   path,
		Status: 1,
		Detail: "underlying parameter block is nil",
	}
}

// ReadOnly reports a mutation attempt on an attached handle.
func ReadOnly(path ...string) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindReadOnly,
		Path:   path,
		Detail: "handle is attached to a parent-owned block and is read-only",
	}
}

// InvalidValue reports a caller-supplied value failing shape or range checks.
func InvalidValue(path []string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidValue,
		Path:   path,
		Detail: detail,
	}
}

// NotFound reports an unknown property name.
func NotFound(name string) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindInvalidValue,
		Path:   []string{name},
		Detail: fmt.Sprintf("unknown property %q", name),
	}
}
