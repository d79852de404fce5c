package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseFetch   Phase = "fetch"   // raw module retrieval
	PhaseDecode  Phase = "decode"  // bytes to module
	PhaseEncode  Phase = "encode"  // module to bytes
	PhaseVerify  Phase = "verify"  // structural verification
	PhaseLink    Phase = "link"    // handle to definition lookup
	PhaseResolve Phase = "resolve" // type and struct resolution
	PhaseCache   Phase = "cache"   // cache tier protocol
	PhaseState   Phase = "state"   // chain state access
	PhaseConfig  Phase = "config"  // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindVerification       Kind = "verification"
	KindLinker             Kind = "linker"
	KindOutOfGas           Kind = "out_of_gas"
	KindInvariantViolation Kind = "invariant_violation"
	KindProtocolMisuse     Kind = "protocol_misuse"
	KindInvalidData        Kind = "invalid_data"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
)

// Sentinels for errors.Is matching. Only Phase and Kind are compared.
var (
	ErrVerification       = &Error{Phase: PhaseVerify, Kind: KindVerification}
	ErrLinker             = &Error{Phase: PhaseLink, Kind: KindLinker}
	ErrOutOfGas           = &Error{Phase: PhaseResolve, Kind: KindOutOfGas}
	ErrInvariantViolation = &Error{Phase: PhaseResolve, Kind: KindInvariantViolation}
	ErrProtocolMisuse     = &Error{Phase: PhaseCache, Kind: KindProtocolMisuse}
)

// Error is the structured error type used throughout the module cache
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Detail string
	Path   []string
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

	if e.Module != "" {
		b.WriteString(" in ")
		b.WriteString(e.Module)
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

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Module sets the module the error refers to
func (b *Builder) Module(id fmt.Stringer) *Builder {
	if id != nil {
		b.err.Module = id.String()
	}
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// Convenience constructors for common error patterns

// Verification creates a verification failure error
func Verification(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindVerification,
		Path:   path,
		Detail: detail,
	}
}

// Linker creates a linkage fault: a present module lacks a name a dependent expected
func Linker(module fmt.Stringer, what, name string) *Error {
	e := &Error{
		Phase:  PhaseLink,
		Kind:   KindLinker,
		Detail: fmt.Sprintf("%s %q not declared", what, name),
		Value:  name,
	}
	if module != nil {
		e.Module = module.String()
	}
	return e
}

// OutOfGas creates a resource exhaustion error
func OutOfGas(requested, remaining uint64) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindOutOfGas,
		Detail: fmt.Sprintf("charge of %d exceeds remaining budget %d", requested, remaining),
		Value:  requested,
	}
}

// InvariantViolation creates an internal-fault error
func InvariantViolation(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvariantViolation,
		Detail: detail,
	}
}

// ProtocolMisuse creates an error for an operation that is illegal on a cache tier
func ProtocolMisuse(detail string) *Error {
	return &Error{
		Phase:  PhaseCache,
		Kind:   KindProtocolMisuse,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Decode creates a module decoding error
func Decode(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
