package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAccess    Phase = "access"    // typed or byte access through a descriptor
	PhaseTransform Phase = "transform" // reinterpretation between element types
	PhasePin       Phase = "pin"       // fixing memory and building descriptors
	PhaseCompose   Phase = "compose"   // buffer metadata synthesis
	PhaseAlloc     Phase = "alloc"     // scoped buffer allocation
	PhaseGuest     Phase = "guest"     // guest linear memory views
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseProbe     Phase = "probe"     // address validity probing
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidOperation Kind = "invalid_operation"
	KindInvalidArgument  Kind = "invalid_argument"
	KindOverflow         Kind = "overflow"
	KindTypeMismatch     Kind = "type_mismatch"
	KindReadOnly         Kind = "read_only"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindNotFound         Kind = "not_found"
	KindUnmanagedType    Kind = "unmanaged_type"
	KindInvalidConfig    Kind = "invalid_config"
)

// Sentinels for errors.Is that match a kind in any phase.
var (
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument}
	ErrOverflow         = &Error{Kind: KindOverflow}
	ErrTypeMismatch     = &Error{Kind: KindTypeMismatch}
	ErrReadOnly         = &Error{Kind: KindReadOnly}
	ErrOutOfBounds      = &Error{Kind: KindOutOfBounds}
	ErrUnmanagedType    = &Error{Kind: KindUnmanagedType}
	ErrInvalidConfig    = &Error{Kind: KindInvalidConfig}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	ElemType string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.GoType != "" || e.ElemType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.ElemType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", element type ")
			b.WriteString(e.ElemType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("element type ")
			b.WriteString(e.ElemType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.ElemType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
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

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// ElemType sets the recorded element type name
func (b *Builder) ElemType(t string) *Builder {
	b.err.ElemType = t
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

// InvalidOperation creates an error for access through an unloaded descriptor
func InvalidOperation(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidOperation,
		Detail: detail,
	}
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(phase Phase, detail string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
		Value:  value,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, goType, elemType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		GoType:   goType,
		ElemType: elemType,
	}
}

// ReadOnly creates an error for a mutable request over read-only memory
func ReadOnly(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindReadOnly,
		Detail: what + " over read-only memory",
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) out of bounds (length %d)", offset, offset+length, limit),
		Value:  offset,
	}
}

// Overflow creates a composition overflow error
func Overflow(phase Phase, value any, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v exceeds %d", value, limit),
		Value:  value,
	}
}

// Unmanaged creates an error for element types holding Go pointers
func Unmanaged(phase Phase, goType, reason string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnmanagedType,
		GoType: goType,
		Detail: reason,
	}
}

// InvalidConfig creates a configuration validation error
func InvalidConfig(field string, value any, reason string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidConfig,
		Detail: fmt.Sprintf("%s: %s", field, reason),
		Value:  value,
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
