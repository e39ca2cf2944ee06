// Package errors provides structured error types for the fixedmem module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes context: Go type, recorded element type, offending value,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseTransform, errors.KindTypeMismatch).
//		GoType("uint32").
//		ElemType("uint8").
//		Detail("descriptor was fixed for another element type").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidOperation(errors.PhaseAccess, "memory was unloaded")
//	err := errors.OutOfBounds(errors.PhasePin, offset, length, limit)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels carry no phase and match any error of the same kind:
//
//	if errors.Is(err, errors.ErrInvalidOperation) { ... }
package errors
