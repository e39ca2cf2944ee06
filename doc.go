// Package fixedmem provides zero-copy access to fixed (non-relocatable) memory
// regions for native and WebAssembly interop, plus a catalog of composed
// fixed-capacity buffer shapes used to avoid heap allocation for small scoped
// allocations.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	fixedmem/      Root package with the Oracle contract and capacity constants
//	├── fixed/     Memory descriptors, typed contexts, transformation, disposables
//	├── buffers/   Buffer metadata, per-type metadata stores, scoped allocation
//	├── guest/     Fixed views over wazero guest linear memory
//	├── oracle/    OS-specific address validity probes
//	├── arena/     Handle table used for disposable parent links
//	├── config/    JSONC configuration for the buffer manager
//	├── errors/    Structured error types
//	└── cmd/       bufcat (catalog inspector) and bufgen (shape generator)
//
// # Fixed Memory
//
// A descriptor never owns the memory it points to. The frame that pinned the
// memory owns it; the descriptor only records where it is and whether it may
// still be used:
//
//	err := fixed.Fix(values, func(ctx *fixed.Context[uint32]) error {
//	    words, err := ctx.Values()
//	    if err != nil {
//	        return err
//	    }
//	    bytes, residue, err := fixed.Transform[uint32, [3]byte](ctx)
//	    ...
//	})
//
// Once a descriptor is unloaded, every access through it or through any view
// derived from it fails with an invalid operation error.
//
// # Scoped Buffers
//
// Request N slots of T and get the smallest cataloged composed buffer that
// holds them, falling back to the heap when none fits:
//
//	err := buffers.Alloc(buffers.Default(), 5, func(b buffers.ScopedBuffer[byte]) {
//	    span := b.Span() // len 5, backed by an 8-slot composed shape
//	})
//
// # Thread Safety
//
// Metadata stores and the buffer manager are safe for concurrent use.
// Descriptors and disposables follow single-owner discipline.
package fixedmem
