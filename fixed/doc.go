// Package fixed provides descriptors over fixed (non-relocatable) memory.
//
// A Memory records where a span lives, how long it is, whether it may be
// written and which element type it was fixed for. It never owns the memory:
// the frame that pinned it does. What a descriptor does own is a one-way
// validity state. Unload flips it from Live to Unloaded, after which every
// access through the descriptor, or through any view derived from it, fails
// with an invalid operation error instead of touching memory that may have
// moved or been freed.
//
// # Contexts
//
// Context[T] and ReadOnlyContext[T] are typed views. Read-only contexts have
// no writable transformation, so the compiler rejects writable
// reinterpretation of read-only memory.
//
//	err := fixed.Fix(words, func(ctx *fixed.Context[uint32]) error {
//	    vals, err := ctx.Values()
//	    ...
//	})
//
// # Transformation
//
// Transform reinterprets a context as another element type. Bytes that do
// not form a whole destination element come back as a separate residual
// descriptor:
//
//	triples, residue, err := fixed.Transform[byte, [3]byte](ctx) // 4 bytes -> 1 triple + 1 residual byte
//
// Derived views die with their source. Unloading a derived view leaves the
// source alone.
//
// # Disposables
//
// Pin keeps memory pinned until Close. Disposables live in an Arena and refer
// to their parent by handle; closing a transformation result closes the
// disposable it came from. A disposable dropped without Close is unloaded by
// a runtime cleanup instead, never by both paths.
//
//	d, err := fixed.Pin(a, samples)
//	defer d.Close()
//
// Element types must be unmanaged: no Go pointers anywhere in their layout.
package fixed
