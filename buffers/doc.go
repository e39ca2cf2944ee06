// Package buffers serves scoped buffers of arbitrary element counts from a
// catalog of fixed-capacity composed shapes.
//
// Shapes are built from a size-1 seed by doubling (binary shapes: 1, 2, 4,
// 8, ...) and by composing two shapes back to back (3 = 2+1, 6 = 4+2, ...).
// Each element type has its own Store, owned by a Registry, that caches the
// shapes seen so far and grows it on demand.
//
// A request for count slots is served by the smallest cached shape c with
// count <= c < 2*count. If none is cached, the store doubles its largest
// binary shape until one fits and caches every step. Capacities are capped
// at 65535; past the last possible doubling the request falls back to a heap
// array of exactly count slots.
//
//	err := buffers.Alloc(nil, 5, func(b buffers.ScopedBuffer[byte]) {
//	    span := b.Span() // len 5, backed by an 8-slot shape
//	    ...
//	})
//
// Shapes are the generic Atomic and Composite types instantiated in
// shapes_gen.go. Shape values are drawn from a per-shape sync.Pool and
// zeroed on return, so the steady state allocates nothing per request. Sizes without a generated
// shape use a heap array, or a reflectively built array when
// Options.Dynamic is set.
package buffers
