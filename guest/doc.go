// Package guest exposes WebAssembly guest linear memory as fixed contexts.
//
// A wazero memory is a Go byte slice that is reallocated when the guest
// grows it, so a pointer into it stays fixed only until the next grow. Views
// returned here are ordinary fixed disposables over the current buffer:
//
//	d, err := guest.View[uint32](arena, mod.Memory(), ptr, n)
//	if err != nil { ... }
//	defer d.Close()
//	vals, _ := d.Value().Values()
//
// After anything that may grow the memory, Stale tells whether the view
// still points into the live buffer. List checks a Go element type against
// the canonical ABI layout of a WIT element type before viewing a list.
package guest
