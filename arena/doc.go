// Package arena provides a handle table for values that refer to each other
// by index instead of by pointer.
//
// Disposable fixed-memory wrappers record their parent as an arena handle, so
// a transformation result and the wrapper it came from never form a pointer
// cycle. The table hands out small integer handles, reuses freed slots, and
// drops every live value when it is closed.
//
//	tbl := arena.NewTable[*thing]()
//	defer tbl.Close()
//
//	h, err := tbl.Insert(v)
//	v, ok := tbl.Get(h)
//	v, ok = tbl.Remove(h) // calls v.Drop() if v implements Dropper
//
// Handle 0 is reserved and always invalid.
package arena
