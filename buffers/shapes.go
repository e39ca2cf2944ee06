package buffers

import "unsafe"

//go:generate go run ../cmd/bufgen --out shapes_gen.go --package buffers

// Atomic is the one-element shape.
type Atomic[T any] struct {
	Value T
}

// Span returns the single slot as a slice.
func (a *Atomic[T]) Span() []T {
	return unsafe.Slice(&a.Value, 1)
}

// Composite lays two shapes of T back to back. L and R must themselves be
// shapes of T (Atomic or Composite), so the pair is a contiguous run of T
// with no padding between the halves.
type Composite[T, L, R any] struct {
	Left  L
	Right R
}

// Span returns every slot of the composite as one slice.
func (c *Composite[T, L, R]) Span() []T {
	var zero T
	n := unsafe.Sizeof(*c) / unsafe.Sizeof(zero)
	return unsafe.Slice((*T)(unsafe.Pointer(c)), n)
}

// shapeSource hands out the full slot run of one shape value and takes it
// back once the caller is done.
type shapeSource[T any] interface {
	acquire() ([]T, any)
	release(any)
}

// pooledShape serves values of shape S from a per-shape pool. Values come
// back zeroed.
type pooledShape[T, S any] struct{}

func (pooledShape[T, S]) acquire() ([]T, any) {
	s := shapePool[S]().Get().(*S)
	var zero T
	n := unsafe.Sizeof(*s) / unsafe.Sizeof(zero)
	return unsafe.Slice((*T)(unsafe.Pointer(s)), n), s
}

func (pooledShape[T, S]) release(h any) {
	s := h.(*S)
	var zero T
	clear(unsafe.Slice((*T)(unsafe.Pointer(s)), unsafe.Sizeof(*s)/unsafe.Sizeof(zero)))
	shapePool[S]().Put(s)
}

// StaticSizes returns the capacities that have a generated shape,
// ascending.
func StaticSizes() []uint16 {
	out := make([]uint16, len(staticSizes))
	copy(out, staticSizes)
	return out
}
