package fixed

import (
	"unsafe"

	"github.com/wippyai/fixedmem/errors"
)

// Context is a writable typed view of fixed memory.
type Context[T any] struct {
	mem *Memory
}

// ReadOnlyContext is a typed view of fixed memory that callers must not
// write through. It has no writable transformation.
type ReadOnlyContext[T any] struct {
	mem *Memory
}

// ContextOf reinterprets a writable descriptor as elements of T.
func ContextOf[T any](m *Memory) (*Context[T], error) {
	if m.readOnly {
		return nil, errors.ReadOnly(errors.PhaseAccess, "writable context")
	}
	if err := checkTyped[T](m); err != nil {
		return nil, err
	}
	return &Context[T]{mem: m}, nil
}

// ReadOnlyContextOf reinterprets any descriptor as read-only elements of T.
func ReadOnlyContextOf[T any](m *Memory) (*ReadOnlyContext[T], error) {
	if err := checkTyped[T](m); err != nil {
		return nil, err
	}
	return &ReadOnlyContext[T]{mem: m}, nil
}

func checkTyped[T any](m *Memory) error {
	if !m.IsValid() {
		return errors.InvalidOperation(errors.PhaseAccess, "memory was unloaded")
	}
	elem, err := elementOf[T]()
	if err != nil {
		return err
	}
	if m.elem != nil && m.elem != elem {
		return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			GoType(elem.String()).
			ElemType(m.elem.String()).
			Detail("descriptor was fixed for another element type").
			Build()
	}
	size := sizeOf[T]()
	if m.length%size != 0 {
		return errors.InvalidArgument(errors.PhaseAccess,
			"byte length is not a whole number of elements; use Transform to split the residue", m.length)
	}
	if m.length > 0 && m.Address()%uintptr(alignOf[T]()) != 0 {
		return errors.InvalidArgument(errors.PhaseAccess, "address is not aligned for the element type", m.Address())
	}
	return nil
}

// Values returns the elements of the context.
func (c *Context[T]) Values() ([]T, error) {
	if !c.mem.IsValid() {
		return nil, errors.InvalidOperation(errors.PhaseAccess, "context was unloaded")
	}
	return values[T](c.mem), nil
}

// BinaryValues returns the bytes of the context.
func (c *Context[T]) BinaryValues() ([]byte, error) {
	return c.mem.Bytes()
}

// Len returns the number of elements.
func (c *Context[T]) Len() int {
	return c.mem.length / sizeOf[T]()
}

// Memory returns the underlying descriptor.
func (c *Context[T]) Memory() *Memory { return c.mem }

// Unload marks the context and all views derived from it as dead.
func (c *Context[T]) Unload() { c.mem.Unload() }

// IsValid reports whether the context is still live.
func (c *Context[T]) IsValid() bool { return c.mem.IsValid() }

// AsReadOnly returns a read-only view that dies with c.
func (c *Context[T]) AsReadOnly() *ReadOnlyContext[T] {
	m := *c.mem
	m.readOnly = true
	m.life = newLifetime(c.mem.life)
	return &ReadOnlyContext[T]{mem: &m}
}

// Values returns the elements of the context. The slice must not be written.
func (c *ReadOnlyContext[T]) Values() ([]T, error) {
	if !c.mem.IsValid() {
		return nil, errors.InvalidOperation(errors.PhaseAccess, "context was unloaded")
	}
	return values[T](c.mem), nil
}

// BinaryValues returns the bytes of the context. The slice must not be written.
func (c *ReadOnlyContext[T]) BinaryValues() ([]byte, error) {
	return c.mem.ReadOnlyBytes()
}

// Len returns the number of elements.
func (c *ReadOnlyContext[T]) Len() int {
	return c.mem.length / sizeOf[T]()
}

// Memory returns the underlying descriptor.
func (c *ReadOnlyContext[T]) Memory() *Memory { return c.mem }

// Unload marks the context and all views derived from it as dead.
func (c *ReadOnlyContext[T]) Unload() { c.mem.Unload() }

// IsValid reports whether the context is still live.
func (c *ReadOnlyContext[T]) IsValid() bool { return c.mem.IsValid() }

func values[T any](m *Memory) []T {
	n := m.length / sizeOf[T]()
	if n == 0 {
		return []T{}
	}
	return unsafe.Slice((*T)(m.Pointer()), n)
}
