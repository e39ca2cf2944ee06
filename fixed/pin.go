package fixed

import (
	"runtime"
	"unsafe"

	"github.com/wippyai/fixedmem/errors"
)

// fixSlice pins the backing array of values and describes it. The returned
// release unpins; it never unloads.
func fixSlice[T any](values []T, readOnly bool) (*Memory, func(), error) {
	elem, err := elementOf[T]()
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		m, err := newMemory(nil, 0, 0, readOnly, elem, nil)
		return m, func() {}, err
	}

	p := new(runtime.Pinner)
	p.Pin(&values[0])
	m, err := newMemory(unsafe.Pointer(&values[0]), 0, len(values)*sizeOf[T](), readOnly, elem, nil)
	if err != nil {
		p.Unpin()
		return nil, nil, err
	}
	return m, p.Unpin, nil
}

// Fix pins values for the duration of fn and hands fn a writable context
// over them. The context is unloaded when fn returns, so any view that
// escapes fn fails on use.
func Fix[T any](values []T, fn func(*Context[T]) error) error {
	m, release, err := fixSlice(values, false)
	if err != nil {
		return err
	}
	defer release()
	defer m.Unload()
	return fn(&Context[T]{mem: m})
}

// FixReadOnly is Fix with a read-only context.
func FixReadOnly[T any](values []T, fn func(*ReadOnlyContext[T]) error) error {
	m, release, err := fixSlice(values, true)
	if err != nil {
		return err
	}
	defer release()
	defer m.Unload()
	return fn(&ReadOnlyContext[T]{mem: m})
}

// Pin pins values until the returned disposable is closed.
func Pin[T any](a *Arena, values []T) (*Disposable[*Context[T]], error) {
	m, release, err := fixSlice(values, false)
	if err != nil {
		return nil, err
	}
	d, err := Wrap(a, &Context[T]{mem: m}, release, nil)
	if err != nil {
		release()
		return nil, err
	}
	return d, nil
}

// PinReadOnly is Pin with a read-only context.
func PinReadOnly[T any](a *Arena, values []T) (*Disposable[*ReadOnlyContext[T]], error) {
	m, release, err := fixSlice(values, true)
	if err != nil {
		return nil, err
	}
	d, err := Wrap(a, &ReadOnlyContext[T]{mem: m}, release, nil)
	if err != nil {
		release()
		return nil, err
	}
	return d, nil
}

// TransformDisposable transforms the context held by d. Both results name d
// as their parent: closing either one closes d too.
func TransformDisposable[T, U any](d *Disposable[*Context[T]]) (*Disposable[*Context[U]], *Disposable[*Memory], error) {
	if d.Closed() {
		return nil, nil, errors.InvalidOperation(errors.PhaseTransform, "disposable was closed")
	}
	ctx, residue, err := Transform[T, U](d.Value())
	if err != nil {
		return nil, nil, err
	}
	return wrapPair(d, ctx, residue)
}

// TransformDisposableReadOnly is TransformDisposable for read-only contexts.
func TransformDisposableReadOnly[T, U any](d *Disposable[*ReadOnlyContext[T]]) (*Disposable[*ReadOnlyContext[U]], *Disposable[*Memory], error) {
	if d.Closed() {
		return nil, nil, errors.InvalidOperation(errors.PhaseTransform, "disposable was closed")
	}
	ctx, residue, err := TransformReadOnly[T, U](d.Value())
	if err != nil {
		return nil, nil, err
	}
	return wrapPair(d, ctx, residue)
}

func wrapPair[V Unloader](parent Parent, v V, residue *Memory) (*Disposable[V], *Disposable[*Memory], error) {
	dv, err := Wrap(nil, v, nil, parent)
	if err != nil {
		return nil, nil, err
	}
	dr, err := Wrap(nil, residue, nil, parent)
	if err != nil {
		dv.cleanup.Stop()
		dv.n.close(false)
		return nil, nil, err
	}
	return dv, dr, nil
}
