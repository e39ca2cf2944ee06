package guest

import (
	"reflect"
	"unsafe"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/fixedmem"
	"github.com/wippyai/fixedmem/errors"
	"github.com/wippyai/fixedmem/fixed"
	"github.com/wippyai/fixedmem/oracle"
)

// View describes count elements of T at offset in guest linear memory as a
// writable context, without copying. The view is bound to the memory's
// current backing buffer: once the guest grows its memory the buffer may
// move, and the view must be closed and taken again. Use Stale to detect
// this.
func View[T any](a *fixed.Arena, mem api.Memory, offset, count uint32) (*fixed.Disposable[*fixed.Context[T]], error) {
	m, err := describe[T](mem, offset, count, false)
	if err != nil {
		return nil, err
	}
	ctx, err := fixed.ContextOf[T](m)
	if err != nil {
		return nil, err
	}
	return fixed.Wrap(a, ctx, nil, nil)
}

// ReadOnlyView is View with a read-only context.
func ReadOnlyView[T any](a *fixed.Arena, mem api.Memory, offset, count uint32) (*fixed.Disposable[*fixed.ReadOnlyContext[T]], error) {
	m, err := describe[T](mem, offset, count, true)
	if err != nil {
		return nil, err
	}
	ctx, err := fixed.ReadOnlyContextOf[T](m)
	if err != nil {
		return nil, err
	}
	return fixed.Wrap(a, ctx, nil, nil)
}

// List views a canonical ABI list of length elements of the WIT type elem at
// ptr. elem must be flat and its size must equal the size of T.
func List[T any](a *fixed.Arena, mem api.Memory, ptr, length uint32, elem wit.Type) (*fixed.Disposable[*fixed.Context[T]], error) {
	info, err := Layout(elem)
	if err != nil {
		return nil, err
	}
	goType := reflect.TypeFor[T]()
	if uintptr(info.Size) != goType.Size() {
		return nil, errors.New(errors.PhaseGuest, errors.KindTypeMismatch).
			GoType(goType.String()).
			ElemType(typeName(elem)).
			Detail("element size %d, Go type size %d", info.Size, goType.Size()).
			Build()
	}
	if info.Align != 0 && ptr%info.Align != 0 {
		return nil, errors.InvalidArgument(errors.PhaseGuest, "list pointer is not aligned for its element type", ptr)
	}
	return View[T](a, mem, ptr, length)
}

func describe[T any](mem api.Memory, offset, count uint32, readOnly bool) (*fixed.Memory, error) {
	if mem == nil {
		return nil, errors.InvalidArgument(errors.PhaseGuest, "nil guest memory", nil)
	}
	elem := reflect.TypeFor[T]()
	if err := fixed.CheckUnmanaged(elem); err != nil {
		return nil, err
	}

	byteLen := uint64(count) * uint64(elem.Size())
	size := uint64(mem.Size())
	if uint64(offset)+byteLen > size {
		return nil, errors.OutOfBounds(errors.PhaseGuest, int(offset), int(byteLen), int(size))
	}

	buf, ok := mem.Read(offset, uint32(byteLen))
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseGuest, int(offset), int(byteLen), int(size))
	}
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(unsafe.SliceData(buf))
	}

	m, err := fixed.FromPointer[T](ptr, int(count), readOnly)
	if err != nil {
		return nil, err
	}
	Logger().Debug("guest view",
		zap.Uint32("offset", offset),
		zap.Uint32("count", count),
		zap.Stringer("elem", elem),
		zap.Bool("readonly", readOnly))
	return m, nil
}

// Oracle returns an oracle that accepts only addresses inside mem's current
// backing buffer.
func Oracle(mem api.Memory) fixedmem.Oracle {
	return oracle.Guest(mem)
}

// Described is implemented by fixed contexts.
type Described interface {
	Memory() *fixed.Memory
}

// Stale reports whether a live view no longer points into mem's current
// backing buffer. Unloaded and empty views are never stale.
func Stale(mem api.Memory, v Described) bool {
	m := v.Memory()
	if !m.IsValid() || m.Len() == 0 {
		return false
	}
	return m.Check(oracle.Guest(mem)) != nil
}
