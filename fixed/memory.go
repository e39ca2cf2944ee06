package fixed

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/fixedmem"
	"github.com/wippyai/fixedmem/errors"
)

// Unloader is implemented by every descriptor family member.
type Unloader interface {
	Unload()
	IsValid() bool
}

// Memory describes a fixed span of memory. It does not own the memory: the
// frame that fixed it does. Unload marks the descriptor dead so that later
// access fails instead of reading memory that may have moved or been freed.
type Memory struct {
	base     unsafe.Pointer
	elem     reflect.Type
	life     *lifetime
	offset   int
	length   int
	readOnly bool
}

// newMemory builds a descriptor bound to life. A nil life starts a new
// family.
func newMemory(base unsafe.Pointer, offset, length int, readOnly bool, elem reflect.Type, life *lifetime) (*Memory, error) {
	if length < 0 || uint64(length) > math.MaxUint32 {
		return nil, errors.InvalidArgument(errors.PhasePin, "byte length outside the u32 domain", length)
	}
	if offset < 0 || offset > math.MaxInt32 {
		return nil, errors.InvalidArgument(errors.PhasePin, "byte offset outside the i32 domain", offset)
	}
	if base == nil && length > 0 {
		return nil, errors.InvalidArgument(errors.PhasePin, "nil base pointer for non-empty memory", length)
	}
	if life == nil {
		life = newLifetime(nil)
	}
	return &Memory{
		base:     base,
		offset:   offset,
		length:   length,
		readOnly: readOnly,
		elem:     elem,
		life:     life,
	}, nil
}

// FromPointer describes count elements of T starting at ptr. The memory must
// stay fixed for as long as the descriptor is live; the caller owns it.
func FromPointer[T any](ptr unsafe.Pointer, count int, readOnly bool) (*Memory, error) {
	elem, err := elementOf[T]()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.InvalidArgument(errors.PhasePin, "negative element count", count)
	}
	if ptr != nil && uintptr(ptr)%uintptr(alignOf[T]()) != 0 {
		return nil, errors.New(errors.PhasePin, errors.KindInvalidArgument).
			GoType(elem.String()).
			Detail("address %#x is not aligned to %d", uintptr(ptr), alignOf[T]()).
			Build()
	}
	return newMemory(ptr, 0, count*sizeOf[T](), readOnly, elem, nil)
}

// FromBytes describes an existing byte slice as raw memory with no recorded
// element type. The slice's backing array must stay fixed for as long as the
// descriptor is live.
func FromBytes(b []byte, readOnly bool) (*Memory, error) {
	return newMemory(unsafe.Pointer(unsafe.SliceData(b)), 0, len(b), readOnly, nil, nil)
}

// Unload marks the descriptor and every view derived from it as dead.
// Calling it again is a no-op.
func (m *Memory) Unload() {
	if m.life.unload() {
		Logger().Debug("memory unloaded",
			zap.Uintptr("ptr", m.Address()),
			zap.Int("length", m.length))
	}
}

// IsValid reports whether the descriptor is still live.
func (m *Memory) IsValid() bool {
	return m.life.live()
}

// State returns Live or Unloaded.
func (m *Memory) State() State {
	if m.life.live() {
		return Live
	}
	return Unloaded
}

// Pointer returns the first byte of the described span.
func (m *Memory) Pointer() unsafe.Pointer {
	if m.base == nil {
		return nil
	}
	return unsafe.Add(m.base, m.offset)
}

// Address returns Pointer as an integer, for diagnostics and oracles.
func (m *Memory) Address() uintptr {
	return uintptr(m.Pointer())
}

// Len returns the byte length.
func (m *Memory) Len() int { return m.length }

// Offset returns the byte offset from the base of the fixed allocation.
// It is non-zero for slices and residual views.
func (m *Memory) Offset() int { return m.offset }

// IsReadOnly reports whether writes through this descriptor are forbidden.
func (m *Memory) IsReadOnly() bool { return m.readOnly }

// ElementType returns the recorded element type, or nil for raw bytes.
func (m *Memory) ElementType() reflect.Type { return m.elem }

// Bytes returns a writable view of the span.
func (m *Memory) Bytes() ([]byte, error) {
	if !m.IsValid() {
		return nil, errors.InvalidOperation(errors.PhaseAccess, "memory was unloaded")
	}
	if m.readOnly {
		return nil, errors.ReadOnly(errors.PhaseAccess, "Bytes")
	}
	return m.bytes(), nil
}

// ReadOnlyBytes returns a view of the span that callers must not write.
func (m *Memory) ReadOnlyBytes() ([]byte, error) {
	if !m.IsValid() {
		return nil, errors.InvalidOperation(errors.PhaseAccess, "memory was unloaded")
	}
	return m.bytes(), nil
}

func (m *Memory) bytes() []byte {
	if m.length == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(m.Pointer()), m.length)
}

// Slice returns a view of length bytes starting offset bytes into m.
// The view dies with m; unloading the view leaves m live. Bounds are
// checked here only.
func (m *Memory) Slice(offset, length int) (*Memory, error) {
	if !m.IsValid() {
		return nil, errors.InvalidOperation(errors.PhaseAccess, "memory was unloaded")
	}
	if offset < 0 || length < 0 || offset+length > m.length {
		return nil, errors.OutOfBounds(errors.PhaseAccess, offset, length, m.length)
	}

	var elem reflect.Type
	if m.elem != nil {
		size := int(m.elem.Size())
		if offset%size == 0 && length%size == 0 {
			elem = m.elem
		}
	}
	return newMemory(m.base, m.offset+offset, length, m.readOnly, elem, newLifetime(m.life))
}

// Equal reports whether both descriptors cover the same span with the same
// mutability. Validity is ignored, so an unloaded descriptor still equals
// its former self.
func (m *Memory) Equal(other *Memory) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.base == other.base &&
		m.length == other.length &&
		m.offset == other.offset &&
		m.readOnly == other.readOnly
}

// Check asks o whether a live descriptor still points at mapped, accessible
// memory. A nil oracle or an unloaded descriptor is not checked.
func (m *Memory) Check(o fixedmem.Oracle) error {
	if o == nil || !m.IsValid() {
		return nil
	}
	if o.IsAddressValid(m.Address(), uintptr(m.length)) {
		return nil
	}
	Logger().Warn("live descriptor points at inaccessible memory",
		zap.Uintptr("ptr", m.Address()),
		zap.Int("length", m.length))
	return errors.New(errors.PhaseProbe, errors.KindInvalidOperation).
		Value(m.Address()).
		Detail("address range %#x+%d is not accessible", m.Address(), m.length).
		Build()
}

func (m *Memory) String() string {
	elem := "bytes"
	if m.elem != nil {
		elem = m.elem.String()
	}
	return fmt.Sprintf("fixed.Memory{ptr=%#x off=%d len=%d ro=%t elem=%s state=%s}",
		m.Address(), m.offset, m.length, m.readOnly, elem, m.State())
}
