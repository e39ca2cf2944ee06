package fixed

import (
	"go.uber.org/zap"

	"github.com/wippyai/fixedmem/errors"
)

// Transform reinterprets the bytes of c as whole elements of U. The trailing
// bytes that do not form a whole U are returned as a separate residual
// descriptor. c and both results share one validity token: unloading any of
// the three unloads all of them.
//
// If no whole U fits, the context is empty and the residue is the entire span.
func Transform[T, U any](c *Context[T]) (*Context[U], *Memory, error) {
	dst, residue, err := transform[U](c.mem)
	if err != nil {
		return nil, nil, err
	}
	return &Context[U]{mem: dst}, residue, nil
}

// TransformReadOnly is Transform for read-only contexts. Both results are
// read-only.
func TransformReadOnly[T, U any](c *ReadOnlyContext[T]) (*ReadOnlyContext[U], *Memory, error) {
	dst, residue, err := transform[U](c.mem)
	if err != nil {
		return nil, nil, err
	}
	return &ReadOnlyContext[U]{mem: dst}, residue, nil
}

func transform[U any](src *Memory) (*Memory, *Memory, error) {
	if !src.IsValid() {
		return nil, nil, errors.InvalidOperation(errors.PhaseTransform, "source was unloaded")
	}
	elem, err := elementOf[U]()
	if err != nil {
		return nil, nil, err
	}

	size := sizeOf[U]()
	count, residual := ResidueOf(src.length, size)
	if count > 0 && src.Address()%uintptr(alignOf[U]()) != 0 {
		return nil, nil, errors.New(errors.PhaseTransform, errors.KindInvalidArgument).
			GoType(elem.String()).
			Value(src.Address()).
			Detail("address %#x is not aligned to %d", src.Address(), alignOf[U]()).
			Build()
	}

	dst, err := newMemory(src.base, src.offset, count*size, src.readOnly, elem, src.life)
	if err != nil {
		return nil, nil, err
	}
	residue, err := newMemory(src.base, src.offset+count*size, residual, src.readOnly, nil, src.life)
	if err != nil {
		return nil, nil, err
	}

	if residual > 0 {
		Logger().Debug("transformation left residual bytes",
			zap.String("elem", elem.String()),
			zap.Int("count", count),
			zap.Int("residual", residual))
	}
	return dst, residue, nil
}
