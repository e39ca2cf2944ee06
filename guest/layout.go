package guest

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/fixedmem/errors"
)

// Info is the canonical ABI layout of a WIT type in linear memory.
type Info struct {
	Size  uint32
	Align uint32
}

// Layout returns the size and alignment of t. Only flat types are
// accepted: their values hold no pointers into linear memory and no handles,
// so a run of them can be viewed in place. Strings, lists and resources are
// rejected.
func Layout(t wit.Type) (Info, error) {
	return newCalculator().calculate(t)
}

type calculator struct {
	cache map[*wit.TypeDef]Info
}

func newCalculator() *calculator {
	return &calculator{cache: make(map[*wit.TypeDef]Info)}
}

func (c *calculator) calculate(t wit.Type) (Info, error) {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}, nil
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}, nil
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}, nil
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}, nil
	case wit.String:
		return Info{}, notFlat(t, "string points into linear memory")
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{}, notFlat(t, "unsupported type")
	}
}

func (c *calculator) calculateTypeDef(t *wit.TypeDef) (Info, error) {
	if cached, ok := c.cache[t]; ok {
		return cached, nil
	}

	var (
		info Info
		err  error
	)
	switch kind := t.Kind.(type) {
	case *wit.Record:
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			types[i] = f.Type
		}
		info, err = c.sequence(types)
	case *wit.Tuple:
		info, err = c.sequence(kind.Types)
	case *wit.Enum:
		size := discriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Flags:
		info = flagsLayout(len(kind.Flags))
	case *wit.Variant:
		payloads := make([]wit.Type, 0, len(kind.Cases))
		for _, cs := range kind.Cases {
			if cs.Type != nil {
				payloads = append(payloads, cs.Type)
			}
		}
		info, err = c.tagged(discriminantSize(len(kind.Cases)), payloads)
	case *wit.Option:
		info, err = c.tagged(1, []wit.Type{kind.Type})
	case *wit.Result:
		var payloads []wit.Type
		if kind.OK != nil {
			payloads = append(payloads, kind.OK)
		}
		if kind.Err != nil {
			payloads = append(payloads, kind.Err)
		}
		info, err = c.tagged(1, payloads)
	case *wit.List:
		err = notFlat(t, "list points into linear memory")
	case *wit.Own, *wit.Borrow:
		err = notFlat(t, "resource handles are not plain data")
	case wit.Type:
		info, err = c.calculate(kind)
	default:
		err = notFlat(t, "unsupported type definition")
	}
	if err != nil {
		return Info{}, err
	}

	c.cache[t] = info
	return info, nil
}

// sequence lays types out in order, each aligned, as records and tuples do.
func (c *calculator) sequence(types []wit.Type) (Info, error) {
	if len(types) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}
	maxAlign := uint32(1)
	offset := uint32(0)
	for _, typ := range types {
		l, err := c.calculate(typ)
		if err != nil {
			return Info{}, err
		}
		offset = alignTo(offset, l.Align)
		if l.Align > maxAlign {
			maxAlign = l.Align
		}
		offset += l.Size
	}
	return Info{Size: alignTo(offset, maxAlign), Align: maxAlign}, nil
}

// tagged lays out a discriminant followed by the largest payload.
func (c *calculator) tagged(disc uint32, payloads []wit.Type) (Info, error) {
	maxAlign := disc
	maxSize := uint32(0)
	for _, typ := range payloads {
		l, err := c.calculate(typ)
		if err != nil {
			return Info{}, err
		}
		if l.Align > maxAlign {
			maxAlign = l.Align
		}
		if l.Size > maxSize {
			maxSize = l.Size
		}
	}
	payloadOffset := alignTo(disc, maxAlign)
	return Info{Size: alignTo(payloadOffset+maxSize, maxAlign), Align: maxAlign}, nil
}

func flagsLayout(n int) Info {
	switch {
	case n == 0:
		return Info{Size: 0, Align: 1}
	case n <= 8:
		return Info{Size: 1, Align: 1}
	case n <= 16:
		return Info{Size: 2, Align: 2}
	default:
		// one u32 per 32 flags
		return Info{Size: uint32((n+31)/32) * 4, Align: 4}
	}
}

func discriminantSize(cases int) uint32 {
	if cases <= 256 {
		return 1
	} else if cases <= 65536 {
		return 2
	}
	return 4
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func notFlat(t wit.Type, reason string) error {
	return errors.New(errors.PhaseGuest, errors.KindInvalidArgument).
		ElemType(typeName(t)).
		Detail("%s is not flat: %s", typeName(t), reason).
		Build()
}

func typeName(t wit.Type) string {
	if td, ok := t.(*wit.TypeDef); ok && td.Name != nil {
		return *td.Name
	}
	return fmt.Sprintf("%T", t)
}
