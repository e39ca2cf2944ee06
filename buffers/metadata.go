package buffers

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/wippyai/fixedmem"
)

// Metadata describes one buffer shape: its capacity in elements and how it
// is laid out from smaller shapes. Metadata is immutable and carries no
// element type; the Store that caches it does.
type Metadata struct {
	components []*Metadata
	size       uint16
	binary     bool
}

// seed is the atomic unit every catalog starts from.
var seed = &Metadata{size: fixedmem.AtomicCapacity, binary: true}

// Seed returns the size-1 atomic shape.
func Seed() *Metadata { return seed }

// Size returns the capacity in elements.
func (m *Metadata) Size() uint16 { return m.size }

// IsBinary reports whether m was built purely by doubling the seed.
func (m *Metadata) IsBinary() bool { return m.binary }

// ComponentCount returns the number of direct components, 0 for the seed.
func (m *Metadata) ComponentCount() int { return len(m.components) }

// Components returns a copy of the direct components in layout order.
func (m *Metadata) Components() []*Metadata {
	out := make([]*Metadata, len(m.components))
	copy(out, m.components)
	return out
}

// MaxValue returns the largest count this shape serves efficiently,
// 2*size-1, saturated at MaxCapacity.
func (m *Metadata) MaxValue() uint16 {
	return maxValue(m.size)
}

func maxValue(size uint16) uint16 {
	v := 2*uint32(size) - 1
	if v > fixedmem.MaxCapacity {
		return fixedmem.MaxCapacity
	}
	return uint16(v)
}

// Compose lays m and other out back to back. It returns false when the
// combined capacity does not fit in MaxCapacity.
func (m *Metadata) Compose(other *Metadata) (*Metadata, bool) {
	sum := uint32(m.size) + uint32(other.size)
	if sum > fixedmem.MaxCapacity {
		return nil, false
	}
	return &Metadata{
		size:       uint16(sum),
		binary:     m.binary && other.binary && m.size == other.size,
		components: []*Metadata{m, other},
	}, true
}

// Double composes m with itself.
func (m *Metadata) Double() (*Metadata, bool) {
	return m.Compose(m)
}

// Equal reports whether both shapes have the same capacity and layout.
func (m *Metadata) Equal(other *Metadata) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.size != other.size || m.binary != other.binary || len(m.components) != len(other.components) {
		return false
	}
	for i := range m.components {
		if !m.components[i].Equal(other.components[i]) {
			return false
		}
	}
	return true
}

// String renders one level of the layout, e.g. "6=(4+2)".
func (m *Metadata) String() string {
	if len(m.components) == 0 {
		return strconv.Itoa(int(m.size))
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(m.size)))
	sb.WriteString("=(")
	for i, c := range m.components {
		if i > 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(strconv.Itoa(int(c.size)))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Tree renders the full layout down to the seed. Binary subtrees are
// abbreviated to their size with a "b" suffix, e.g. "7=(6=(4b+2b)+1b)".
func (m *Metadata) Tree() string {
	var sb strings.Builder
	m.writeTree(&sb, true)
	return sb.String()
}

func (m *Metadata) writeTree(sb *strings.Builder, root bool) {
	sb.WriteString(strconv.Itoa(int(m.size)))
	if m.binary && !root {
		sb.WriteByte('b')
		return
	}
	if len(m.components) == 0 {
		return
	}
	sb.WriteString("=(")
	for i, c := range m.components {
		if i > 0 {
			sb.WriteByte('+')
		}
		c.writeTree(sb, false)
	}
	sb.WriteByte(')')
}

// Decompose splits size into its binary components, largest first.
// Decompose(0) is empty.
func Decompose(size uint16) []uint16 {
	out := make([]uint16, 0, bits.OnesCount16(size))
	for rest := size; rest != 0; {
		top := uint16(1) << (bits.Len16(rest) - 1)
		out = append(out, top)
		rest &^= top
	}
	return out
}
