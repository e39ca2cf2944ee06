package fixedmem

// MaxCapacity is the largest element count a composed buffer can describe.
const MaxCapacity = 1<<16 - 1

// AtomicCapacity is the capacity of the seed buffer shape of every element type.
const AtomicCapacity = 1

// Oracle answers whether an address range is currently mapped and
// read/write accessible. It is a diagnostic check only: descriptors rely on
// their own validity state, never on an oracle.
type Oracle interface {
	IsAddressValid(ptr, length uintptr) bool
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ptr, length uintptr) bool

// IsAddressValid calls f(ptr, length).
func (f OracleFunc) IsAddressValid(ptr, length uintptr) bool {
	return f(ptr, length)
}
