package buffers

import (
	"math/bits"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/fixedmem/errors"
)

// DefaultWindow is the sizing window: a cached shape of capacity c serves a
// request for count elements when count <= c < DefaultWindow*count.
const DefaultWindow = 2

// Store is the shape catalog of one element type. It starts with the seed
// and only ever grows: entries are never replaced and MaxSpace never
// shrinks. Safe for concurrent use.
type Store struct {
	elem  reflect.Type
	cache map[uint16]*Metadata
	keys  []uint16
	// binaries[k] is the binary shape of size 1<<k. It is kept even when a
	// composite of the same size holds that slot in cache.
	binaries [16]*Metadata
	mu       sync.Mutex
	maxSpace uint16
}

func newStore(elem reflect.Type) *Store {
	s := &Store{
		elem:  elem,
		cache: make(map[uint16]*Metadata, 16),
		keys:  make([]uint16, 0, 16),
	}
	s.add(seed)
	return s
}

// ElementType returns the element type this catalog serves.
func (s *Store) ElementType() reflect.Type { return s.elem }

// Add caches m unless a shape of the same capacity is already present.
// It reports whether m was inserted.
func (s *Store) Add(m *Metadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(m)
}

func (s *Store) add(m *Metadata) bool {
	if m.binary {
		if k := bits.TrailingZeros16(m.size); s.binaries[k] == nil {
			s.binaries[k] = m
		}
	}
	if _, ok := s.cache[m.size]; ok {
		return false
	}
	s.cache[m.size] = m
	i, _ := slices.BinarySearch(s.keys, m.size)
	s.keys = slices.Insert(s.keys, i, m.size)
	if m.size > s.maxSpace {
		s.maxSpace = m.size
	}
	return true
}

// Get returns the cached shape of exactly size elements.
func (s *Store) Get(size uint16) (*Metadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.cache[size]
	return m, ok
}

// Keys returns the cached capacities in ascending order.
func (s *Store) Keys() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keys)
}

// MaxSpace returns the largest cached capacity.
func (s *Store) MaxSpace() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSpace
}

// Len returns the number of cached shapes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// GetMinimal returns the smallest cached shape c with
// count <= c < window*count, or nil. A window below 2 means DefaultWindow.
func (s *Store) GetMinimal(count uint16, window int) *Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minimal(count, window)
}

func (s *Store) minimal(count uint16, window int) *Metadata {
	if count == 0 {
		return nil
	}
	if window < DefaultWindow {
		window = DefaultWindow
	}
	limit := uint64(window) * uint64(count)
	i, _ := slices.BinarySearch(s.keys, count)
	if i < len(s.keys) && uint64(s.keys[i]) < limit {
		return s.cache[s.keys[i]]
	}
	return nil
}

// GetFundamental returns a binary shape of at least count elements,
// doubling from the largest cached binary shape not above count and caching
// every doubling on the way. When doubling overflows it stops and returns the
// largest binary shape reached, which is then smaller than count.
func (s *Store) GetFundamental(count uint16) *Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, _ := s.fundamental(count)
	return m
}

func (s *Store) fundamental(count uint16) (*Metadata, int) {
	cur := s.largestBinary(count)
	created := 0
	for cur.size < count {
		if k := bits.Len16(cur.size); k < len(s.binaries) && s.binaries[k] != nil {
			cur = s.binaries[k]
			continue
		}
		next, ok := cur.Double()
		if !ok {
			Logger().Debug("composition overflow",
				zap.Stringer("elem", s.elem),
				zap.Uint16("count", count),
				zap.Uint16("size", cur.size))
			break
		}
		s.add(next)
		created++
		Logger().Debug("shape synthesized",
			zap.Stringer("elem", s.elem),
			zap.Stringer("shape", next))
		cur = next
	}
	return cur, created
}

// largestBinary returns the largest cached binary shape whose size does not
// exceed limit. The seed always qualifies.
func (s *Store) largestBinary(limit uint16) *Metadata {
	for k := bits.Len16(limit) - 1; k >= 0; k-- {
		if m := s.binaries[k]; m != nil {
			return m
		}
	}
	return seed
}

// Lookup resolves count to a cached shape: the minimal shape within the
// window if one exists, otherwise a fundamental one synthesized on demand.
// The result can be smaller than count only when composition overflowed.
func (s *Store) Lookup(count uint16, window int) *Metadata {
	m, _ := s.lookup(count, window)
	return m
}

func (s *Store) lookup(count uint16, window int) (*Metadata, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.minimal(count, window); m != nil {
		return m, 0
	}
	return s.fundamental(count)
}

// Register caches a shape of exactly size elements, built from the binary
// decomposition of size composed largest first. The binary components and
// the intermediate composites are cached too.
func (s *Store) Register(size uint16) (*Metadata, error) {
	if size == 0 {
		return nil, errors.InvalidArgument(errors.PhaseCompose, "shape size must be positive", size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.cache[size]; ok {
		return m, nil
	}

	var acc *Metadata
	for _, part := range Decompose(size) {
		bin, _ := s.fundamental(part)
		if acc == nil {
			acc = bin
			continue
		}
		// The parts sum to size, so composing them cannot overflow.
		next, _ := acc.Compose(bin)
		if !s.add(next) {
			next = s.cache[next.size]
		}
		acc = next
	}

	Logger().Debug("shape registered",
		zap.Stringer("elem", s.elem),
		zap.Stringer("shape", acc))
	return acc, nil
}
