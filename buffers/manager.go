package buffers

import (
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/fixedmem"
	"github.com/wippyai/fixedmem/errors"
	"github.com/wippyai/fixedmem/fixed"
)

// Manager hands out scoped buffers of any element count. A request is served
// by the smallest cached shape within the sizing window, synthesizing one if
// needed, and falls back to a heap array when no shape fits or the shape
// exceeds the shape budget. Safe for concurrent use.
type Manager struct {
	registry *Registry
	logger   *zap.Logger
	resolver Resolver
	heap     heapPools
	preload  sync.Map // reflect.Type -> struct{}
	stats    counters
	opts     Options
}

type counters struct {
	shape       atomic.Uint64
	dynamic     atomic.Uint64
	heap        atomic.Uint64
	synthesized atomic.Uint64
}

// Stats are cumulative allocation counters of a Manager.
type Stats struct {
	// Shape counts allocations served by a pooled generated shape.
	Shape uint64
	// Dynamic counts allocations served by the reflective resolver.
	Dynamic uint64
	// Heap counts heap fallbacks.
	Heap uint64
	// Synthesized counts shapes added to catalogs by this manager's lookups.
	Synthesized uint64
}

// NewManager creates a manager with the given options.
func NewManager(opts Options) *Manager {
	if opts.Window < DefaultWindow {
		opts.Window = DefaultWindow
	}
	if opts.ShapeLimit < 0 {
		opts.ShapeLimit = 0
	}
	m := &Manager{
		registry: opts.Registry,
		logger:   opts.Logger,
		resolver: StaticResolver(),
		opts:     opts,
	}
	if m.registry == nil {
		m.registry = DefaultRegistry()
	}
	if opts.Dynamic {
		m.resolver = ChainResolver(StaticResolver(), DynamicResolver())
	}
	return m
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// Default returns the process-wide manager built from DefaultOptions.
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = NewManager(DefaultOptions())
	})
	return defaultManager
}

// Options returns the effective configuration.
func (m *Manager) Options() Options { return m.opts }

// Registry returns the registry holding the manager's catalogs.
func (m *Manager) Registry() *Registry { return m.registry }

// Resolver returns the factory resolver in use.
func (m *Manager) Resolver() Resolver { return m.resolver }

// Stats returns a snapshot of the allocation counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Shape:       m.stats.shape.Load(),
		Dynamic:     m.stats.dynamic.Load(),
		Heap:        m.stats.heap.Load(),
		Synthesized: m.stats.synthesized.Load(),
	}
}

func (m *Manager) log() *zap.Logger {
	if m.logger != nil {
		return m.logger
	}
	return Logger()
}

// store returns the catalog for elem, registering the preload sizes the
// first time this manager sees elem.
func (m *Manager) store(elem reflect.Type) (*Store, error) {
	s := m.registry.Store(elem)
	if len(m.opts.Preload) == 0 {
		return s, nil
	}
	if _, seen := m.preload.LoadOrStore(elem, struct{}{}); seen {
		return s, nil
	}
	for _, size := range m.opts.Preload {
		if _, err := s.Register(size); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Storage identifies where a plan places the slots.
type Storage uint8

const (
	// StorageShape is a pooled generated shape value.
	StorageShape Storage = iota
	// StorageDynamic is a reflectively built array, fresh per request.
	StorageDynamic
	// StorageHeap is a heap array, pooled when Options.PoolHeap is set.
	StorageHeap
)

func (s Storage) String() string {
	switch s {
	case StorageShape:
		return "shape"
	case StorageDynamic:
		return "dynamic"
	case StorageHeap:
		return "heap"
	default:
		return "unknown"
	}
}

// Plan is the decision for one allocation request.
type Plan struct {
	// Shape is the catalog entry chosen for the request. It is smaller than
	// Count only when composition overflowed.
	Shape *Metadata
	// Reason explains a heap fallback.
	Reason string
	// Count is the requested number of slots.
	Count int
	// Length is the capacity of the backing storage.
	Length uint16
	// Storage is where the slots live.
	Storage Storage
}

// Composed reports whether the plan uses a generated shape.
func (p Plan) Composed() bool { return p.Storage == StorageShape }

// PlanFor decides how count elements of T would be allocated, without
// allocating. Shapes synthesized along the way are cached.
func PlanFor[T any](m *Manager, count int, opts ...AllocOption) (Plan, error) {
	p, _, err := plan[T](m, count, opts)
	return p, err
}

func plan[T any](m *Manager, count int, opts []AllocOption) (Plan, Factory[T], error) {
	var none Factory[T]
	if count <= 0 || count > fixedmem.MaxCapacity {
		return Plan{}, none, errors.InvalidArgument(errors.PhaseAlloc, "count must be within 1..65535", count)
	}
	elem := reflect.TypeFor[T]()
	if err := fixed.CheckUnmanaged(elem); err != nil {
		return Plan{}, none, errors.Wrap(errors.PhaseAlloc, errors.KindInvalidArgument, err, "unsupported element type "+elem.String())
	}

	ao := collectOptions(opts)

	s, err := m.store(elem)
	if err != nil {
		return Plan{}, none, err
	}
	shape, created := s.lookup(uint16(count), m.opts.Window)
	if created > 0 {
		m.stats.synthesized.Add(uint64(created))
	}

	p := Plan{Shape: shape, Count: count, Length: uint16(count), Storage: StorageHeap}
	switch {
	case int(shape.size) < count:
		p.Reason = "composition overflow"
	case ao.forceHeap:
		p.Reason = "heap forced"
		p.Length = shape.size
	default:
		p.Length = shape.size
		f, ok := Resolve[T](m.resolver, shape.size)
		if !ok {
			p.Reason = "no factory for shape"
			break
		}
		var zero T
		if f.pooled && !ao.preferShape && int(shape.size)*int(unsafe.Sizeof(zero)) > m.opts.ShapeLimit {
			p.Reason = "shape exceeds size limit"
			break
		}
		if f.pooled {
			p.Storage = StorageShape
		} else {
			p.Storage = StorageDynamic
		}
		return p, f, nil
	}
	return p, none, nil
}

// Alloc calls fn with a scoped buffer of exactly count zeroed elements of T.
// fn must not keep the span after it returns. A nil manager means Default.
func Alloc[T any](m *Manager, count int, fn func(ScopedBuffer[T]), opts ...AllocOption) error {
	_, err := AllocWith(m, count, fn, func(b ScopedBuffer[T], fn func(ScopedBuffer[T])) struct{} {
		fn(b)
		return struct{}{}
	}, opts...)
	return err
}

// AllocWith is Alloc with a state argument passed through to fn and fn's
// result returned.
func AllocWith[T, A, R any](m *Manager, count int, arg A, fn func(ScopedBuffer[T], A) R, opts ...AllocOption) (R, error) {
	var result R
	if m == nil {
		m = Default()
	}
	p, f, err := plan[T](m, count, opts)
	if err != nil {
		return result, err
	}

	switch p.Storage {
	case StorageShape, StorageDynamic:
		if p.Storage == StorageShape {
			m.stats.shape.Add(1)
		} else {
			m.stats.dynamic.Add(1)
		}
		full, h := f.src.acquire()
		defer f.src.release(h)
		return fn(ScopedBuffer[T]{span: full[:count:count], full: p.Length, storage: p.Storage}, arg), nil
	}

	m.stats.heap.Add(1)
	if ce := m.log().Check(zap.DebugLevel, "heap fallback"); ce != nil {
		ce.Write(
			zap.Stringer("elem", reflect.TypeFor[T]()),
			zap.Int("count", count),
			zap.Uint16("length", p.Length),
			zap.String("reason", p.Reason))
	}

	var full []T
	if m.opts.PoolHeap {
		buf := getHeap[T](&m.heap, int(p.Length))
		defer putHeap(&m.heap, buf)
		full = *buf
	} else {
		full = make([]T, p.Length)
	}
	return fn(ScopedBuffer[T]{span: full[:count:count], full: p.Length, storage: StorageHeap}, arg), nil
}
