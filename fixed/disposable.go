package fixed

import (
	stderrors "errors"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/fixedmem"
	"github.com/wippyai/fixedmem/arena"
	"github.com/wippyai/fixedmem/errors"
)

// Arena owns the teardown records of disposables. A disposable never points
// at its record's children, and records never point back at disposables, so
// an unreachable disposable can still be collected.
type Arena struct {
	table *arena.Table[*node]
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	t := arena.NewTable[*node]()
	t.Subscribe(tableLog{})
	return &Arena{table: t}
}

type tableLog struct{}

func (tableLog) OnArenaEvent(e arena.Event[*node]) {
	if ce := Logger().Check(zap.DebugLevel, "arena event"); ce != nil {
		ce.Write(
			zap.Stringer("event", e.Type),
			zap.Uint32("handle", uint32(e.Handle)))
	}
}

var (
	defaultArena     *Arena
	defaultArenaOnce sync.Once
)

// DefaultArena returns the process-wide arena used when nil is passed.
func DefaultArena() *Arena {
	defaultArenaOnce.Do(func() {
		defaultArena = NewArena()
	})
	return defaultArena
}

// Len returns the number of open disposables.
func (a *Arena) Len() int { return a.table.Len() }

// Close closes every open disposable, newest first, without cascading to
// parents (they are closed by the same sweep).
func (a *Arena) Close() error { return a.table.Close() }

// Check runs m.Check(o) on the descriptor of every open disposable and
// joins the failures.
func (a *Arena) Check(o fixedmem.Oracle) error {
	var mems []*Memory
	a.table.Each(func(_ arena.Handle, n *node) bool {
		if m := memoryOf(n.value); m != nil {
			mems = append(mems, m)
		}
		return true
	})

	var errs []error
	for _, m := range mems {
		if err := m.Check(o); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func memoryOf(v Unloader) *Memory {
	switch v := v.(type) {
	case *Memory:
		return v
	case interface{ Memory() *Memory }:
		return v.Memory()
	}
	return nil
}

func (a *Arena) orDefault() *Arena {
	if a == nil {
		return DefaultArena()
	}
	return a
}

// node is the arena-resident teardown record of one disposable.
type node struct {
	arena   *Arena
	value   Unloader
	release func()
	parent  *node
	handle  arena.Handle
	closed  atomic.Bool
}

// Drop is called by the arena when it removes the node.
func (n *node) Drop() {
	n.close(false)
}

// close runs the teardown exactly once. With cascade it then closes the
// parent disposable, if there is one.
func (n *node) close(cascade bool) {
	if !n.closed.CompareAndSwap(false, true) {
		return
	}
	if n.value.IsValid() {
		n.value.Unload()
	}
	if n.release != nil {
		n.release()
	}
	n.arena.table.Detach(n.handle)

	if cascade && n.parent != nil {
		n.parent.close(true)
	}
}

// Disposable pairs a descriptor with deterministic teardown. Close unloads
// the descriptor exactly once, releases what the fixing frame held, then
// closes the parent disposable. If a disposable becomes unreachable without
// Close, a runtime cleanup unloads and releases it instead; the two paths
// never both run.
type Disposable[V Unloader] struct {
	value V
	n     *node
	// parent stays reachable, and its cleanup pending, while d is.
	parent  Parent
	cleanup runtime.Cleanup
}

// Parent is satisfied by every *Disposable.
type Parent interface {
	link() *node
}

// Wrap registers v in a as a disposable. release, if non-nil, runs once
// after v is unloaded. parent may be nil; a non-nil parent must belong to
// the same arena and stays reachable for as long as the new disposable is.
func Wrap[V Unloader](a *Arena, v V, release func(), parent Parent) (*Disposable[V], error) {
	var p *node
	if parent != nil {
		p = parent.link()
	}
	if a == nil && p != nil {
		a = p.arena
	}
	a = a.orDefault()

	n := &node{arena: a, value: v, release: release}
	if p != nil {
		if p.arena != a {
			return nil, errors.InvalidArgument(errors.PhasePin, "parent disposable belongs to another arena", nil)
		}
		if p.closed.Load() {
			return nil, errors.InvalidOperation(errors.PhasePin, "parent disposable was closed")
		}
		n.parent = p
	}

	handle, err := a.table.Insert(n)
	if err != nil {
		return nil, errors.Wrap(errors.PhasePin, errors.KindInvalidOperation, err, "arena closed")
	}
	n.handle = handle

	d := &Disposable[V]{value: v, n: n}
	if p != nil {
		d.parent = parent
	}
	d.cleanup = runtime.AddCleanup(d, cleanupNode, n)
	return d, nil
}

func cleanupNode(n *node) {
	if n.closed.Load() {
		return
	}
	Logger().Warn("disposable collected without Close",
		zap.Uint32("handle", uint32(n.handle)))
	n.close(false)
}

func (d *Disposable[V]) link() *node {
	if d == nil {
		return nil
	}
	return d.n
}

// Value returns the wrapped descriptor.
func (d *Disposable[V]) Value() V { return d.value }

// Handle returns the disposable's arena handle.
func (d *Disposable[V]) Handle() arena.Handle { return d.n.handle }

// ParentHandle returns the parent's arena handle, or 0.
func (d *Disposable[V]) ParentHandle() arena.Handle {
	if d.n.parent == nil {
		return 0
	}
	return d.n.parent.handle
}

// Closed reports whether the disposable was closed or swept.
func (d *Disposable[V]) Closed() bool { return d.n.closed.Load() }

// Close unloads the descriptor if still valid, releases it and closes the
// parent disposable. Closing twice is a no-op.
func (d *Disposable[V]) Close() error {
	d.cleanup.Stop()
	d.n.close(true)
	return nil
}
