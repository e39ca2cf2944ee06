package buffers

import (
	"reflect"
	"sync"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 1 << 14 // max elements kept per pooled array
	poolInitCap = 16
)

// heapPools holds one sync.Pool of *[]T per element type.
type heapPools struct {
	pools sync.Map // reflect.Type -> *sync.Pool
}

func poolFor[T any](h *heapPools) *sync.Pool {
	elem := reflect.TypeFor[T]()
	if p, ok := h.pools.Load(elem); ok {
		return p.(*sync.Pool)
	}
	p, _ := h.pools.LoadOrStore(elem, &sync.Pool{
		New: func() any {
			buf := make([]T, 0, poolInitCap)
			return &buf
		},
	})
	return p.(*sync.Pool)
}

// getHeap returns an array of exactly n zeroed elements.
func getHeap[T any](h *heapPools, n int) *[]T {
	buf := poolFor[T](h).Get().(*[]T)
	if cap(*buf) < n {
		*buf = make([]T, n)
		return buf
	}
	*buf = (*buf)[:n]
	return buf
}

func putHeap[T any](h *heapPools, buf *[]T) {
	if buf == nil || cap(*buf) > poolMaxCap {
		return // reject oversized
	}
	clear(*buf)
	*buf = (*buf)[:0]
	poolFor[T](h).Put(buf)
}

// shapePools holds one sync.Pool of *S per shape type, shared by every
// manager.
var shapePools sync.Map // reflect.Type -> *sync.Pool

func shapePool[S any]() *sync.Pool {
	key := reflect.TypeFor[S]()
	if p, ok := shapePools.Load(key); ok {
		return p.(*sync.Pool)
	}
	p, _ := shapePools.LoadOrStore(key, &sync.Pool{
		New: func() any { return new(S) },
	})
	return p.(*sync.Pool)
}
