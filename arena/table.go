package arena

import "sync"

// Table is a handle table with free-list reuse and observer support.
// Safe for concurrent use; observers and Drop run without the table lock held.
type Table[V any] struct {
	entries   []entry[V]
	freeList  []Handle
	observers []Observer[V]
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry[V any] struct {
	value V
	valid bool
}

// NewTable creates an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{
		entries:  make([]entry[V], 0, 16),
		freeList: make([]Handle, 0, 8),
	}
}

// Insert stores a value and returns its handle.
func (t *Table[V]) Insert(value V) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}

	e := entry[V]{value: value, valid: true}

	var handle Handle
	if n := len(t.freeList); n > 0 {
		handle = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event[V]{Type: EventInserted, Handle: handle, Value: value})
	return handle, nil
}

// Get retrieves a value by handle.
func (t *Table[V]) Get(handle Handle) (V, bool) {
	var zero V
	if handle == 0 {
		return zero, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return zero, false
	}
	e := t.entries[idx]
	if !e.valid {
		return zero, false
	}
	return e.value, true
}

// Remove drops a value and returns (value, true) if found.
// Values implementing Dropper have Drop called once.
func (t *Table[V]) Remove(handle Handle) (V, bool) {
	value, ok := t.take(handle)
	if !ok {
		return value, false
	}

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event[V]{Type: EventRemoved, Handle: handle, Value: value})
	return value, true
}

// Detach removes a value without calling Drop. Used by values that are
// already tearing themselves down.
func (t *Table[V]) Detach(handle Handle) (V, bool) {
	value, ok := t.take(handle)
	if !ok {
		return value, false
	}
	t.notify(Event[V]{Type: EventDetached, Handle: handle, Value: value})
	return value, true
}

func (t *Table[V]) take(handle Handle) (V, bool) {
	var zero V
	if handle == 0 {
		return zero, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return zero, false
	}

	e := &t.entries[idx]
	if !e.valid {
		return zero, false
	}

	value := e.value
	e.valid = false
	e.value = zero
	t.freeList = append(t.freeList, handle)
	return value, true
}

// Len returns the number of live values.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) - len(t.freeList)
}

// Each iterates over live values until fn returns false.
// fn must not call back into the table.
func (t *Table[V]) Each(fn func(Handle, V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[V]) Subscribe(o Observer[V]) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table[V]) Unsubscribe(o Observer[V]) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close removes every live value, most recent first, and stops accepting
// inserts. Closing twice is a no-op.
func (t *Table[V]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	handles := make([]Handle, 0, len(t.entries))
	for i, e := range t.entries {
		if e.valid {
			handles = append(handles, Handle(i+1))
		}
	}
	t.mu.Unlock()

	// Children are inserted after their parents; drop them first.
	for i := len(handles) - 1; i >= 0; i-- {
		t.Remove(handles[i])
	}
	return nil
}

func (t *Table[V]) notify(e Event[V]) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnArenaEvent(e)
	}
}
