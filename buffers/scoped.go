package buffers

// ScopedBuffer is the view handed to an allocation callback. It is only
// valid until the callback returns.
type ScopedBuffer[T any] struct {
	span    []T
	full    uint16
	storage Storage
}

// Span returns exactly the requested number of slots, zeroed.
func (b ScopedBuffer[T]) Span() []T { return b.span }

// Len returns the requested number of slots.
func (b ScopedBuffer[T]) Len() int { return len(b.span) }

// FullLength returns the capacity of the backing storage, which can exceed
// Len.
func (b ScopedBuffer[T]) FullLength() uint16 { return b.full }

// Storage returns where the slots live.
func (b ScopedBuffer[T]) Storage() Storage { return b.storage }

// Composed reports whether the slots belong to a generated shape value
// rather than an array built for this request.
func (b ScopedBuffer[T]) Composed() bool { return b.storage == StorageShape }
