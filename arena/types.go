package arena

import "errors"

// ErrClosed is returned by Insert after the table was closed.
var ErrClosed = errors.New("arena closed")

// Handle is an opaque reference to a value in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType identifies a table lifecycle notification.
type EventType uint8

const (
	EventInserted EventType = iota
	EventRemoved
	EventDetached
)

func (e EventType) String() string {
	switch e {
	case EventInserted:
		return "inserted"
	case EventRemoved:
		return "removed"
	case EventDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// Event represents a table lifecycle event.
type Event[V any] struct {
	Value  V
	Handle Handle
	Type   EventType
}

// Observer receives notifications about table lifecycle events.
type Observer[V any] interface {
	OnArenaEvent(Event[V])
}

// Dropper is implemented by values that release something when removed.
type Dropper interface {
	Drop()
}
