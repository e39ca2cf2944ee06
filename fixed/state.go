package fixed

import "sync/atomic"

// State is the validity state of a descriptor.
type State uint32

const (
	// Live descriptors may be read and written through.
	Live State = iota
	// Unloaded descriptors fail every access. The transition is one-way.
	Unloaded
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Unloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// lifetime is the validity token of one descriptor. A derived view links to
// the token of the view it came from and is live only while every ancestor is.
type lifetime struct {
	parent *lifetime
	state  atomic.Uint32
}

func newLifetime(parent *lifetime) *lifetime {
	return &lifetime{parent: parent}
}

// unload flips Live to Unloaded. Reports whether this call made the transition.
func (l *lifetime) unload() bool {
	return l.state.CompareAndSwap(uint32(Live), uint32(Unloaded))
}

func (l *lifetime) live() bool {
	for cur := l; cur != nil; cur = cur.parent {
		if State(cur.state.Load()) != Live {
			return false
		}
	}
	return true
}
