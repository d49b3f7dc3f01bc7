package broadcast

import "sync/atomic"

var consumerIDs atomic.Uint64

// cursor is one consumer's read position. next is only touched under the core
// mutex; wake carries at most one pending wake-up.
type cursor struct {
	id     uint64
	next   uint64
	wake   chan struct{}
	closed atomic.Bool
}

func newCursor(next uint64) *cursor {
	return &cursor{
		id:   consumerIDs.Add(1),
		next: next,
		wake: make(chan struct{}, 1),
	}
}

func (c *cursor) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// drain discards a wake-up that arrived after the cursor stopped waiting.
func (c *cursor) drain() {
	select {
	case <-c.wake:
	default:
	}
}
