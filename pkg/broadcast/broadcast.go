package broadcast

import (
	"context"
	"iter"
	"runtime"
	"sync"
	"weak"

	"github.com/google/uuid"

	"github.com/dmitrymomot/streamcast/core/logger"
)

// Handle is a strong consumer of a broadcast. Every handle has its own read
// position; the source stays alive while at least one Handle is open.
//
// A Handle must not be read from more than one goroutine at a time. Clone it
// instead. Close may be called from any goroutine.
type Handle[T any] struct {
	c   *core[T]
	cur *cursor
	rel *release[T]
}

// release drops a handle's strong reference exactly once, either on Close or
// when the handle becomes unreachable.
type release[T any] struct {
	once sync.Once
	c    *core[T]
	cur  *cursor
}

func (r *release[T]) do() {
	r.once.Do(func() { r.c.releaseStrong(r.cur) })
}

// New wraps src into a broadcast that buffers the last capacity items.
// It panics if capacity is less than 1 or src is nil.
//
// The source is only polled when a handle asks for an item nobody has produced
// yet, and never again once it returned io.EOF or an error. If src implements
// io.Closer it is closed after the last strong handle is closed.
//
// Example:
//
//	h := broadcast.New(broadcast.FromSlice(1, 2, 3), 8)
//	defer h.Close()
//
//	other := h.Clone()
//	defer other.Close()
//
//	for it, err := range h.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(it.Missed, it.Value)
//	}
func New[T any](src Source[T], capacity int, opts ...Option) *Handle[T] {
	if capacity < 1 {
		panic("broadcast: capacity must be at least 1")
	}
	if src == nil {
		panic("broadcast: source must not be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = uuid.NewString()
	}

	o.logger.Debug("broadcast created",
		logger.Stream(o.name),
		logger.Capacity(capacity))

	return newHandle(newCore(src, capacity, o), 0)
}

// NewFromConfig is New with the capacity and name taken from cfg.
// A non-positive capacity falls back to DefaultCapacity.
func NewFromConfig[T any](src Source[T], cfg Config, opts ...Option) *Handle[T] {
	capacity := cfg.Capacity
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return New(src, capacity, append([]Option{WithName(cfg.Name)}, opts...)...)
}

func newHandle[T any](c *core[T], pos uint64) *Handle[T] {
	h := &Handle[T]{c: c, cur: newCursor(pos)}
	h.rel = &release[T]{c: c, cur: h.cur}
	runtime.AddCleanup(h, func(r *release[T]) {
		r.do()
		r.cur.signal()
	}, h.rel)
	return h
}

// Next returns the next item for this handle, blocking until it is produced.
//
// Item.Missed reports how many items were evicted from the buffer since the
// previous read. ErrFinished is returned once the source is exhausted and
// every buffered item was read. Cancelling ctx abandons the wait; another
// handle takes over polling the source if needed.
func (h *Handle[T]) Next(ctx context.Context) (Item[T], error) {
	// h must outlive the wait, or its cleanup would release the cursor
	// while Next is parked on it.
	defer runtime.KeepAlive(h)
	return h.c.next(ctx, h.cur)
}

// All iterates over the remaining items. Iteration stops silently at the end
// of the stream; any other error is yielded once before stopping.
func (h *Handle[T]) All(ctx context.Context) iter.Seq2[Item[T], error] {
	return all(ctx, h.Next)
}

// Clone returns a new strong handle that starts at the production frontier:
// it only sees items produced after the call. Cloning a closed handle returns
// a closed handle.
func (h *Handle[T]) Clone() *Handle[T] {
	if h.cur.closed.Load() {
		return closedHandle(h.c)
	}
	defer runtime.KeepAlive(h)
	pos, ok := h.c.attachStrong()
	if !ok {
		return closedHandle(h.c)
	}
	return newHandle(h.c, pos)
}

// Downgrade returns a weak handle positioned where h currently is.
// The weak handle does not keep the source alive.
func (h *Handle[T]) Downgrade() *WeakHandle[T] {
	defer runtime.KeepAlive(h)
	return newWeakHandle(weak.Make(h.c), h.c.attachWeak(h.cur))
}

// IsTerminated reports whether Next can never return another item.
func (h *Handle[T]) IsTerminated() bool {
	defer runtime.KeepAlive(h)
	return h.c.terminated(h.cur)
}

// Stats returns a snapshot of the shared broadcast state.
func (h *Handle[T]) Stats() Stats {
	defer runtime.KeepAlive(h)
	return h.c.stats()
}

// Close releases the handle. A Next blocked on this handle returns ErrClosed.
// Closing the last strong handle tears down the source. Close is idempotent.
func (h *Handle[T]) Close() error {
	if !h.cur.closed.CompareAndSwap(false, true) {
		return nil
	}
	h.rel.do()
	h.cur.signal()
	return nil
}

func closedHandle[T any](c *core[T]) *Handle[T] {
	h := &Handle[T]{c: c, cur: newCursor(0), rel: &release[T]{c: c}}
	h.cur.closed.Store(true)
	h.rel.once.Do(func() {})
	return h
}

func all[T any](ctx context.Context, next func(context.Context) (Item[T], error)) iter.Seq2[Item[T], error] {
	return func(yield func(Item[T], error) bool) {
		for {
			it, err := next(ctx)
			if err != nil {
				// A plain ErrFinished is the normal end of the stream.
				if err != ErrFinished {
					yield(Item[T]{}, err)
				}
				return
			}
			if !yield(it, nil) {
				return
			}
		}
	}
}
