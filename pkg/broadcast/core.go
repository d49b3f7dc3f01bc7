package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/streamcast/core/logger"
)

// core is shared by every handle derived from one New call.
type core[T any] struct {
	mu     sync.Mutex
	ring   *ring[T]
	src    Source[T]
	drv    driver
	parked map[uint64]chan struct{}

	finished  bool
	finalSeq  uint64
	finishErr error

	strong int
	weak   int
	gone   bool

	// life is cancelled when the last strong handle goes away, which
	// interrupts a source call still in flight.
	life       context.Context
	cancelLife context.CancelFunc
	closeOnce  sync.Once

	polls  uint64
	missed uint64

	name   string
	logger *slog.Logger
}

func newCore[T any](src Source[T], capacity int, o options) *core[T] {
	life, cancel := context.WithCancel(context.Background())
	return &core[T]{
		ring:       newRing[T](capacity),
		src:        src,
		parked:     make(map[uint64]chan struct{}),
		strong:     1,
		life:       life,
		cancelLife: cancel,
		name:       o.name,
		logger:     o.logger,
	}
}

// next implements the read path shared by strong and weak handles.
func (c *core[T]) next(ctx context.Context, cur *cursor) (Item[T], error) {
	for {
		if cur.closed.Load() {
			return Item[T]{}, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return Item[T]{}, err
		}

		c.mu.Lock()
		if c.gone {
			c.mu.Unlock()
			return Item[T]{}, ErrFinished
		}
		if it, ok := c.readLocked(cur); ok {
			c.mu.Unlock()
			if it.Missed > 0 {
				c.logger.DebugContext(ctx, "consumer lagged behind buffer",
					logger.Stream(c.name),
					logger.Consumer(cur.id),
					logger.Sequence(it.Seq),
					logger.Missed(it.Missed))
			}
			return it, nil
		}
		if c.finished {
			err := c.finishErr
			c.mu.Unlock()
			return Item[T]{}, err
		}
		if c.drv.acquire(cur.id) {
			c.mu.Unlock()
			return c.poll(ctx, cur)
		}
		c.parked[cur.id] = cur.wake
		c.mu.Unlock()

		select {
		case <-cur.wake:
		case <-ctx.Done():
			c.unpark(cur)
			return Item[T]{}, ctx.Err()
		}
	}
}

// readLocked returns the buffered item at the cursor, skipping forward to the
// oldest retained item when the cursor's position was evicted.
func (c *core[T]) readLocked(cur *cursor) (Item[T], bool) {
	if cur.next >= c.ring.nextSeq() {
		return Item[T]{}, false
	}
	var missed uint64
	if head := c.ring.headSeq(); cur.next < head {
		missed = head - cur.next
		cur.next = head
		c.missed += missed
	}
	v, _ := c.ring.get(cur.next)
	it := Item[T]{Seq: cur.next, Missed: missed, Value: v}
	cur.next++
	return it, true
}

// poll advances the source on behalf of cur, which must be the active poller.
// The source is called without holding the mutex.
func (c *core[T]) poll(ctx context.Context, cur *cursor) (Item[T], error) {
	pollCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.life, cancel)
	v, err := c.src.Next(pollCtx)
	stop()
	cancel()

	c.mu.Lock()
	c.polls++

	if c.gone {
		c.drv.exhaust()
		c.wakeAllLocked()
		c.mu.Unlock()
		c.closeSource()
		return Item[T]{}, ErrFinished
	}

	switch {
	case err == nil:
		seq := c.ring.push(v)
		cur.next = seq + 1
		c.drv.release()
		woken := c.wakeAllLocked()
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "item produced",
			logger.Stream(c.name),
			logger.Sequence(seq),
			logger.Count("woken", woken))
		return Item[T]{Seq: seq, Value: v}, nil

	case ctx.Err() != nil && isContextErr(err):
		// The active poller stopped waiting before the source was ready.
		// Someone else has to take over, so every parked consumer is woken.
		c.drv.release()
		woken := c.wakeAllLocked()
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "active poller left before source was ready",
			logger.Stream(c.name),
			logger.Consumer(cur.id),
			logger.Count("woken", woken))
		return Item[T]{}, ctx.Err()

	default:
		c.finishLocked(err)
		final, ferr := c.finalSeq, c.finishErr
		c.mu.Unlock()
		if errors.Is(err, io.EOF) {
			c.logger.InfoContext(ctx, "broadcast source exhausted",
				logger.Stream(c.name),
				logger.Sequence(final))
		} else {
			c.logger.ErrorContext(ctx, "broadcast source failed",
				logger.Stream(c.name),
				logger.Sequence(final),
				logger.Error(err))
		}
		return Item[T]{}, ferr
	}
}

func (c *core[T]) finishLocked(err error) {
	c.drv.exhaust()
	c.finished = true
	c.finalSeq = c.ring.nextSeq()
	if errors.Is(err, io.EOF) {
		c.finishErr = ErrFinished
	} else {
		c.finishErr = fmt.Errorf("%w: %w", ErrFinished, err)
	}
	c.wakeAllLocked()
}

// wakeAllLocked wakes and forgets every parked consumer.
func (c *core[T]) wakeAllLocked() int {
	n := len(c.parked)
	for _, wake := range c.parked {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	clear(c.parked)
	return n
}

func (c *core[T]) unpark(cur *cursor) {
	c.mu.Lock()
	delete(c.parked, cur.id)
	c.mu.Unlock()
	cur.drain()
}

// attachStrong registers a new strong handle and returns its starting position.
func (c *core[T]) attachStrong() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gone {
		return 0, false
	}
	c.strong++
	return c.ring.nextSeq(), true
}

// attachWeak registers a new weak handle. A nil from starts it at the
// production frontier, otherwise at from's position.
func (c *core[T]) attachWeak(from *cursor) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weak++
	if from != nil {
		return from.next
	}
	return c.ring.nextSeq()
}

func (c *core[T]) releaseWeak(cur *cursor) {
	c.mu.Lock()
	delete(c.parked, cur.id)
	c.weak--
	c.mu.Unlock()
}

// releaseStrong drops one strong reference. The last one tears the source down;
// if a consumer is inside the source at that moment, it finishes the teardown
// when the call returns.
func (c *core[T]) releaseStrong(cur *cursor) {
	c.mu.Lock()
	delete(c.parked, cur.id)
	c.strong--
	if c.strong > 0 {
		c.mu.Unlock()
		return
	}

	c.gone = true
	c.cancelLife()
	active := c.drv.active()
	if !active {
		c.drv.exhaust()
	}
	c.ring.reset()
	woken := c.wakeAllLocked()
	weakCount := c.weak
	c.mu.Unlock()

	if !active {
		c.closeSource()
	}
	c.logger.Info("last strong handle released, broadcast torn down",
		logger.Stream(c.name),
		logger.Count("weak_handles", weakCount),
		logger.Count("woken", woken))
}

func (c *core[T]) closeSource() {
	c.closeOnce.Do(func() {
		closer, ok := c.src.(io.Closer)
		if !ok {
			return
		}
		if err := closer.Close(); err != nil {
			c.logger.Warn("failed to close broadcast source",
				logger.Stream(c.name),
				logger.Error(err))
		}
	})
}

func (c *core[T]) terminated(cur *cursor) bool {
	if cur.closed.Load() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gone || (c.finished && cur.next >= c.finalSeq)
}

func (c *core[T]) stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Name:          c.name,
		Capacity:      c.ring.cap(),
		Buffered:      c.ring.len(),
		HeadSeq:       c.ring.headSeq(),
		NextSeq:       c.ring.nextSeq(),
		StrongHandles: c.strong,
		WeakHandles:   c.weak,
		Parked:        len(c.parked),
		SourcePolls:   c.polls,
		MissedItems:   c.missed,
		Active:        c.drv.active(),
		Finished:      c.finished,
		Gone:          c.gone,
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
