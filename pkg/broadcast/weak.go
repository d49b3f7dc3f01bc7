package broadcast

import (
	"context"
	"iter"
	"runtime"
	"weak"
)

// WeakHandle observes a broadcast without keeping its source alive. Once every
// strong Handle is closed, all reads return ErrFinished, permanently.
type WeakHandle[T any] struct {
	ref weak.Pointer[core[T]]
	cur *cursor
}

func newWeakHandle[T any](ref weak.Pointer[core[T]], pos uint64) *WeakHandle[T] {
	w := &WeakHandle[T]{ref: ref, cur: newCursor(pos)}
	runtime.AddCleanup(w, func(cur *cursor) {
		if detachWeak(ref, cur) {
			cur.signal()
		}
	}, w.cur)
	return w
}

// detachWeak unregisters cur from the broadcast once.
func detachWeak[T any](ref weak.Pointer[core[T]], cur *cursor) bool {
	if !cur.closed.CompareAndSwap(false, true) {
		return false
	}
	if c := ref.Value(); c != nil {
		c.releaseWeak(cur)
	}
	return true
}

// Next behaves like Handle.Next while a strong handle exists and returns
// ErrFinished afterwards.
func (w *WeakHandle[T]) Next(ctx context.Context) (Item[T], error) {
	defer runtime.KeepAlive(w)
	if w.cur.closed.Load() {
		return Item[T]{}, ErrClosed
	}
	c := w.ref.Value()
	if c == nil {
		return Item[T]{}, ErrFinished
	}
	return c.next(ctx, w.cur)
}

// All iterates like Handle.All.
func (w *WeakHandle[T]) All(ctx context.Context) iter.Seq2[Item[T], error] {
	return all(ctx, w.Next)
}

// Clone returns another weak handle starting at the production frontier.
func (w *WeakHandle[T]) Clone() *WeakHandle[T] {
	defer runtime.KeepAlive(w)
	c := w.ref.Value()
	if c == nil {
		return &WeakHandle[T]{ref: w.ref, cur: newCursor(0)}
	}
	return newWeakHandle(w.ref, c.attachWeak(nil))
}

// IsTerminated reports whether Next can never return another item.
func (w *WeakHandle[T]) IsTerminated() bool {
	defer runtime.KeepAlive(w)
	c := w.ref.Value()
	if c == nil {
		return true
	}
	return c.terminated(w.cur)
}

// Stats returns a snapshot of the shared broadcast state, or a zero Stats with
// Gone set when the broadcast no longer exists.
func (w *WeakHandle[T]) Stats() Stats {
	defer runtime.KeepAlive(w)
	c := w.ref.Value()
	if c == nil {
		return Stats{Gone: true}
	}
	return c.stats()
}

// Close releases the weak handle. It is idempotent.
func (w *WeakHandle[T]) Close() error {
	if detachWeak(w.ref, w.cur) {
		w.cur.signal()
	}
	return nil
}
