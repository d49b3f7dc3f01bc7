// Package broadcast shares a single pull-based source among many independent
// consumers without caching the whole sequence.
//
// The source is advanced lazily: only when some handle asks for an item that
// nobody has produced yet. Produced items go into a fixed-size ring buffer so
// that slower handles can catch up. A handle that falls further behind than
// the buffer holds skips ahead and is told exactly how many items it missed.
//
// # Architecture
//
// The package defines three main types:
//   - Source: the wrapped pull sequence (Next(ctx) (T, error), io.EOF at the end)
//   - Handle: a strong consumer; keeps the source alive
//   - WeakHandle: a consumer that observes the broadcast but does not keep it alive
//
// All handles derived from one New call share a core holding the ring buffer,
// the source and the set of parked consumers. At most one handle at a time,
// the active poller, calls into the source. The others park until the item is
// produced, the source is exhausted, or the active poller gives up its turn.
// Every one of those transitions wakes all parked handles.
//
// # Usage
//
// Basic broadcasting:
//
//	h := broadcast.New(broadcast.FromChannel(events), 64)
//	defer h.Close()
//
//	for range 3 {
//		c := h.Clone()
//		go func() {
//			defer c.Close()
//			for it, err := range c.All(ctx) {
//				if err != nil {
//					log.Println(err)
//					return
//				}
//				if it.Missed > 0 {
//					log.Printf("lagging: %d items skipped", it.Missed)
//				}
//				handle(it.Value)
//			}
//		}()
//	}
//
// # Clones
//
// A clone starts at the production frontier: it receives items produced after
// it was created, never history. Downgrade is the exception: the weak handle
// continues from the position of the handle it was created from.
//
// # Lag Accounting
//
// Each Item carries its sequence number and Missed, the number of items
// evicted between this read and the previous read on the same handle. For
// any handle, Seq of a read equals Seq of the previous read plus 1 plus
// Missed, so no item is lost silently or counted twice.
//
//	h := broadcast.New(broadcast.FromSlice("a", "b", "c", "d"), 3)
//	late := h.Clone()
//	// h reads a, b, c, d; "a" is evicted when "d" is pushed
//	it, _ := late.Next(ctx) // it.Value == "b", it.Missed == 1
//
// # Lifecycle
//
// Closing the last strong Handle tears the broadcast down: an in-flight source
// call is interrupted through its context, the source is closed if it
// implements io.Closer and every weak handle reports ErrFinished from then on.
// Handles that become unreachable without Close are released by the garbage
// collector, but closing them explicitly is the supported way.
//
// # Error Handling
//
// The package defines two errors:
//   - ErrFinished: end of stream, also returned by weak handles once the broadcast is gone
//   - ErrClosed: the handle itself was closed
//
// A source failing with anything other than io.EOF ends the stream; handles
// receive an error matching both ErrFinished and the source error once they
// have read every buffered item. Context errors are returned as is.
//
// # Thread Safety
//
// Distinct handles may be used from different goroutines concurrently. A
// single handle must not be read concurrently; Close may be called from
// anywhere.
package broadcast
