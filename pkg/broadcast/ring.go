package broadcast

// ring keeps the most recent items of the stream. Sequence numbers are
// assigned on push and the retained window is always [head, next).
type ring[T any] struct {
	buf  []T
	head uint64
	next uint64
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

// push stores v under the next sequence number, evicting the oldest record
// when the ring is full.
func (r *ring[T]) push(v T) uint64 {
	seq := r.next
	r.buf[seq%uint64(len(r.buf))] = v
	r.next++
	if r.next-r.head > uint64(len(r.buf)) {
		r.head++
	}
	return seq
}

func (r *ring[T]) get(seq uint64) (T, bool) {
	if seq < r.head || seq >= r.next {
		var zero T
		return zero, false
	}
	return r.buf[seq%uint64(len(r.buf))], true
}

func (r *ring[T]) headSeq() uint64 { return r.head }
func (r *ring[T]) nextSeq() uint64 { return r.next }
func (r *ring[T]) len() int        { return int(r.next - r.head) }
func (r *ring[T]) cap() int        { return len(r.buf) }

// reset releases buffered values without touching sequence numbers.
func (r *ring[T]) reset() {
	clear(r.buf)
	r.head = r.next
}
