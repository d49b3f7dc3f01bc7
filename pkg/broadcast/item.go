package broadcast

// Item is a single read result.
type Item[T any] struct {
	// Seq is the sequence number the source item was assigned when produced.
	Seq uint64
	// Missed is the number of items evicted from the buffer between this read
	// and the previous one on the same handle.
	Missed uint64
	Value  T
}
