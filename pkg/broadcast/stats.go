package broadcast

// Stats is a point-in-time snapshot of a broadcast shared by all its handles.
type Stats struct {
	Name          string
	Capacity      int
	Buffered      int
	HeadSeq       uint64 // oldest buffered sequence number
	NextSeq       uint64 // sequence number of the next item to be produced
	StrongHandles int
	WeakHandles   int
	Parked        int    // consumers waiting for the next item
	SourcePolls   uint64 // completed calls into the source
	MissedItems   uint64 // items skipped by lagging consumers, summed over all reads
	Active        bool   // a consumer is currently inside the source
	Finished      bool
	Gone          bool // every strong handle was closed
}
