package broadcast

type driverState uint8

const (
	driverIdle driverState = iota
	driverActive
	driverExhausted
)

// driver arbitrates access to the wrapped source: at most one consumer, the
// owner, may be inside Source.Next at any time. It is guarded by the core mutex.
type driver struct {
	state driverState
	owner uint64
}

// acquire makes consumer id the active poller. It fails when another consumer
// is active or the source is exhausted.
func (d *driver) acquire(id uint64) bool {
	if d.state != driverIdle {
		return false
	}
	d.state = driverActive
	d.owner = id
	return true
}

func (d *driver) release() {
	if d.state == driverActive {
		d.state = driverIdle
		d.owner = 0
	}
}

func (d *driver) exhaust() {
	d.state = driverExhausted
	d.owner = 0
}

func (d *driver) active() bool { return d.state == driverActive }
