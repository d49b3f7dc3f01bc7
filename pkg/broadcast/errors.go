package broadcast

import "errors"

var (
	// ErrFinished is returned once a handle has read every item the source will
	// ever produce. It is also returned by weak handles after the last strong
	// handle was closed. If the source failed, the returned error wraps both
	// ErrFinished and the source error.
	ErrFinished = errors.New("broadcast: stream finished")

	// ErrClosed is returned when reading from a handle after Close.
	ErrClosed = errors.New("broadcast: handle closed")
)
