package prommetrics

import "errors"

// ErrDuplicateStream is returned by Register when a broadcast with the same
// Stats name is already registered.
var ErrDuplicateStream = errors.New("stream already registered")
