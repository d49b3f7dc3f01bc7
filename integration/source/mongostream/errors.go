package mongostream

import "errors"

var (
	ErrWatchFailed  = errors.New("failed to open change stream")
	ErrStreamFailed = errors.New("change stream failed")
	ErrDecodeFailed = errors.New("failed to decode change event")
)
