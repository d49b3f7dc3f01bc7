package wsconn

import "errors"

var (
	ErrDialFailed = errors.New("failed to dial websocket")
	ErrReadFailed = errors.New("failed to read websocket message")
)
