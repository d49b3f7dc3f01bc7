package pgnotify

import "errors"

var (
	ErrNoChannels    = errors.New("no notification channels given")
	ErrListenFailed  = errors.New("failed to listen on notification channel")
	ErrWaitFailed    = errors.New("failed to wait for notification")
	ErrConnectFailed = errors.New("failed to connect to postgres")
)
