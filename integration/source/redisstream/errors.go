package redisstream

import "errors"

var (
	ErrEmptyStream = errors.New("redis stream name is empty")
	ErrReadFailed  = errors.New("failed to read from redis stream")
)
