package broadcast_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamcast/pkg/broadcast"
)

type read[T any] struct {
	Missed uint64
	Value  T
}

type nexter[T any] interface {
	Next(ctx context.Context) (broadcast.Item[T], error)
}

// drain reads until the stream finishes and returns every (missed, value) pair.
func drain[T any](t *testing.T, ctx context.Context, h nexter[T]) []read[T] {
	t.Helper()

	var out []read[T]
	for {
		it, err := h.Next(ctx)
		if errors.Is(err, broadcast.ErrFinished) {
			return out
		}
		require.NoError(t, err)
		out = append(out, read[T]{Missed: it.Missed, Value: it.Value})
	}
}

// chanSource hands out whatever the test sends on items and counts polls and
// closes. It honours context cancellation while waiting.
type chanSource[T any] struct {
	items  chan T
	polls  atomic.Int64
	closes atomic.Int64
}

func newChanSource[T any]() *chanSource[T] {
	return &chanSource[T]{items: make(chan T)}
}

func (s *chanSource[T]) Next(ctx context.Context) (T, error) {
	s.polls.Add(1)
	var zero T
	select {
	case v, ok := <-s.items:
		if !ok {
			return zero, io.EOF
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *chanSource[T]) Close() error {
	s.closes.Add(1)
	return nil
}

// countingSource yields values and then io.EOF, failing the test if it is
// polled again after reporting the end.
type countingSource[T any] struct {
	t      *testing.T
	values []T
	polls  atomic.Int64
	ended  atomic.Bool
}

func newCountingSource[T any](t *testing.T, values ...T) *countingSource[T] {
	return &countingSource[T]{t: t, values: values}
}

func (s *countingSource[T]) Next(ctx context.Context) (T, error) {
	s.polls.Add(1)
	var zero T
	if s.ended.Load() {
		s.t.Errorf("source polled after reporting io.EOF")
		return zero, io.EOF
	}
	if len(s.values) == 0 {
		s.ended.Store(true)
		return zero, io.EOF
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

func seqInts(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
