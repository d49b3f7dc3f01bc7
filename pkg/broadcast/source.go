package broadcast

import (
	"context"
	"io"
	"iter"
	"sync"
)

// Source is a single-consumer pull sequence. Next blocks until an item is
// available and returns io.EOF once the sequence is exhausted. Any other error
// ends the stream for every handle.
//
// Next must return promptly with the context's error when ctx is done. The
// broadcast never calls Next concurrently and never calls it again after it
// returned io.EOF or an error. Sources implementing io.Closer are closed when
// the last strong handle is closed.
type Source[T any] interface {
	Next(ctx context.Context) (T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context) (T, error)

// Next calls f(ctx).
func (f SourceFunc[T]) Next(ctx context.Context) (T, error) {
	return f(ctx)
}

// FromSlice returns a finite source yielding values in order.
func FromSlice[T any](values ...T) Source[T] {
	return &sliceSource[T]{values: values}
}

type sliceSource[T any] struct {
	values []T
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if len(s.values) == 0 {
		return zero, io.EOF
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

// FromChannel returns a source receiving from ch. A closed channel ends the
// stream.
func FromChannel[T any](ch <-chan T) Source[T] {
	return chanSource[T](ch)
}

type chanSource[T any] <-chan T

func (s chanSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	select {
	case v, ok := <-s:
		if !ok {
			return zero, io.EOF
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// FromSeq returns a source pulling from seq. The iterator is stopped when the
// broadcast is torn down.
//
// A pull from seq cannot be interrupted: if seq blocks, cancelling the
// context of the waiting Next has no effect until seq yields.
func FromSeq[T any](seq iter.Seq[T]) Source[T] {
	next, stop := iter.Pull(seq)
	return &seqSource[T]{next: next, stop: stop}
}

type seqSource[T any] struct {
	next     func() (T, bool)
	stop     func()
	stopOnce sync.Once
}

func (s *seqSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	v, ok := s.next()
	if !ok {
		return zero, io.EOF
	}
	return v, nil
}

func (s *seqSource[T]) Close() error {
	s.stopOnce.Do(s.stop)
	return nil
}
