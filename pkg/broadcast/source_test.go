package broadcast_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamcast/pkg/broadcast"
)

func TestFromChannel(t *testing.T) {
	t.Parallel()

	t.Run("receives until the channel is closed", func(t *testing.T) {
		t.Parallel()

		ch := make(chan string, 2)
		ch <- "a"
		ch <- "b"
		close(ch)

		h := broadcast.New(broadcast.FromChannel(ch), 2)
		defer h.Close()
		assert.Equal(t, []read[string]{{0, "a"}, {0, "b"}}, drain[string](t, context.Background(), h))
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		t.Parallel()

		src := broadcast.FromChannel(make(chan int))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := src.Next(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestFromSeq(t *testing.T) {
	t.Parallel()

	t.Run("ends with the sequence", func(t *testing.T) {
		t.Parallel()

		src := broadcast.FromSeq(func(yield func(int) bool) {
			for i := range 3 {
				if !yield(i) {
					return
				}
			}
		})

		ctx := context.Background()
		for i := range 3 {
			v, err := src.Next(ctx)
			require.NoError(t, err)
			assert.Equal(t, i, v)
		}
		_, err := src.Next(ctx)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("teardown stops the iterator", func(t *testing.T) {
		t.Parallel()

		stopped := make(chan struct{})
		h := broadcast.New(broadcast.FromSeq(func(yield func(int) bool) {
			defer close(stopped)
			for i := 0; ; i++ {
				if !yield(i) {
					return
				}
			}
		}), 2)

		it, err := h.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, it.Value)

		require.NoError(t, h.Close())
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			t.Fatal("iterator was not stopped")
		}
	})
}

func TestSourceFunc(t *testing.T) {
	t.Parallel()

	n := 0
	src := broadcast.SourceFunc[int](func(ctx context.Context) (int, error) {
		if n == 2 {
			return 0, io.EOF
		}
		n++
		return n * 10, nil
	})

	h := broadcast.New[int](src, 4)
	defer h.Close()
	assert.Equal(t, []read[int]{{0, 10}, {0, 20}}, drain[int](t, context.Background(), h))
}
