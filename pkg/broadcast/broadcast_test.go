package broadcast_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamcast/pkg/broadcast"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("panics on zero capacity", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			broadcast.New(broadcast.FromSlice(1), 0)
		})
	})

	t.Run("panics on nil source", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			broadcast.New[int](nil, 1)
		})
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1), 4, broadcast.WithName("orders"), broadcast.WithLogger(nil))
		defer h.Close()

		st := h.Stats()
		assert.Equal(t, "orders", st.Name)
		assert.Equal(t, 4, st.Capacity)
		assert.Equal(t, 1, st.StrongHandles)
	})

	t.Run("generates a name by default", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1), 1)
		defer h.Close()
		assert.NotEmpty(t, h.Stats().Name)
	})

	t.Run("builds from config", func(t *testing.T) {
		t.Parallel()

		h := broadcast.NewFromConfig(broadcast.FromSlice(1), broadcast.Config{Name: "cfg"})
		defer h.Close()

		st := h.Stats()
		assert.Equal(t, broadcast.DefaultCapacity, st.Capacity)
		assert.Equal(t, "cfg", st.Name)
	})
}

func TestBroadcast_LateReaderIsToldWhatItMissed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	x := broadcast.New(broadcast.FromSlice("a", "b", "c", "d"), 3)
	defer x.Close()
	y := x.Clone()
	defer y.Close()

	assert.Equal(t, []read[string]{{0, "a"}, {0, "b"}, {0, "c"}, {0, "d"}}, drain[string](t, ctx, x))
	assert.Equal(t, []read[string]{{1, "b"}, {0, "c"}, {0, "d"}}, drain[string](t, ctx, y))

	_, err := y.Next(ctx)
	assert.ErrorIs(t, err, broadcast.ErrFinished)
}

func TestBroadcast_CapacityOneInterleaved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a := broadcast.New(broadcast.FromSlice(seqInts(10)...), 1)
	defer a.Close()
	b := a.Clone()
	defer b.Close()

	next := func(h *broadcast.Handle[int]) broadcast.Item[int] {
		it, err := h.Next(ctx)
		require.NoError(t, err)
		return it
	}

	for i := range 3 {
		assert.Equal(t, i, next(a).Value)
	}

	it := next(b)
	assert.Equal(t, 2, it.Value)
	assert.Equal(t, uint64(2), it.Missed)

	it = next(a)
	assert.Equal(t, 3, it.Value)
	assert.Zero(t, it.Missed)

	it = next(b)
	assert.Equal(t, 3, it.Value)
	assert.Zero(t, it.Missed, "b is caught up with a")

	next(a)
	next(a)
	it = next(b)
	assert.Equal(t, 5, it.Value)
	assert.Equal(t, uint64(1), it.Missed)
	assert.Equal(t, uint64(5), it.Seq)
}

func TestBroadcast_OrderPreserved(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{1, 2, 5, 16} {
		t.Run(fmt.Sprintf("single reader capacity %d", capacity), func(t *testing.T) {
			t.Parallel()

			h := broadcast.New(broadcast.FromSlice(seqInts(50)...), capacity)
			defer h.Close()

			got := drain[int](t, context.Background(), h)
			require.Len(t, got, 50)
			for i, r := range got {
				assert.Equal(t, i, r.Value)
				assert.Zero(t, r.Missed)
			}
		})

		t.Run(fmt.Sprintf("lockstep readers capacity %d", capacity), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			h := broadcast.New(broadcast.FromSlice(seqInts(50)...), capacity)
			defer h.Close()
			other := h.Clone()
			defer other.Close()

			for i := range 50 {
				for _, r := range []*broadcast.Handle[int]{h, other} {
					it, err := r.Next(ctx)
					require.NoError(t, err)
					assert.Equal(t, i, it.Value)
					assert.Zero(t, it.Missed)
				}
			}
		})
	}
}

func TestBroadcast_CloneStartsAtFrontier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("clone skips history", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1, 2, 3, 4), 8)
		defer h.Close()

		for range 2 {
			_, err := h.Next(ctx)
			require.NoError(t, err)
		}

		c := h.Clone()
		defer c.Close()
		assert.Equal(t, []read[int]{{0, 3}, {0, 4}}, drain[int](t, ctx, c))
		assert.Equal(t, []read[int]{{0, 3}, {0, 4}}, drain[int](t, ctx, h))
	})

	t.Run("clone of a lagging handle starts at the frontier", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1, 2, 3, 4), 8)
		defer h.Close()
		lagging := h.Clone()
		defer lagging.Close()

		for range 3 {
			_, err := h.Next(ctx)
			require.NoError(t, err)
		}

		c := lagging.Clone()
		defer c.Close()
		assert.Equal(t, []read[int]{{0, 4}}, drain[int](t, ctx, c))
	})

	t.Run("clone never returns earlier items", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1, 2), 8)
		defer h.Close()
		assert.Len(t, drain[int](t, ctx, h), 2)

		c := h.Clone()
		defer c.Close()
		_, err := c.Next(ctx)
		assert.ErrorIs(t, err, broadcast.ErrFinished)
	})
}

func TestBroadcast_SourceNeverPolledAfterEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src := newCountingSource[int](t)
	h := broadcast.New[int](src, 3)
	defer h.Close()
	c := h.Clone()
	defer c.Close()

	for range 3 {
		_, err := h.Next(ctx)
		assert.ErrorIs(t, err, broadcast.ErrFinished)
		_, err = c.Next(ctx)
		assert.ErrorIs(t, err, broadcast.ErrFinished)
	}

	assert.Equal(t, int64(1), src.polls.Load())
	assert.True(t, h.IsTerminated())
	assert.True(t, c.IsTerminated())
	assert.True(t, h.Stats().Finished)
}

func TestBroadcast_SourceFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	errBoom := errors.New("boom")
	calls := 0
	src := broadcast.SourceFunc[int](func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 10, nil
		}
		return 0, errBoom
	})

	h := broadcast.New[int](src, 2)
	defer h.Close()
	c := h.Clone()
	defer c.Close()

	it, err := h.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, it.Value)

	_, err = h.Next(ctx)
	assert.ErrorIs(t, err, broadcast.ErrFinished)
	assert.ErrorIs(t, err, errBoom)

	it, err = c.Next(ctx)
	require.NoError(t, err, "buffered items are still delivered after a failure")
	assert.Equal(t, 10, it.Value)

	_, err = c.Next(ctx)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}

func TestBroadcast_ContextAlreadyDone(t *testing.T) {
	t.Parallel()

	src := newCountingSource(t, 1, 2)
	h := broadcast.New[int](src, 2)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.polls.Load())
}

func TestHandle_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reads fail after close", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1), 1)
		require.NoError(t, h.Close())
		require.NoError(t, h.Close(), "close is idempotent")

		_, err := h.Next(ctx)
		assert.ErrorIs(t, err, broadcast.ErrClosed)
		assert.True(t, h.IsTerminated())
	})

	t.Run("clone of closed handle is closed", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1), 1)
		keep := h.Clone()
		defer keep.Close()
		require.NoError(t, h.Close())

		c := h.Clone()
		_, err := c.Next(ctx)
		assert.ErrorIs(t, err, broadcast.ErrClosed)
		assert.Equal(t, 1, keep.Stats().StrongHandles)
		require.NoError(t, c.Close())
		assert.Equal(t, 1, keep.Stats().StrongHandles)
	})

	t.Run("closing one clone keeps the source alive", func(t *testing.T) {
		t.Parallel()

		src := newChanSource[int]()
		h := broadcast.New[int](src, 2)
		c := h.Clone()
		assert.Equal(t, 2, h.Stats().StrongHandles)

		require.NoError(t, c.Close())
		st := h.Stats()
		assert.Equal(t, 1, st.StrongHandles)
		assert.False(t, st.Gone)
		assert.Zero(t, src.closes.Load())

		require.NoError(t, h.Close())
		assert.Equal(t, int64(1), src.closes.Load())
	})

	t.Run("last close closes the source once", func(t *testing.T) {
		t.Parallel()

		src := newChanSource[int]()
		h := broadcast.New[int](src, 2)
		c := h.Clone()

		require.NoError(t, h.Close())
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
		assert.Equal(t, int64(1), src.closes.Load())
	})
}

func TestHandle_All(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("iterates until the end", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice("a", "b", "c"), 4)
		defer h.Close()

		var got []string
		for it, err := range h.All(ctx) {
			require.NoError(t, err)
			got = append(got, it.Value)
		}
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("stops when the loop breaks", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New(broadcast.FromSlice(1, 2, 3), 4)
		defer h.Close()

		for it, err := range h.All(ctx) {
			require.NoError(t, err)
			assert.Equal(t, 1, it.Value)
			break
		}

		it, err := h.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, it.Value)
	})

	t.Run("yields source errors", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		h := broadcast.New[int](broadcast.SourceFunc[int](func(context.Context) (int, error) {
			return 0, errBoom
		}), 1)
		defer h.Close()

		var errs []error
		for _, err := range h.All(ctx) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], errBoom)
	})

	t.Run("yields context errors", func(t *testing.T) {
		t.Parallel()

		h := broadcast.New[int](newChanSource[int](), 1)
		defer h.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		var errs []error
		for _, err := range h.All(ctx) {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], context.DeadlineExceeded)
	})
}

func TestBroadcast_StatsTrackMissedItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := broadcast.New(broadcast.FromSlice(seqInts(6)...), 2)
	defer h.Close()
	late := h.Clone()
	defer late.Close()

	assert.Len(t, drain[int](t, ctx, h), 6)

	st := h.Stats()
	assert.Equal(t, uint64(4), st.HeadSeq)
	assert.Equal(t, uint64(6), st.NextSeq)
	assert.Equal(t, 2, st.Buffered)
	assert.Equal(t, uint64(7), st.SourcePolls)

	it, err := late.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), it.Missed)
	assert.Equal(t, uint64(4), late.Stats().MissedItems)
}

func TestSourceFromSliceEndsWithEOF(t *testing.T) {
	t.Parallel()

	src := broadcast.FromSlice(1)
	v, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	for range 2 {
		_, err = src.Next(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	}
}
