package redisstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/streamcast/core/logger"
)

// Config describes the stream to follow.
type Config struct {
	Stream    string        `env:"REDIS_STREAM,required"`
	StartID   string        `env:"REDIS_STREAM_START_ID" envDefault:"$"`
	BatchSize int64         `env:"REDIS_STREAM_BATCH_SIZE" envDefault:"100"`
	Block     time.Duration `env:"REDIS_STREAM_BLOCK" envDefault:"5s"`
}

// Reader is the subset of redis.Cmdable used by Source.
type Reader interface {
	XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd
	XInfoStream(ctx context.Context, key string) *redis.XInfoStreamCmd
}

// Message is a single stream entry.
type Message struct {
	ID     string
	Values map[string]any
}

// Source reads entries from a Redis stream with blocking XREAD calls.
// It never ends on its own; use it with a context or close the broadcast.
type Source struct {
	client  Reader
	stream  string
	lastID  string
	count   int64
	block   time.Duration
	pending []redis.XMessage
	logger  *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger configures structured logging for the source.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Source following cfg.Stream. An empty StartID means "$":
// entries added after the first Next. The first Next pins "$" to the stream's
// last generated ID, so a read cancelled before any entry arrives does not
// skip entries appended before the following call.
func New(client Reader, cfg Config, opts ...Option) (*Source, error) {
	if cfg.Stream == "" {
		return nil, ErrEmptyStream
	}
	s := &Source{
		client: client,
		stream: cfg.Stream,
		lastID: cfg.StartID,
		count:  cfg.BatchSize,
		block:  cfg.Block,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if s.lastID == "" {
		s.lastID = "$"
	}
	if s.count <= 0 {
		s.count = 100
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next returns the next stream entry, reading a new batch when the previous
// one is used up.
func (s *Source) Next(ctx context.Context) (Message, error) {
	if s.lastID == "$" {
		if err := s.resolveStart(ctx); err != nil {
			return Message{}, err
		}
	}
	for len(s.pending) == 0 {
		res, err := s.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{s.stream, s.lastID},
			Count:   s.count,
			Block:   s.block,
		}).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Message{}, ctxErr
			}
			if errors.Is(err, redis.Nil) {
				// Block timeout without new entries.
				continue
			}
			return Message{}, fmt.Errorf("%w: %w", ErrReadFailed, err)
		}
		for _, st := range res {
			s.pending = append(s.pending, st.Messages...)
		}
		s.logger.DebugContext(ctx, "redis stream batch read",
			logger.Stream(s.stream),
			logger.Count("entries", len(s.pending)))
	}

	m := s.pending[0]
	s.pending = s.pending[1:]
	s.lastID = m.ID
	return Message{ID: m.ID, Values: m.Values}, nil
}

// resolveStart replaces "$" with the last ID generated on the stream. A stream
// that does not exist yet starts from the beginning.
func (s *Source) resolveStart(ctx context.Context) error {
	info, err := s.client.XInfoStream(ctx, s.stream).Result()
	switch {
	case err == nil:
		s.lastID = info.LastGeneratedID
	case ctx.Err() != nil:
		return ctx.Err()
	case strings.Contains(err.Error(), "no such key"):
		s.lastID = "0-0"
	default:
		return fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	s.logger.DebugContext(ctx, "redis stream start resolved",
		logger.Stream(s.stream),
		logger.Key("start_id", s.lastID))
	return nil
}
