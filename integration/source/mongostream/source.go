package mongostream

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChangeStream is the cursor Source reads from. *mongo.ChangeStream implements it.
type ChangeStream interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}

// ChangeEvent is the standard change stream document with a typed full document.
type ChangeEvent[D any] struct {
	ID            bson.Raw       `bson:"_id"`
	OperationType string         `bson:"operationType"`
	ClusterTime   bson.Timestamp `bson:"clusterTime"`
	Namespace     Namespace      `bson:"ns"`
	DocumentKey   bson.Raw       `bson:"documentKey"`
	FullDocument  D              `bson:"fullDocument"`
}

// Namespace identifies the collection an event belongs to.
type Namespace struct {
	Database   string `bson:"db"`
	Collection string `bson:"coll"`
}

// Source decodes each change stream document into T.
type Source[T any] struct {
	stream       ChangeStream
	closeTimeout time.Duration
}

// New wraps an open change stream. The source owns it and closes it on Close.
func New[T any](stream ChangeStream) *Source[T] {
	return &Source[T]{stream: stream, closeTimeout: 5 * time.Second}
}

// Watch opens a change stream on coll.
func Watch[T any](ctx context.Context, coll *mongo.Collection, pipeline any, opts ...options.Lister[options.ChangeStreamOptions]) (*Source[T], error) {
	if pipeline == nil {
		pipeline = mongo.Pipeline{}
	}
	cs, err := coll.Watch(ctx, pipeline, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}
	return New[T](cs), nil
}

// Next blocks until the next change event. A stream that ends without an
// error, such as one invalidated by a dropped collection, reports io.EOF.
func (s *Source[T]) Next(ctx context.Context) (T, error) {
	var v T
	if !s.stream.Next(ctx) {
		if err := ctx.Err(); err != nil {
			return v, err
		}
		if err := s.stream.Err(); err != nil {
			return v, fmt.Errorf("%w: %w", ErrStreamFailed, err)
		}
		return v, io.EOF
	}
	if err := s.stream.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return v, nil
}

// Close closes the change stream.
func (s *Source[T]) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.closeTimeout)
	defer cancel()
	return s.stream.Close(ctx)
}
