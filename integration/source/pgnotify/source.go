package pgnotify

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Config configures Connect.
type Config struct {
	ConnectionString string        `env:"DATABASE_URL,required"`
	Channels         []string      `env:"PG_NOTIFY_CHANNELS,required" envSeparator:","`
	CloseTimeout     time.Duration `env:"PG_NOTIFY_CLOSE_TIMEOUT" envDefault:"5s"`
}

// Listener waits for notifications. *pgx.Conn implements it.
type Listener interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
}

// Conn is a connection Source can subscribe and own. *pgx.Conn implements it.
type Conn interface {
	Listener
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close(ctx context.Context) error
}

// Notification is a single NOTIFY payload.
type Notification struct {
	Channel string
	Payload string
	PID     uint32
}

// Source yields notifications received on a dedicated connection.
type Source struct {
	listener     Listener
	conn         Conn
	closeTimeout time.Duration
}

// New wraps a listener that is already subscribed. The source does not own it.
func New(l Listener) *Source {
	return &Source{listener: l}
}

// Listen subscribes conn to channels and returns a Source that owns conn:
// it is closed together with the source.
func Listen(ctx context.Context, conn Conn, channels ...string) (*Source, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	for _, ch := range channels {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ch}.Sanitize()); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrListenFailed, ch, err)
		}
	}
	return &Source{listener: conn, conn: conn, closeTimeout: 5 * time.Second}, nil
}

// Connect opens a dedicated connection and listens on cfg.Channels.
func Connect(ctx context.Context, cfg Config) (*Source, error) {
	conn, err := pgx.Connect(ctx, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}
	src, err := Listen(ctx, conn, cfg.Channels...)
	if err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}
	if cfg.CloseTimeout > 0 {
		src.closeTimeout = cfg.CloseTimeout
	}
	return src, nil
}

// Next blocks until a notification arrives.
func (s *Source) Next(ctx context.Context) (Notification, error) {
	n, err := s.listener.WaitForNotification(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Notification{}, ctxErr
		}
		return Notification{}, fmt.Errorf("%w: %w", ErrWaitFailed, err)
	}
	return Notification{Channel: n.Channel, Payload: n.Payload, PID: n.PID}, nil
}

// Close closes the connection if the source owns it.
func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.closeTimeout)
	defer cancel()
	return s.conn.Close(ctx)
}
