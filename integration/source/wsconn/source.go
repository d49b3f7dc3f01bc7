package wsconn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is a single data frame.
type Message struct {
	Type int // websocket.TextMessage or websocket.BinaryMessage
	Data []byte
}

type result struct {
	msg Message
	err error
}

// Option configures a Source.
type Option func(*Source)

// WithReadLimit caps the size of a single message.
func WithReadLimit(n int64) Option {
	return func(s *Source) {
		if n > 0 {
			s.conn.SetReadLimit(n)
		}
	}
}

// WithCloseTimeout bounds the close handshake performed by Close.
func WithCloseTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.closeTimeout = d
		}
	}
}

// Source yields messages received on a websocket connection it owns.
// A single goroutine reads from the connection; Next waits for it with ctx.
type Source struct {
	conn         *websocket.Conn
	closeTimeout time.Duration

	startOnce sync.Once
	results   chan result
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New takes ownership of conn.
func New(conn *websocket.Conn, opts ...Option) *Source {
	s := &Source{
		conn:         conn,
		closeTimeout: time.Second,
		results:      make(chan result),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to url and wraps the connection.
func Dial(ctx context.Context, url string, header http.Header, opts ...Option) (*Source, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: %s: status %d: %w", ErrDialFailed, url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDialFailed, url, err)
	}
	return New(conn, opts...), nil
}

func (s *Source) pump() {
	for {
		typ, data, err := s.conn.ReadMessage()
		r := result{msg: Message{Type: typ, Data: data}}
		if err != nil {
			r = result{err: s.readError(err)}
		}
		select {
		case s.results <- r:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *Source) readError(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return io.EOF
	}
	select {
	case <-s.done:
		return io.EOF
	default:
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: connection dropped: %w", ErrReadFailed, err)
	}
	return fmt.Errorf("%w: %w", ErrReadFailed, err)
}

// Next returns the next data message. A normal or going-away close from the
// peer ends the stream with io.EOF.
func (s *Source) Next(ctx context.Context) (Message, error) {
	s.startOnce.Do(func() { go s.pump() })
	select {
	case r := <-s.results:
		return r.msg, r.err
	case <-s.done:
		return Message{}, io.EOF
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Close sends a normal close frame and closes the connection.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.closeTimeout))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
