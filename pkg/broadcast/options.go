package broadcast

import (
	"io"
	"log/slog"
)

// DefaultCapacity is the buffer size used by NewFromConfig when none is configured.
const DefaultCapacity = 16

// Config holds environment-driven broadcast settings.
// Load it with core/config:
//
//	var cfg broadcast.Config
//	config.MustLoad(&cfg)
//	h := broadcast.NewFromConfig(src, cfg)
type Config struct {
	Capacity int    `env:"BROADCAST_CAPACITY" envDefault:"16"`
	Name     string `env:"BROADCAST_NAME"`
}

// Option configures a broadcast at construction time.
type Option func(*options)

type options struct {
	logger *slog.Logger
	name   string
}

// WithLogger configures structured logging for the broadcast.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName sets the name reported in logs and Stats.
// Defaults to a random UUID.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
