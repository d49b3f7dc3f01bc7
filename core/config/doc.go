// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file on first use and uses the caarlos0/env
// library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import (
//		"github.com/dmitrymomot/streamcast/core/config"
//		"github.com/dmitrymomot/streamcast/integration/source/redisstream"
//		"github.com/dmitrymomot/streamcast/pkg/broadcast"
//	)
//
//	func main() {
//		var bc broadcast.Config
//		config.MustLoad(&bc) // BROADCAST_CAPACITY, BROADCAST_NAME
//
//		var rc redisstream.Config
//		if err := config.Load(&rc); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 broadcast.Config
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 broadcast.Config
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently. Parsing failures wrap
// ErrParsingConfig.
package config
