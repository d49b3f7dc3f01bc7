// Package streamcast shares a single pull-based stream among many independent
// consumers. The source is advanced lazily, only when some consumer asks for an
// item nobody has produced yet, and a bounded ring buffer lets slower consumers
// catch up. A consumer that falls too far behind skips ahead and is told how
// many items it missed.
//
// This file is an index of the packages in the module. Each entry includes the
// full import path and a short description of its purpose.
//
// # Package Organization
//
//   - Engine: the broadcast itself
//   - Core: configuration, logging and health helpers shared by all packages
//   - Integrations: sources backed by external systems and a metrics exporter
//
// # Getting Documentation
//
//	go doc github.com/dmitrymomot/streamcast/pkg/broadcast
//	go doc -all github.com/dmitrymomot/streamcast/integration/source/redisstream
//
// # Engine
//
//	github.com/dmitrymomot/streamcast/pkg/broadcast - Lazy broadcast with ring buffer, strong and weak handles
//
// # Core Packages
//
//	github.com/dmitrymomot/streamcast/core/config - Type-safe environment variable loading
//	github.com/dmitrymomot/streamcast/core/logger - slog attribute helpers
//	github.com/dmitrymomot/streamcast/core/health - Liveness and readiness HTTP handlers
//
// # Integration Packages
//
// Every source implements broadcast.Source and, when it owns a connection,
// io.Closer so the broadcast closes it on teardown:
//
//	github.com/dmitrymomot/streamcast/integration/source/redisstream - Redis Streams (XREAD)
//	github.com/dmitrymomot/streamcast/integration/source/pgnotify    - PostgreSQL LISTEN/NOTIFY
//	github.com/dmitrymomot/streamcast/integration/source/mongostream - MongoDB change streams
//	github.com/dmitrymomot/streamcast/integration/source/s3list      - S3 bucket listings
//	github.com/dmitrymomot/streamcast/integration/source/wsconn      - WebSocket client connections
//	github.com/dmitrymomot/streamcast/integration/metrics/prommetrics - Prometheus collector over broadcast stats
//
// # Quick Start
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/redis/go-redis/v9"
//
//		"github.com/dmitrymomot/streamcast/core/config"
//		"github.com/dmitrymomot/streamcast/integration/source/redisstream"
//		"github.com/dmitrymomot/streamcast/pkg/broadcast"
//	)
//
//	func main() {
//		ctx := context.Background()
//		rdb := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})
//
//		var rc redisstream.Config
//		config.MustLoad(&rc)
//		src, err := redisstream.New(rdb, rc)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		var bc broadcast.Config
//		config.MustLoad(&bc)
//		h := broadcast.NewFromConfig(src, bc)
//		defer h.Close()
//
//		for range 4 {
//			c := h.Clone()
//			go func() {
//				defer c.Close()
//				for it, err := range c.All(ctx) {
//					if err != nil {
//						log.Println(err)
//						return
//					}
//					log.Println(it.Seq, it.Missed, it.Value.ID)
//				}
//			}()
//		}
//		select {}
//	}
package streamcast
