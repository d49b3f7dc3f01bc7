// Package redisstream exposes a Redis stream as a broadcast source.
//
// Entries are read with XREAD BLOCK in batches and handed out one at a time,
// so a single Redis connection can feed any number of broadcast handles:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	var cfg redisstream.Config
//	config.MustLoad(&cfg) // REDIS_STREAM, REDIS_STREAM_START_ID, ...
//
//	src, err := redisstream.New(client, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	h := broadcast.New[redisstream.Message](src, 256)
//	defer h.Close()
//
// The source tracks the ID of the last entry it returned, so following reads
// continue exactly after it. A "$" start is resolved once, on the first Next,
// to the stream's last generated ID (XINFO STREAM); from then on nothing added
// to the stream is skipped, even when a read is cancelled.
//
// # Error Handling
//
//   - ErrEmptyStream: New was called without a stream name
//   - ErrReadFailed: XREAD or XINFO STREAM failed; the broadcast ends with this error
//
// Context cancellation is returned unchanged so the broadcast can hand the
// read over to another consumer.
package redisstream
