// Package logger provides slog attribute helpers shared by the streamcast
// packages.
//
// Helpers return an empty slog.Attr for nil or empty values, which slog
// drops, so they can be passed unconditionally:
//
//	log.Error("broadcast source failed",
//		logger.Stream("orders"),
//		logger.Sequence(42),
//		logger.Error(err),
//	)
//
// Stream attributes:
//   - Stream: broadcast name under "stream"
//   - Sequence: item sequence number under "seq"
//   - Missed: skipped items under "missed"
//   - Consumer: consumer id under "consumer_id"
//   - Capacity: buffer size under "capacity"
//
// Generic attributes: Group, Error, Errors, Component, Event, Count, Duration
// and Key.
package logger
