// Package pgnotify turns PostgreSQL LISTEN/NOTIFY into a broadcast source.
//
// A single dedicated connection waits for notifications; broadcasting the
// source lets any number of consumers share it:
//
//	src, err := pgnotify.Connect(ctx, pgnotify.Config{
//		ConnectionString: os.Getenv("DATABASE_URL"),
//		Channels:         []string{"orders"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	h := broadcast.New[pgnotify.Notification](src, 128)
//	defer h.Close() // closes the connection
//
// New wraps a connection managed elsewhere; Listen and Connect hand the
// connection's lifetime to the source.
//
// # Error Handling
//
//   - ErrNoChannels: Listen called without channels
//   - ErrListenFailed: a LISTEN statement failed
//   - ErrConnectFailed: the connection could not be opened
//   - ErrWaitFailed: waiting for a notification failed; the broadcast ends
//
// Context errors are returned unchanged.
package pgnotify
