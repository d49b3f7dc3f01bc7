// Package wsconn turns a websocket client connection into a broadcast source.
//
// One upstream connection fans out to any number of in-process consumers:
//
//	src, err := wsconn.Dial(ctx, "wss://feed.example.com/ticks", nil)
//	if err != nil {
//		return err
//	}
//
//	h := broadcast.New(src, 512)
//	defer h.Close() // sends a close frame and closes the connection
//
// Reads happen on a background goroutine started by the first Next, so a
// consumer can stop waiting through its context without tearing down the
// connection; the message is delivered to the next reader instead.
//
// # Error Handling
//
//   - ErrDialFailed: the connection could not be established
//   - ErrReadFailed: the connection broke; the broadcast ends with this cause
//
// A normal or going-away close from the peer ends the stream with io.EOF.
package wsconn
