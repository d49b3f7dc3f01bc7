// Package mongostream turns a MongoDB change stream into a broadcast source.
//
// One change stream cursor is opened per broadcast, however many consumers
// read from it:
//
//	src, err := mongostream.Watch[mongostream.ChangeEvent[Order]](ctx, db.Collection("orders"), nil)
//	if err != nil {
//		return err
//	}
//
//	h := broadcast.New(src, 256)
//	defer h.Close() // closes the change stream
//
// Pass a pipeline to filter events server side and change stream options such
// as options.ChangeStream().SetFullDocument(options.UpdateLookup) as usual.
//
// # Error Handling
//
//   - ErrWatchFailed: the change stream could not be opened
//   - ErrStreamFailed: the cursor failed; the broadcast ends with this cause
//   - ErrDecodeFailed: a document did not decode into T
//
// A cursor that ends cleanly reports io.EOF, which finishes the broadcast.
package mongostream
