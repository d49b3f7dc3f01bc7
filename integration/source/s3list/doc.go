// Package s3list broadcasts a single S3 bucket listing to many consumers.
//
// The source walks ListObjectsV2 pages lazily and ends with io.EOF once the
// last page is consumed, so several workers can share one listing instead of
// each paying for their own:
//
//	client, err := s3list.NewClient(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	src, err := s3list.New(client, cfg)
//	if err != nil {
//		return err
//	}
//
//	h := broadcast.New(src, int(cfg.PageSize))
//	defer h.Close()
//
// Any S3-compatible service works; set Endpoint and ForcePathStyle for MinIO
// and similar.
//
// # Error Handling
//
// Listing failures are classified:
//   - ErrBucketNotFound, ErrAccessDenied, ErrServiceUnavailable
//   - ErrListFailed for everything else, with the API error code when known
//
// The original SDK error stays in the chain for errors.As.
package s3list
