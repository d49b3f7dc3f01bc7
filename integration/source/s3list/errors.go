package s3list

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig      = errors.New("invalid s3 listing configuration")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("s3 service unavailable")
	ErrListFailed         = errors.New("failed to list objects")
)

// classifyError maps S3 failures to package errors. Context errors pass through.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "NoSuchBucket":
			return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
		case "AccessDenied":
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		default:
			return fmt.Errorf("%w (code: %s): %w", ErrListFailed, code, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrListFailed, err)
}
