package broadcast

import (
	"context"
	"fmt"
)

// Healthcheck returns a readiness check for a Handle or WeakHandle. It fails
// with ErrFinished once the source has ended or the broadcast was torn down.
func Healthcheck(h interface{ Stats() Stats }) func(context.Context) error {
	return func(context.Context) error {
		s := h.Stats()
		switch {
		case s.Gone:
			return fmt.Errorf("%w: broadcast %q torn down", ErrFinished, s.Name)
		case s.Finished:
			return fmt.Errorf("%w: broadcast %q source ended", ErrFinished, s.Name)
		}
		return nil
	}
}
