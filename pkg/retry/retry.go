// Package retry is a small helper for operations that are safe to repeat.
// State-changing chain submissions are never routed through it.
package retry

import (
	"context"
	"time"
)

// Do runs f up to attempts times, sleeping delay between failures. It stops
// early when ctx is done and returns the last error.
func Do(ctx context.Context, attempts int, delay time.Duration, f func(context.Context) error) error {
	var err error

	for i := 0; i < attempts; i++ {
		if err = f(ctx); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
