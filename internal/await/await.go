// Package await races remote calls against fixed client-side deadlines.
//
// The race is an abandon, not a cancellation: the call keeps running on
// the original context, and its eventual outcome is delivered into a
// buffered channel nobody reads once the deadline has won. A late
// completion therefore can never reach caller state.
package await

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when the deadline settles before the call.
var ErrTimeout = errors.New("remote call timed out")

// Race runs fn and returns its outcome unless d elapses first, in which
// case the zero value and [ErrTimeout] are returned and fn's eventual
// completion is discarded. Context cancellation settles the race the same
// way a deadline does.
func Race[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	// Buffer of one: the abandoned goroutine must not leak on a lost race.
	ch := make(chan outcome, 1)
	go func() {
		value, err := fn(ctx)
		ch <- outcome{value: value, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case out := <-ch:
		return out.value, out.err
	case <-timer.C:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
