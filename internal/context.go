package internal

import (
	"context"
	"time"
)

const defaultStoreTimeout = 5 * time.Second

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, duration)
}

// Detached keeps the values of ctx but drops its deadline and cancellation.
// Work that must run after a request finished (event dispatch, rollbacks)
// uses it so the request teardown does not abort it halfway.
func Detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
