package service

import (
	"context"
	"log"
	"time"
)

// Retrier repeats a failed operation with a linear backoff of
// Delay × attempt between tries.
type Retrier struct {
	MaxRetries int
	Delay      time.Duration
}

func NewRetrier(maxRetries int, delay time.Duration) *Retrier {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Retrier{MaxRetries: maxRetries, Delay: delay}
}

func Retry[T any](ctx context.Context, r *Retrier, name string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= r.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[RETRY] attempt %d failed for %s: %v", attempt, name, err)

		if attempt == r.MaxRetries {
			break
		}
		timer := time.NewTimer(r.Delay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
