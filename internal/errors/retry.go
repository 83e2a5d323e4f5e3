package errors

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"suri/internal/logging"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts  int           // Maximum number of retry attempts (default: 3)
	BaseDelay    time.Duration // Base delay for exponential backoff (default: 1s)
	MaxDelay     time.Duration // Maximum delay between retries (default: 30s)
	JitterFactor float64       // Jitter factor for randomization (default: 0.25 = ±25%)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		BaseDelay:    1 * time.Second,
		MaxDelay:     30 * time.Second,
		JitterFactor: 0.25,
	}
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// Retry executes a function with exponential backoff retry logic.
func Retry(ctx context.Context, config RetryConfig, fn RetryableFunc) error {
	return RetryWithLog(ctx, config, fn, nil)
}

// RetryWithLog executes a function with retry logic and a custom logger.
func RetryWithLog(ctx context.Context, config RetryConfig, fn RetryableFunc, logger logging.Logger) error {
	logger = logging.OrNop(logger)

	var lastErr error

	for attempt := 0; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled, stopping retries")
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt > 0 {
			logger.Debug("Retrying (attempt %d/%d)", attempt+1, config.MaxAttempts+1)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !IsTransient(lastErr) {
			logger.Debug("Error is not transient, giving up: %v", lastErr)
			return lastErr
		}
		if attempt == config.MaxAttempts {
			break
		}

		delay := backoffDelay(config, attempt)
		logger.Debug("Transient error, backing off %s: %v", delay, lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", config.MaxAttempts+1, lastErr)
}

// backoffDelay computes the exponential backoff delay with jitter.
func backoffDelay(config RetryConfig, attempt int) time.Duration {
	delay := float64(config.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.JitterFactor > 0 {
		jitter := delay * config.JitterFactor * (2*rand.Float64() - 1)
		delay += jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
