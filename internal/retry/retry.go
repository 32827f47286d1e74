package retry

import (
	"context"
	"errors"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts: config.MaxRetryAttempts(),
		BaseDelay:   config.RetryBaseDelay,
	}
}

var logger = logger_i.NewLogger("RetryEnvelope")

// Do runs fn with bounded re-attempts and exponential backoff. The caller's
// context deadline is the hard wall-clock bound for the whole envelope: when
// it fires, Do returns docmodel.ErrTimeout no matter how much retry budget is
// left. When attempts are exhausted the last underlying error is returned
// unchanged so callers can still branch on cause.
func Do[T any](ctx context.Context, operation string, opts Options, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return zero, timeoutOf(ctx.Err())
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, docmodel.ErrTimeout) {
			return zero, docmodel.ErrTimeout
		}
		lastErr = err
		if !docmodel.IsRetryable(err) || attempt == opts.MaxAttempts {
			break
		}

		delay := opts.BaseDelay << (attempt - 1)
		metrics.CaptureRetryAttempt(operation)
		logger.Warn("Retrying operation", "operation", operation, "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, timeoutOf(ctx.Err())
		}
	}

	return zero, lastErr
}

func timeoutOf(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return docmodel.ErrTimeout
}
