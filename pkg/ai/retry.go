package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultMaxAttempts = 4
	defaultBaseDelay   = time.Second
)

// RetryConfig tunes the retry wrapper. Zero values pick the defaults: four
// total attempts with a one second base delay.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// RetryingEvaluator wraps an Evaluator with bounded linear-backoff retry.
// Every attempt re-invokes the full model call, since transient failures may
// sit in the transport or in the parse stage. The delay before retry k is
// k * BaseDelay.
type RetryingEvaluator struct {
	inner  Evaluator
	cfg    RetryConfig
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingEvaluator wraps inner with the retry policy.
func NewRetryingEvaluator(inner Evaluator, cfg RetryConfig, logger zerolog.Logger) *RetryingEvaluator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}

	return &RetryingEvaluator{
		inner:  inner,
		cfg:    cfg,
		logger: logger.With().Str("component", "retrying_evaluator").Logger(),
		sleep:  sleepContext,
	}
}

// Evaluate runs the wrapped evaluator until it succeeds or the attempt budget
// is exhausted, then returns one aggregated EvaluationError naming the
// attempt count.
func (r *RetryingEvaluator) Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error) {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		result, err := r.inner.Evaluate(ctx, input)
		if err == nil {
			return result, nil
		}
		lastErr = err
		r.logger.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", r.cfg.MaxAttempts).
			Msg("evaluation attempt failed")

		if attempt < r.cfg.MaxAttempts {
			if err := r.sleep(ctx, time.Duration(attempt)*r.cfg.BaseDelay); err != nil {
				lastErr = err
				break
			}
		}
	}

	return EvaluationResult{}, &EvaluationError{Attempts: r.cfg.MaxAttempts, Last: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
