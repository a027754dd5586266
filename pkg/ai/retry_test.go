package ai

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type scriptedEvaluator struct {
	failures int
	calls    int
	result   EvaluationResult
}

func (s *scriptedEvaluator) Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error) {
	s.calls++
	if s.calls <= s.failures {
		return EvaluationResult{}, errors.New("transient model failure")
	}
	return s.result, nil
}

func newTestRetrier(inner Evaluator) (*RetryingEvaluator, *[]time.Duration) {
	retrier := NewRetryingEvaluator(inner, RetryConfig{BaseDelay: time.Second}, zerolog.New(io.Discard))
	delays := &[]time.Duration{}
	retrier.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return retrier, delays
}

func TestRetryingEvaluatorSucceedsOnFourthAttempt(t *testing.T) {
	inner := &scriptedEvaluator{failures: 3, result: EvaluationResult{OverallScore: 80}}
	retrier, delays := newTestRetrier(inner)

	result, err := retrier.Evaluate(context.Background(), EvaluationInput{})
	require.NoError(t, err)
	require.Equal(t, 80.0, result.OverallScore)
	require.Equal(t, 4, inner.calls)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, *delays)
}

func TestRetryingEvaluatorExhaustsAttempts(t *testing.T) {
	inner := &scriptedEvaluator{failures: 10}
	retrier, delays := newTestRetrier(inner)

	_, err := retrier.Evaluate(context.Background(), EvaluationInput{})
	require.Error(t, err)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	require.Equal(t, 4, evalErr.Attempts)
	require.Equal(t, 4, inner.calls)
	require.Len(t, *delays, 3)
}

func TestRetryingEvaluatorStopsOnContextCancel(t *testing.T) {
	inner := &scriptedEvaluator{failures: 10}
	retrier := NewRetryingEvaluator(inner, RetryConfig{}, zerolog.New(io.Discard))
	retrier.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	_, err := retrier.Evaluate(context.Background(), EvaluationInput{})
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, inner.calls)
}
