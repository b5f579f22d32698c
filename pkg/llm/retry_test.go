package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetrySucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p := WithRetry(mock, fastRetry())

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryTransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(mock, fastRetry())

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	mock := NewMockProvider(down, down, down, down)
	p := WithRetry(mock, fastRetry())

	_, err := p.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetryMaxTokensIsFinal(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{}})
	p := WithRetry(mock, fastRetry())

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryInvalidResponseRetriedOnce(t *testing.T) {
	bad := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("schema")}}
	mock := NewMockProvider(bad, bad, bad)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: context.Canceled})
	p := WithRetry(mock, fastRetry())

	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryHonoursRetryAfter(t *testing.T) {
	r := &RetryProvider{config: fastRetry()}
	wait := r.backoff(0, &ErrRateLimit{RetryAfter: 3 * time.Second})
	assert.Equal(t, 3*time.Second, wait)

	wait = r.backoff(10, errors.New("x"))
	assert.LessOrEqual(t, wait, time.Duration(float64(5*time.Millisecond)*1.2))
}
