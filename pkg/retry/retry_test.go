package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		MaxRetries:   2,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_Success(t *testing.T) {
	callCount := 0
	err := Do(context.Background(), testConfig(), func() error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestDoWithResult_SuccessAfterRetries(t *testing.T) {
	callCount := 0
	var delays []time.Duration
	last := time.Now()

	result, err := DoWithResult(context.Background(), &Config{
		MaxRetries:   2,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}, func() (string, error) {
		now := time.Now()
		if callCount > 0 {
			delays = append(delays, now.Sub(last))
		}
		last = now
		callCount++
		if callCount < 3 {
			return "", errors.New("transient error")
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if result != "ok" {
		t.Errorf("expected result %q, got %q", "ok", result)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
	if len(delays) != 2 {
		t.Fatalf("expected 2 delays, got %d", len(delays))
	}
	// Second delay should be roughly Multiplier x the first. Allow slack
	// for scheduling noise and jitter.
	if delays[1] < delays[0] {
		t.Errorf("expected second delay >= first, got %v then %v", delays[0], delays[1])
	}
}

func TestDoWithResult_MaxRetriesExhausted(t *testing.T) {
	expectedErr := errors.New("persistent error")
	callCount := 0

	_, err := DoWithResult(context.Background(), testConfig(), func() (int, error) {
		callCount++
		return 0, expectedErr
	})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	// MaxRetries=2 means: initial attempt + 2 retries = 3 total calls.
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDoWithResult_CancellationNotRetried(t *testing.T) {
	callCount := 0
	start := time.Now()

	_, err := DoWithResult(context.Background(), &Config{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}, func() (int, error) {
		callCount++
		return 0, context.Canceled
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected exactly 1 call, got %d", callCount)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("cancellation should return without delay, took %v", elapsed)
	}
}

func TestDoWithResult_WrappedCancellationNotRetried(t *testing.T) {
	callCount := 0
	_, err := DoWithResult(context.Background(), testConfig(), func() (int, error) {
		callCount++
		return 0, errors.Join(errors.New("agent call aborted"), context.Canceled)
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected exactly 1 call, got %d", callCount)
	}
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	err := Do(ctx, &Config{
		MaxRetries:   5,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}, func() error {
		callCount++
		cancel()
		return errors.New("transient error")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", callCount)
	}
}

type retryableErr struct {
	retryable bool
}

func (e *retryableErr) Error() string     { return "explicit" }
func (e *retryableErr) IsRetryable() bool { return e.retryable }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancellation", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"explicit retryable", &retryableErr{retryable: true}, true},
		{"explicit permanent", &retryableErr{retryable: false}, false},
		{"rate limit", errors.New("429 too many requests"), true},
		{"server error", errors.New("HTTP 503 service unavailable"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"permanent", errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDoIfRetryable_PermanentErrorNotRetried(t *testing.T) {
	permanent := errors.New("unauthorized")
	callCount := 0

	err := DoIfRetryable(context.Background(), testConfig(), func() error {
		callCount++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("expected %v, got %v", permanent, err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestApplyJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := applyJitter(base, 0.1)
		if d < 90*time.Millisecond || d > 110*time.Millisecond {
			t.Fatalf("jittered delay %v outside +/-10%% of %v", d, base)
		}
	}
	if d := applyJitter(base, 0); d != base {
		t.Errorf("zero jitter should return base delay, got %v", d)
	}
}
