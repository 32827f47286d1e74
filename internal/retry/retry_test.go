package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

func TestDo_EventualSuccess(t *testing.T) {
	opts := Options{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	calls := 0
	var callTimes []time.Time
	result, err := Do(context.Background(), "test-op", opts, func(ctx context.Context) (string, error) {
		calls++
		callTimes = append(callTimes, time.Now())
		if calls < 3 {
			return "", fmt.Errorf("%w: flaky", docmodel.ErrTransient)
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if result != "ok" {
		t.Errorf("result got %q, want ok", result)
	}
	if calls != 3 {
		t.Errorf("calls got %d, want 3", calls)
	}

	// backoff between attempt n and n+1 must be >= base * 2^(n-1)
	wantDelays := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	for i, want := range wantDelays {
		got := callTimes[i+1].Sub(callTimes[i])
		if got < want {
			t.Errorf("delay before attempt %d got %v, want >= %v", i+2, got, want)
		}
	}
}

func TestDo_ExhaustedReturnsLastErrorUnwrapped(t *testing.T) {
	opts := Options{MaxAttempts: 2, BaseDelay: time.Millisecond}

	boom := fmt.Errorf("%w: still down", docmodel.ErrTransient)
	_, err := Do(context.Background(), "test-op", opts, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected the last underlying error identity, got %v", err)
	}
	if !errors.Is(err, docmodel.ErrTransient) {
		t.Errorf("expected transient classification to survive, got %v", err)
	}
}

func TestDo_DeadlineBeatsRetryBudget(t *testing.T) {
	opts := Options{MaxAttempts: 5, BaseDelay: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := Do(ctx, "test-op", opts, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	if !errors.Is(err, docmodel.ErrTimeout) {
		t.Fatalf("expected ErrTimeout when the wall-clock deadline fires, got %v", err)
	}
}

func TestDo_TerminalErrorsNotRetried(t *testing.T) {
	opts := Options{MaxAttempts: 3, BaseDelay: time.Millisecond}

	for _, terminal := range []error{docmodel.ErrValidation, docmodel.ErrNotFound, docmodel.ErrUnsupportedProfile} {
		calls := 0
		_, err := Do(context.Background(), "test-op", opts, func(ctx context.Context) (int, error) {
			calls++
			return 0, terminal
		})
		if !errors.Is(err, terminal) {
			t.Errorf("error got %v, want %v", err, terminal)
		}
		if calls != 1 {
			t.Errorf("%v: calls got %d, want 1", terminal, calls)
		}
	}
}

func TestDo_TimeoutSentinelShortCircuits(t *testing.T) {
	opts := Options{MaxAttempts: 5, BaseDelay: time.Millisecond}

	calls := 0
	_, err := Do(context.Background(), "test-op", opts, func(ctx context.Context) (int, error) {
		calls++
		return 0, docmodel.ErrTimeout
	})

	if !errors.Is(err, docmodel.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls got %d, want 1 (timeout must skip remaining budget)", calls)
	}
}
