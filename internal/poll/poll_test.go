package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPolicy_Delay(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{"fixed", Policy{InitialDelay: 100 * time.Millisecond}, 3, 100 * time.Millisecond},
		{"exponential first", Policy{InitialDelay: 100 * time.Millisecond, Backoff: BackoffExponential}, 1, 100 * time.Millisecond},
		{"exponential third", Policy{InitialDelay: 100 * time.Millisecond, Backoff: BackoffExponential}, 3, 400 * time.Millisecond},
		{"exponential capped", Policy{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Backoff: BackoffExponential}, 10, 3 * time.Second},
		{"defaults", Policy{}, 1, time.Second},
		{"fixed capped", Policy{InitialDelay: time.Minute, MaxDelay: time.Second}, 1, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestUntil_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Until(context.Background(), Policy{MaxAttempts: 5, InitialDelay: time.Millisecond}, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestUntil_Exhausted(t *testing.T) {
	calls := 0
	err := Until(context.Background(), Policy{MaxAttempts: 3, InitialDelay: time.Millisecond}, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})

	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestUntil_ConditionError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Until(context.Background(), Policy{MaxAttempts: 5, InitialDelay: time.Millisecond}, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("expected condition error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("error should stop polling, got %d calls", calls)
	}
}

func TestUntil_WaitFirst(t *testing.T) {
	start := time.Now()
	err := Until(context.Background(), Policy{MaxAttempts: 1, InitialDelay: 30 * time.Millisecond, WaitFirst: true}, func(context.Context) (bool, error) {
		return true, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Error("WaitFirst should sleep before the first attempt")
	}
}

func TestUntil_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	err := Until(ctx, Policy{MaxAttempts: 10, InitialDelay: time.Minute}, func(context.Context) (bool, error) {
		cancel()
		return false, nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
