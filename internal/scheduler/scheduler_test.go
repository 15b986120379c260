package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCalculateNextDue(t *testing.T) {
	from := time.Date(2026, 10, 16, 10, 7, 30, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		loc  *time.Location
		want time.Time
	}{
		{"every 5 minutes", "*/5 * * * *", time.UTC, time.Date(2026, 10, 16, 10, 10, 0, 0, time.UTC)},
		{"hourly", "0 * * * *", time.UTC, time.Date(2026, 10, 16, 11, 0, 0, 0, time.UTC)},
		{"daily descriptor", "@daily", time.UTC, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)},
		{"fixed offset timezone", "0 12 * * *", time.FixedZone("UTC+3", 3*3600), time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateNextDue(tt.expr, tt.loc, from)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	// 6 полей (с секундами) не поддерживаются
	if err := ValidateCronExpr("0 */5 * * * *"); err == nil {
		t.Error("expected error for 6-field expression")
	}
	if err := ValidateCronExpr("not a cron"); err == nil {
		t.Error("expected error for garbage")
	}
}

func TestLoadLocation(t *testing.T) {
	if LoadLocation("") != time.UTC {
		t.Error("empty timezone should be UTC")
	}
	if LoadLocation("Mars/Olympus") != time.UTC {
		t.Error("unknown timezone should fall back to UTC")
	}
}

func TestNew_InvalidCron(t *testing.T) {
	_, err := New(Config{CronExpr: "bad", Job: func(context.Context) error { return nil }})
	if err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestTick_FailureDoesNotStop(t *testing.T) {
	calls := 0
	s, err := New(Config{
		CronExpr: "* * * * *",
		Logger:   discardLogger(),
		Job: func(context.Context) error {
			calls++
			if calls == 1 {
				return errors.New("broker unavailable")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.Tick(context.Background())
	s.Tick(context.Background())

	runs, failures := s.Stats()
	if runs != 2 || failures != 1 {
		t.Errorf("expected 2 runs / 1 failure, got %d / %d", runs, failures)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, err := New(Config{
		CronExpr: "0 0 1 1 *",
		Logger:   discardLogger(),
		Job:      func(context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	if runs, _ := s.Stats(); runs != 0 {
		t.Errorf("expected no runs, got %d", runs)
	}
}
