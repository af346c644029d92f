package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.MaxRetries = 3
	return cfg
}

func TestWaitReady_SucceedsAfterRetryableErrors(t *testing.T) {
	calls := 0
	err := WaitReady(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp 127.0.0.1:5432: connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 ping attempts, got %d", calls)
	}
}

func TestWaitReady_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	authErr := errors.New("password authentication failed for user \"ambari\"")
	err := WaitReady(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return authErr
	})
	if !errors.Is(err, authErr) {
		t.Fatalf("expected wrapped auth error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestWaitReady_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := WaitReady(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return errors.New("database is locked")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 4 {
		t.Fatalf("expected 1 attempt + 3 retries, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{errors.New("i/o timeout"), true},
		{errors.New("syntax error at or near"), false},
	}
	for _, tt := range tests {
		if got := cfg.isRetryable(tt.err); got != tt.want {
			t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
