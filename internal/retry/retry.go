package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/loykin/catalogup/internal/common"
)

// Config controls how long Connect waits for a database to accept connections.
// It is never applied to DDL or DML statements: a half-applied statement must not be replayed.
type Config struct {
	MaxRetries      uint64        // Maximum number of retry attempts after the first
	InitialDelay    time.Duration // Delay before the first retry
	MaxDelay        time.Duration // Upper bound for a single delay
	RetryableErrors []string      // Error substrings that trigger a retry
}

// DefaultConfig returns the readiness policy used by the CLI
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   5,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		RetryableErrors: []string{
			"connection refused",
			"connection reset",
			"timeout",
			"temporary failure",
			"database is locked",
			"the database system is starting up",
			"no such host",
			"broken pipe",
		},
	}
}

func (c *Config) isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range c.RetryableErrors {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Config) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialDelay
	b.MaxInterval = c.MaxDelay
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.MaxRetries), ctx)
}

// WaitReady calls ping until it succeeds, fails with a non-retryable error or the
// retry budget is exhausted.
func WaitReady(ctx context.Context, cfg *Config, ping func(context.Context) error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := common.GetLogger().WithComponent("db-ready")

	attempts := 0
	op := func() error {
		attempts++
		err := ping(ctx)
		if err != nil && !cfg.isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		logger.Warn("database not ready, retrying", "error", err, "attempt", attempts, "retry_delay", delay)
	}

	if err := backoff.RetryNotify(op, cfg.policy(ctx), notify); err != nil {
		return fmt.Errorf("database not ready after %d attempts: %w", attempts, err)
	}
	if attempts > 1 {
		logger.Info("database ready after retry", "attempts", attempts)
	}
	return nil
}
