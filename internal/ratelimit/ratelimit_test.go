package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/masarmall/leasing/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalLimiterDeniesAfterBurst(t *testing.T) {
	l := NewLocalLimiter(1, 2)
	defer l.Close()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	require.True(t, l.Allow("10.0.0.1").Allowed)
	require.True(t, l.Allow("10.0.0.1").Allowed)

	denied := l.Allow("10.0.0.1")
	require.False(t, denied.Allowed)
	require.Equal(t, 2, denied.Limit)
	require.Equal(t, 0, denied.Remaining)
	require.Greater(t, denied.RetryAfter, time.Duration(0))

	require.True(t, l.Allow("10.0.0.2").Allowed)
}

func TestLocalLimiterCleanupDropsStaleKeys(t *testing.T) {
	l := NewLocalLimiter(5, 5)
	defer l.Close()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.Allow("a")
	l.Allow("b")
	require.Equal(t, 2, l.size())

	l.cleanup(fixed.Add(time.Second))
	require.Equal(t, 0, l.size())
}

func TestAPILimiterDisabledAllowsEverything(t *testing.T) {
	l := NewAPILimiter(APILimiterParams{
		Config: config.Config{RateLimit: config.RateLimitConfig{Enabled: false}},
		Log:    zap.NewNop(),
	})
	require.False(t, l.Enabled())
	require.True(t, l.Allow(context.Background(), "x").Allowed)
}

func TestAPILimiterUsesLocalWithoutRedis(t *testing.T) {
	l := NewAPILimiter(APILimiterParams{
		Config: config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}},
		Log:    zap.NewNop(),
	})
	defer l.local.Close()

	require.True(t, l.Allow(context.Background(), "client").Allowed)
	require.False(t, l.Allow(context.Background(), "client").Allowed)
}

func TestNilLockerRunsJobUnguarded(t *testing.T) {
	var l *Locker
	called := false
	err := l.WithJobLock(context.Background(), "lease_invoice_due", time.Minute, func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)

	_, _, err = l.TryLock(context.Background(), "k", time.Second)
	require.True(t, errors.Is(err, ErrLockNotConfigured))
}

func TestBucketResultRetryAfter(t *testing.T) {
	at := time.Unix(0, 0)
	res := bucketResult(false, 0.5, 2, 10, at)
	require.Equal(t, 250*time.Millisecond, res.RetryAfter)
	require.Equal(t, at.Add(250*time.Millisecond), res.ResetTime)
	require.Equal(t, 0, res.Remaining)
}
