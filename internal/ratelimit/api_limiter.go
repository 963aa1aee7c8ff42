package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/masarmall/leasing/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyAPIClient = "leasing:api:client:%s"

// APILimiter throttles API clients through redis when available, else in process.
type APILimiter struct {
	enabled bool
	rate    float64
	burst   int
	bucket  *TokenBucket
	local   *LocalLimiter
	log     *zap.Logger
}

type APILimiterParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Client    *redis.Client `optional:"true"`
	Log       *zap.Logger
}

func NewAPILimiter(p APILimiterParams) *APILimiter {
	cfg := p.Config.RateLimit
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 || cfg.Burst <= 0 {
		return &APILimiter{}
	}

	l := &APILimiter{
		enabled: true,
		rate:    cfg.RequestsPerSecond,
		burst:   cfg.Burst,
		log:     p.Log.Named("ratelimit"),
	}
	if p.Client != nil {
		l.bucket = NewTokenBucket(p.Client)
	}
	l.local = NewLocalLimiter(cfg.RequestsPerSecond, cfg.Burst)
	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				l.local.Close()
				return nil
			},
		})
	}
	return l
}

func (l *APILimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow checks the client's bucket. Redis failures fall back to the local limiter.
func (l *APILimiter) Allow(ctx context.Context, clientKey string) *RateLimitResult {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "anonymous"
	}
	if l.bucket != nil {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyAPIClient, clientKey), l.rate, l.burst)
		if err == nil {
			return res
		}
		l.log.Warn("redis rate limit check failed, using local limiter", zap.Error(err))
	}
	return l.local.Allow(clientKey)
}
