package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
)

// Redis holds the client shared by the ticket-number sequence and the SLA alert suppressor.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and waits briefly for the server. An unreachable server
// is logged, not fatal: ticket numbers fall back to the database count and SLA
// alerts go unsuppressed until it comes back.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
	})

	wait := cfg.DialTimeout * 3
	if wait <= 0 {
		wait = 5 * time.Second
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = wait
	ping := func() error { return client.Ping(ctx).Err() }
	notify := func(err error, next time.Duration) {
		logger.Debug("redis not ready, retrying", zap.Error(err), zap.Duration("wait", next))
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		logger.Warn("redis unreachable; continuing without it",
			zap.String("addr", cfg.Addr),
			zap.Duration("waited", wait),
			zap.Error(err))
	} else {
		logger.Info("connected to redis",
			zap.String("addr", cfg.Addr),
			zap.Int("db", cfg.DB),
			zap.Int("pool_size", cfg.PoolSize))
	}

	return &Redis{Client: client}
}

// Ping is the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Close()
}
