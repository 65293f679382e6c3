// Package redis provides connection helpers for the Redis-backed session
// store. The connection is established once at startup; callers decide what
// to do when Redis is unavailable (the session layer falls back to memory).
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrFailedToParseConnString = errors.New("redis: failed to parse connection string")
	ErrNotReady                = errors.New("redis: server not ready")
	ErrHealthcheckFailed       = errors.New("redis: healthcheck failed")
)

// Config describes the Redis connection settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect establishes a Redis connection, retrying up to cfg.RetryAttempts
// times and verifying each attempt with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseConnString, err)
	}

	for range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err())
		default:
			time.Sleep(cfg.RetryInterval)
		}
	}

	return nil, ErrNotReady
}

// Healthcheck returns a probe function suitable for readiness endpoints.
func Healthcheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
