// Package pg manages the PostgreSQL connection pool, schema migrations and
// health checks for the service.
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config describes the PostgreSQL connection settings.
type Config struct {
	ConnectionString  string        `env:"DATABASE_URL,required"`
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`

	MigrationsPath  string `env:"PG_MIGRATIONS_PATH" envDefault:"migrations"`
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}

// Connect establishes a PostgreSQL connection pool, retrying with a growing
// delay so simultaneous service restarts don't hammer the database.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, ErrFailedToParseConfig
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MaxIdleConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	for i := range cfg.RetryAttempts {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			time.Sleep(time.Duration(i+1) * cfg.RetryInterval)
			continue
		}

		// A real ping catches authentication and permission problems that
		// pool creation alone does not surface.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			time.Sleep(time.Duration(i+1) * cfg.RetryInterval)
			continue
		}

		return pool, nil
	}

	return nil, ErrFailedToOpenConnection
}

// Healthcheck returns a probe function suitable for readiness endpoints.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return ErrHealthcheckFailed
		}
		return nil
	}
}
