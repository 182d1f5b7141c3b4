// Package dbx opens the credential store connections with bounded retries.
package dbx

import (
	"context"
	"net/http"

	"github.com/Abraxas-365/authcore/pkg/asyncx"
	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrRegistry = errx.NewRegistry("DB")

var CodeConnectFailed = ErrRegistry.Register("CONNECT_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to connect to the database")

func retryPolicy(store string, cfg config.DatabaseConfig) asyncx.RetryPolicy {
	return asyncx.RetryPolicy{
		Attempts: cfg.RetryAttempts,
		Interval: cfg.RetryInterval,
		OnFailure: func(attempt int, err error) {
			logx.WithFields(logx.Fields{
				"store":   store,
				"attempt": attempt,
				"of":      cfg.RetryAttempts,
			}).WithError(err).Warn("store connection failed")
		},
	}
}

// ConnectMongo connects and pings MongoDB, returning the configured database.
func ConnectMongo(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := asyncx.Retry(ctx, retryPolicy(config.DriverMongo, cfg), func(ctx context.Context) (*mongo.Client, error) {
		c, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.MongoURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MongoMaxPool).
				SetMinPoolSize(cfg.MongoMinPool),
		)
		if err != nil {
			return nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := c.Ping(pingCtx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, nil, ErrRegistry.NewWithCause(CodeConnectFailed, err).WithDetail("store", config.DriverMongo)
	}

	return client, client.Database(cfg.MongoDatabase), nil
}

// ConnectPostgres opens a sqlx pool over lib/pq and applies the pool limits.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := asyncx.Retry(ctx, retryPolicy(config.DriverPostgres, cfg), func(ctx context.Context) (*sqlx.DB, error) {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		return sqlx.ConnectContext(connectCtx, "postgres", cfg.PostgresURL)
	})
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeConnectFailed, err).WithDetail("store", config.DriverPostgres)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}
