package dbx

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectPostgres_BadURL(t *testing.T) {
	_, err := ConnectPostgres(context.Background(), config.DatabaseConfig{
		PostgresURL:    "postgres://%zz",
		ConnectTimeout: time.Second,
		RetryAttempts:  2,
		RetryInterval:  time.Millisecond,
	})

	require.Error(t, err)
	assert.True(t, errx.HasCode(err, CodeConnectFailed))

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, config.DriverPostgres, e.Details["store"])
}

func TestConnectMongo_BadURL(t *testing.T) {
	_, _, err := ConnectMongo(context.Background(), config.DatabaseConfig{
		MongoURL:       "not-a-mongo-uri",
		ConnectTimeout: time.Second,
		RetryAttempts:  1,
	})

	require.Error(t, err)
	assert.True(t, errx.HasCode(err, CodeConnectFailed))
}
