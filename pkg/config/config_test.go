package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "access")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ExternalCallTimeout)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.MagicLinkTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 3600, cfg.Auth.ExpiresInSeconds())
	assert.Equal(t, ProviderConsole, cfg.Notifx.Provider)
}

func TestLoad_RefreshSecretFallsBackToAccessSecret(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "access")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "access", cfg.Auth.RefreshSecret)

	t.Setenv("REFRESH_SECRET", "refresh")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh", cfg.Auth.RefreshSecret)
}

func TestLoad_MissingAccessSecret(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_StoreAndProvider(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "access")

	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_CONNECTION_STRING", "")
	_, err := Load()
	assert.ErrorContains(t, err, "MONGODB_CONNECTION_STRING")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("NOTIFX_PROVIDER", "smtp")
	_, err = Load()
	assert.ErrorContains(t, err, "EMAIL_USER")

	t.Setenv("NOTIFX_PROVIDER", "pigeon")
	_, err = Load()
	assert.ErrorContains(t, err, "pigeon")
}
