// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the root configuration tree
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Google   GoogleConfig
	Notifx   NotifxConfig
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port                string        `env:"PORT" envDefault:"7000"`
	AppName             string        `env:"APP_NAME" envDefault:"authcore"`
	CORSOrigins         string        `env:"CORS_ORIGINS" envDefault:"*"`
	FrontendURL         string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	ExternalCallTimeout time.Duration `env:"EXTERNAL_CALL_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Debug               bool          `env:"DEBUG" envDefault:"false"`
}

// Store drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig selects and configures the credential store
type DatabaseConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"mongo"`

	MongoURL        string        `env:"MONGODB_CONNECTION_STRING"`
	MongoDatabase   string        `env:"MONGODB_DATABASE" envDefault:"authcore"`
	MongoMaxPool    uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MongoMinPool    uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`
	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
	PostgresURL     string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	RetryAttempts   int           `env:"DB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"5s"`
}

// AuthConfig configures token issuance and password hashing
type AuthConfig struct {
	AccessSecret    string        `env:"ACCESS_SECRET,required,notEmpty"`
	RefreshSecret   string        `env:"REFRESH_SECRET"`
	Issuer          string        `env:"JWT_ISSUER" envDefault:"authcore"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	MagicLinkTTL    time.Duration `env:"MAGIC_LINK_TTL" envDefault:"15m"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`
}

// GoogleConfig configures federated login
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

// Email providers
const (
	ProviderConsole  = "console"
	ProviderSMTP     = "smtp"
	ProviderSES      = "ses"
	ProviderPostmark = "postmark"
)

// NotifxConfig configures outbound email
type NotifxConfig struct {
	Provider    string `env:"NOTIFX_PROVIDER" envDefault:"console"`
	FromAddress string `env:"NOTIFX_FROM_ADDRESS"`
	FromName    string `env:"NOTIFX_FROM_NAME" envDefault:"Authcore"`

	SMTPHost string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser string `env:"EMAIL_USER"`
	SMTPPass string `env:"EMAIL_PASS"`

	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFallbacks() {
	if c.Auth.RefreshSecret == "" {
		c.Auth.RefreshSecret = c.Auth.AccessSecret
	}
	if c.Notifx.FromAddress == "" {
		c.Notifx.FromAddress = c.Notifx.SMTPUser
	}
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURL == "" {
			errs = append(errs, errors.New("MONGODB_CONNECTION_STRING is required for the mongo store"))
		}
	case DriverPostgres:
		if c.Database.PostgresURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver))
	}

	switch c.Notifx.Provider {
	case ProviderConsole, ProviderSES:
	case ProviderSMTP:
		if c.Notifx.SMTPUser == "" || c.Notifx.SMTPPass == "" {
			errs = append(errs, errors.New("EMAIL_USER and EMAIL_PASS are required for the smtp provider"))
		}
	case ProviderPostmark:
		if c.Notifx.PostmarkServerToken == "" {
			errs = append(errs, errors.New("POSTMARK_SERVER_TOKEN is required for the postmark provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFX_PROVIDER %q", c.Notifx.Provider))
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 || c.Auth.MagicLinkTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}

	return errors.Join(errs...)
}

// ExpiresInSeconds is the access token lifetime reported to clients.
func (a AuthConfig) ExpiresInSeconds() int {
	return int(a.AccessTokenTTL / time.Second)
}
