// cmd/container.go
//
// Root composition root. Owns infrastructure (credential store, email
// provider, Google verifier) and composes the IAM container.
package main

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/dbx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/authcore/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/Abraxas-365/authcore/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/Abraxas-365/authcore/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/authcore/pkg/notifx/notifxpostmark"
	"github.com/Abraxas-365/authcore/pkg/notifx/notifxses"
	"github.com/Abraxas-365/authcore/pkg/notifx/notifxsmtp"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Container holds shared infrastructure and composed module containers.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	Mongo    *mongo.Client
	DB       *sqlx.DB
	Users    user.UserRepository
	Notifier *notifx.Client
	Verifier auth.IdentityVerifier

	// Bounded-context containers
	IAM *iamcontainer.Container
}

func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure(ctx)
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure: credential store, email, identity provider
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure(ctx context.Context) {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Credential store
	if err := c.initStore(ctx); err != nil {
		logx.Fatalf("Failed to initialize %s store: %v", c.Config.Database.Driver, err)
	}

	// 2. Email
	provider, err := c.newEmailProvider(ctx)
	if err != nil {
		logx.Fatalf("Failed to initialize email provider: %v", err)
	}
	c.Notifier = notifx.NewClient(provider, notifx.WithDefaultFrom(c.Config.Notifx.FromAddress))
	logx.Infof("  ✅ Email provider configured (%s)", c.Config.Notifx.Provider)

	// 3. Google
	c.initVerifier(ctx)

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initStore(ctx context.Context) error {
	dbCfg := c.Config.Database

	switch dbCfg.Driver {
	case config.DriverMongo:
		client, db, err := dbx.ConnectMongo(ctx, dbCfg)
		if err != nil {
			return err
		}
		c.Mongo = client

		repo := userinfra.NewMongoUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		c.Users = repo
		logx.Infof("  ✅ MongoDB connected (database: %s)", dbCfg.MongoDatabase)

	case config.DriverPostgres:
		db, err := dbx.ConnectPostgres(ctx, dbCfg)
		if err != nil {
			return err
		}
		c.DB = db

		repo := userinfra.NewPostgresUserRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		c.Users = repo
		logx.Info("  ✅ PostgreSQL connected, migrations applied")

	case config.DriverMemory:
		c.Users = userinfra.NewMemoryUserRepository()
		logx.Warn("  ⚠️ Using in-memory store, accounts are lost on restart")

	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", dbCfg.Driver)
	}
	return nil
}

func (c *Container) newEmailProvider(ctx context.Context) (notifx.EmailSender, error) {
	n := c.Config.Notifx

	switch n.Provider {
	case config.ProviderSMTP:
		return notifxsmtp.NewSMTPProvider(notifxsmtp.Config{
			Host:     n.SMTPHost,
			Port:     n.SMTPPort,
			Username: n.SMTPUser,
			Password: n.SMTPPass,
			FromName: n.FromName,
		})
	case config.ProviderSES:
		return notifxses.NewSESProviderFromRegion(ctx, n.AWSRegion, n.FromAddress)
	case config.ProviderPostmark:
		return notifxpostmark.NewPostmarkProvider(n.PostmarkServerToken, n.PostmarkAccountToken, n.FromAddress), nil
	case config.ProviderConsole:
		return notifxconsole.NewConsoleProvider(), nil
	default:
		return nil, fmt.Errorf("unknown NOTIFX_PROVIDER %q", n.Provider)
	}
}

func (c *Container) initVerifier(ctx context.Context) {
	if c.Config.Google.ClientID == "" {
		c.Verifier = disabledVerifier{}
		logx.Warn("  ⚠️ GOOGLE_CLIENT_ID not set, Google login disabled")
		return
	}

	verifier, err := authinfra.NewGoogleIdentityVerifier(ctx, c.Config.Google.ClientID)
	if err != nil {
		logx.Fatalf("Failed to initialize Google verifier: %v", err)
	}
	c.Verifier = verifier
	logx.Info("  ✅ Google identity verifier configured")
}

// disabledVerifier rejects every ID token.
type disabledVerifier struct{}

func (disabledVerifier) VerifyIDToken(context.Context, string) *auth.FederatedIdentity { return nil }

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	iamC, err := iamcontainer.New(iamcontainer.Deps{
		Users:    c.Users,
		Notifier: c.Notifier,
		Verifier: c.Verifier,
		Cfg:      c.Config,
	})
	if err != nil {
		logx.Fatalf("Failed to initialize IAM module: %v", err)
	}
	c.IAM = iamC
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			logx.Errorf("Error disconnecting MongoDB: %v", err)
		} else {
			logx.Info("  ✅ MongoDB connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
