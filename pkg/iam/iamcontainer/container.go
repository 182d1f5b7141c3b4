package iamcontainer

import (
	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/Abraxas-365/authcore/pkg/iam/user/userapi"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/gofiber/fiber/v2"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// The store, the email client and the identity verifier are built once by
// cmd/ and shared for the life of the process.
// ---------------------------------------------------------------------------

type Deps struct {
	Users    user.UserRepository
	Notifier *notifx.Client
	Verifier auth.IdentityVerifier
	Cfg      *config.Config
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// ---------------------------------------------------------------------------

type Container struct {
	UserRepo     user.UserRepository
	TokenService auth.TokenService
	AuthService  *auth.AuthService

	// Handlers, mounted by RegisterRoutes
	AuthHandlers *auth.AuthHandlers
	UserHandlers *userapi.UserHandlers

	// Middleware shared by protected route groups
	AuthMiddleware *auth.TokenMiddleware
}

// ---------------------------------------------------------------------------
// New: constructs the IAM dependency graph.
// Order matters: infra → services → handlers → middleware.
// ---------------------------------------------------------------------------

func New(deps Deps) (*Container, error) {
	logx.Info("🔧 Initializing IAM container...")

	c := &Container{UserRepo: deps.Users}

	// ── Infrastructure services ──────────────────────────────────────────

	passwordSvc := authinfra.NewBcryptPasswordService(deps.Cfg.Auth.BcryptCost)

	c.TokenService = auth.NewJWTService(auth.JWTConfig{
		AccessSecret:    deps.Cfg.Auth.AccessSecret,
		RefreshSecret:   deps.Cfg.Auth.RefreshSecret,
		Issuer:          deps.Cfg.Auth.Issuer,
		AccessTokenTTL:  deps.Cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: deps.Cfg.Auth.RefreshTokenTTL,
		MagicLinkTTL:    deps.Cfg.Auth.MagicLinkTTL,
	})

	if err := auth.RegisterEmailTemplates(deps.Notifier); err != nil {
		return nil, err
	}

	// ── Domain services ──────────────────────────────────────────────────

	c.AuthService = auth.NewAuthService(
		deps.Users,
		c.TokenService,
		passwordSvc,
		deps.Verifier,
		deps.Notifier,
		auth.ServiceConfig{
			AppName:             deps.Cfg.Server.AppName,
			FrontendURL:         deps.Cfg.Server.FrontendURL,
			ExternalCallTimeout: deps.Cfg.Server.ExternalCallTimeout,
		},
	)

	// ── Middleware ────────────────────────────────────────────────────────

	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService)

	// ── Handlers ─────────────────────────────────────────────────────────

	c.AuthHandlers = auth.NewAuthHandlers(c.AuthService)
	c.UserHandlers = userapi.NewUserHandlers(c.AuthMiddleware)

	logx.Info("✅ IAM container initialized")
	return c, nil
}

// RegisterRoutes mounts /auth and /users under api (normally /api).
func (c *Container) RegisterRoutes(api fiber.Router) {
	c.AuthHandlers.RegisterRoutes(api.Group("/auth"))
	c.UserHandlers.RegisterRoutes(api.Group("/users"))
}
