package auth

import (
	"strings"

	"github.com/Abraxas-365/authcore/pkg/iam"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

const bearerPrefix = "Bearer "

// TokenMiddleware gates routes on access tokens and roles
type TokenMiddleware struct {
	tokenService TokenService
}

// NewAuthMiddleware creates the middleware around the shared token service
func NewAuthMiddleware(tokenService TokenService) *TokenMiddleware {
	return &TokenMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate validates the bearer access token and stores the principal
// in the request locals.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), bearerPrefix))
		if token == "" {
			return iam.ErrNoToken()
		}

		claims, err := am.tokenService.ValidateAccessToken(token)
		if err != nil {
			logx.WithContext(c.UserContext()).WithError(err).Debug("access token rejected")

			switch TokenErrorKindOf(err) {
			case TokenExpired:
				return iam.ErrTokenExpired()
			case TokenNotYetValid:
				return iam.ErrTokenNotActive()
			default:
				return iam.ErrInvalidTokenFormat()
			}
		}

		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			UserID: claims.UserID,
			Role:   claims.Role,
			Email:  claims.Email,
		})

		return c.Next()
	}
}

// Authorize admits principals whose role is one of roles. It must run
// after Authenticate.
func (am *TokenMiddleware) Authorize(roles ...kernel.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authContext, ok := GetAuthContext(c)
		if !ok {
			return iam.ErrUserNotAuthenticated()
		}

		if authContext.Role.IsEmpty() {
			return iam.ErrRoleNotFound()
		}

		if !authContext.HasRole(roles...) {
			logx.WithContext(c.UserContext()).WithFields(logx.Fields{
				"user_id":        authContext.UserID,
				"role":           authContext.Role,
				"required_roles": roles,
				"path":           c.Path(),
			}).Warn("access denied: insufficient permissions")
			return iam.ErrInsufficientPermissions()
		}

		return c.Next()
	}
}

// GetAuthContext returns the principal stored by Authenticate
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	authContext, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	if !ok || authContext == nil {
		return nil, false
	}
	return authContext, true
}
