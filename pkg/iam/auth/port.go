package auth

import (
	"context"
	"time"

	"github.com/Abraxas-365/authcore/pkg/iam"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/notifx"
)

// TokenService issues and verifies signed tokens. Validate* errors are
// *TokenError values.
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, role kernel.Role, email string) (string, error)
	GenerateRefreshToken(userID kernel.UserID) (string, error)
	GenerateMagicLinkToken(userID kernel.UserID, email string) (string, error)

	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
	ValidateMagicLinkToken(token string) (*TokenClaims, error)

	// AccessTokenTTL is reported to clients as expiresIn
	AccessTokenTTL() time.Duration
	MagicLinkTTL() time.Duration
}

// PasswordService hashes and checks passwords
type PasswordService interface {
	HashPassword(plain string) (string, error)
	// VerifyPassword never fails; a malformed hash is a mismatch
	VerifyPassword(plain, hash string) bool
}

// FederatedIdentity is a verified identity asserted by an external provider
type FederatedIdentity struct {
	Provider      iam.OAuthProvider
	SubjectID     string
	Email         string
	Name          string
	EmailVerified bool
}

// IdentityVerifier validates a provider ID token. It returns nil for any
// token that must not be trusted.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) *FederatedIdentity
}

// EmailNotifier renders and sends templated email. *notifx.Client
// implements it.
type EmailNotifier interface {
	SendTemplatedEmail(ctx context.Context, templateName string, data any, msg notifx.EmailMessage, opts ...notifx.Option) error
}
