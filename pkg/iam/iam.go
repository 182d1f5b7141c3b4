package iam

import (
	"net/http"

	"github.com/Abraxas-365/authcore/pkg/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

// ErrRegistry holds the access gate codes shared by every protected route.
var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeNoToken                 = ErrRegistry.Register("NO_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Access denied. No token provided.")
	CodeTokenExpired            = ErrRegistry.Register("TOKEN_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Token has expired. Please login again.")
	CodeInvalidTokenFormat      = ErrRegistry.Register("INVALID_TOKEN_FORMAT", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid token format.")
	CodeTokenNotActive          = ErrRegistry.Register("TOKEN_NOT_ACTIVE", errx.TypeAuthorization, http.StatusUnauthorized, "Token not active yet.")
	CodeUserNotAuthenticated    = ErrRegistry.Register("USER_NOT_AUTHENTICATED", errx.TypeAuthorization, http.StatusUnauthorized, "Authentication required")
	CodeRoleNotFound            = ErrRegistry.Register("ROLE_NOT_FOUND", errx.TypeForbidden, http.StatusForbidden, "User role not found")
	CodeInsufficientPermissions = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeForbidden, http.StatusForbidden, "Access denied. Insufficient permissions.")
)

// Helper functions
func ErrNoToken() *errx.Error {
	return ErrRegistry.New(CodeNoToken)
}

func ErrTokenExpired() *errx.Error {
	return ErrRegistry.New(CodeTokenExpired)
}

func ErrInvalidTokenFormat() *errx.Error {
	return ErrRegistry.New(CodeInvalidTokenFormat)
}

func ErrTokenNotActive() *errx.Error {
	return ErrRegistry.New(CodeTokenNotActive)
}

func ErrUserNotAuthenticated() *errx.Error {
	return ErrRegistry.New(CodeUserNotAuthenticated)
}

func ErrRoleNotFound() *errx.Error {
	return ErrRegistry.New(CodeRoleNotFound)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}

// OAuthProvider represents supported federated identity providers
type OAuthProvider string

const (
	OAuthProviderGoogle OAuthProvider = "GOOGLE"
)

// GetProviderName returns the human-readable provider name
func (p OAuthProvider) GetProviderName() string {
	switch p {
	case OAuthProviderGoogle:
		return "Google"
	default:
		return "Unknown"
	}
}
