package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/kernel"
)

// ============================================================================
// Token Types
// ============================================================================

// TokenPurpose says which flow a token was minted for. A token is only
// accepted where its purpose is expected.
type TokenPurpose string

const (
	PurposeAccess    TokenPurpose = "access"
	PurposeRefresh   TokenPurpose = "refresh"
	PurposeMagicLink TokenPurpose = "magic_link"
)

// TokenClaims is the verified content of a token
type TokenClaims struct {
	UserID    kernel.UserID
	Role      kernel.Role
	Email     string
	Purpose   TokenPurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenErrorKind classifies a failed verification
type TokenErrorKind int

const (
	// TokenOK is returned by TokenErrorKindOf for a nil error
	TokenOK TokenErrorKind = iota
	TokenMalformed
	TokenExpired
	TokenNotYetValid
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenOK:
		return "ok"
	case TokenExpired:
		return "expired"
	case TokenNotYetValid:
		return "not_yet_valid"
	default:
		return "malformed"
	}
}

// TokenError is returned by every Validate* method of the token service.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + e.Kind.String()
	}
	return "token " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// TokenErrorKindOf classifies err. Errors that are not *TokenError count as
// malformed.
func TokenErrorKindOf(err error) TokenErrorKind {
	if err == nil {
		return TokenOK
	}
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	return TokenMalformed
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeRegistrationFieldsRequired = ErrRegistry.Register("REGISTRATION_FIELDS_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "userName, email and password are required")
	CodeInvalidRole                = ErrRegistry.Register("INVALID_ROLE", errx.TypeValidation, http.StatusBadRequest, "Role must be one of user, manager or admin")
	CodePasswordTooLong            = ErrRegistry.Register("PASSWORD_TOO_LONG", errx.TypeValidation, http.StatusBadRequest, "Password must be at most 72 bytes")
	CodeRegistrationFailed         = ErrRegistry.Register("REGISTRATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Error registering user!")

	CodeLoginFieldsRequired      = ErrRegistry.Register("LOGIN_FIELDS_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "userName or email, and password are required")
	CodePasswordLoginUnavailable = ErrRegistry.Register("PASSWORD_LOGIN_UNAVAILABLE", errx.TypeValidation, http.StatusBadRequest, "This account has no password. Please sign in with Google.")
	CodeInvalidCredentials       = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeValidation, http.StatusBadRequest, "Invalid password!")

	CodeNoRefreshToken      = ErrRegistry.Register("NO_REFRESH_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Refresh token is required")
	CodeRefreshTokenExpired = ErrRegistry.Register("REFRESH_TOKEN_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Refresh token has expired. Please login again.")
	CodeInvalidRefreshToken = ErrRegistry.Register("INVALID_REFRESH_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid refresh token")

	CodeEmailRequired    = ErrRegistry.Register("EMAIL_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Email is required")
	CodeEmailSendFailed  = ErrRegistry.Register("EMAIL_SEND_FAILED", errx.TypeExternal, http.StatusInternalServerError, "Failed to send magic link email")
	CodeInvalidToken     = ErrRegistry.Register("INVALID_TOKEN", errx.TypeValidation, http.StatusBadRequest, "Token is required")
	CodeMagicLinkExpired = ErrRegistry.Register("MAGIC_LINK_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Magic link has expired. Please request a new one.")
	CodeInvalidMagicLink = ErrRegistry.Register("INVALID_MAGIC_LINK", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid magic link")

	CodeIDTokenRequired    = ErrRegistry.Register("ID_TOKEN_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Google ID token is required")
	CodeInvalidGoogleToken = ErrRegistry.Register("INVALID_GOOGLE_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid Google token")

	CodeInvalidRequestBody    = ErrRegistry.Register("INVALID_REQUEST_BODY", errx.TypeValidation, http.StatusBadRequest, "Invalid request body")
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
)

// Helper functions
func ErrRegistrationFieldsRequired() *errx.Error {
	return ErrRegistry.New(CodeRegistrationFieldsRequired)
}

func ErrInvalidRole() *errx.Error {
	return ErrRegistry.New(CodeInvalidRole)
}

func ErrLoginFieldsRequired() *errx.Error {
	return ErrRegistry.New(CodeLoginFieldsRequired)
}

func ErrPasswordLoginUnavailable() *errx.Error {
	return ErrRegistry.New(CodePasswordLoginUnavailable)
}

func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrNoRefreshToken() *errx.Error {
	return ErrRegistry.New(CodeNoRefreshToken)
}

func ErrRefreshTokenExpired() *errx.Error {
	return ErrRegistry.New(CodeRefreshTokenExpired)
}

func ErrInvalidRefreshToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidRefreshToken)
}

func ErrEmailRequired() *errx.Error {
	return ErrRegistry.New(CodeEmailRequired)
}

func ErrInvalidToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidToken)
}

func ErrMagicLinkExpired() *errx.Error {
	return ErrRegistry.New(CodeMagicLinkExpired)
}

func ErrInvalidMagicLink() *errx.Error {
	return ErrRegistry.New(CodeInvalidMagicLink)
}

func ErrIDTokenRequired() *errx.Error {
	return ErrRegistry.New(CodeIDTokenRequired)
}

func ErrInvalidGoogleToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidGoogleToken)
}

func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrInvalidRequestBody() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequestBody)
}
