package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT token service
type JWTConfig struct {
	AccessSecret string
	// RefreshSecret falls back to AccessSecret when empty
	RefreshSecret   string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MagicLinkTTL    time.Duration
}

// JWTService implements TokenService with HS256 JWTs. Access and magic-link
// tokens share the access secret and are told apart by the purpose claim.
type JWTService struct {
	accessSecret    []byte
	refreshSecret   []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	magicLinkTTL    time.Duration
	now             func() time.Time
}

// NewJWTService creates the JWT service, filling in default TTLs
func NewJWTService(cfg JWTConfig) *JWTService {
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = time.Hour
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.MagicLinkTTL == 0 {
		cfg.MagicLinkTTL = 15 * time.Minute
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "authcore"
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}

	return &JWTService{
		accessSecret:    []byte(cfg.AccessSecret),
		refreshSecret:   []byte(cfg.RefreshSecret),
		issuer:          cfg.Issuer,
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		magicLinkTTL:    cfg.MagicLinkTTL,
		now:             time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating.
func (j *JWTService) WithClock(now func() time.Time) *JWTService {
	j.now = now
	return j
}

var _ TokenService = (*JWTService)(nil)

// JWTClaims is the signed payload
type JWTClaims struct {
	Purpose TokenPurpose `json:"purpose"`
	Role    kernel.Role  `json:"role,omitempty"`
	Email   string       `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (j *JWTService) AccessTokenTTL() time.Duration { return j.accessTokenTTL }
func (j *JWTService) MagicLinkTTL() time.Duration   { return j.magicLinkTTL }

// GenerateAccessToken issues an access token carrying role and email
func (j *JWTService) GenerateAccessToken(userID kernel.UserID, role kernel.Role, email string) (string, error) {
	return j.sign(JWTClaims{
		Purpose:          PurposeAccess,
		Role:             role,
		Email:            email,
		RegisteredClaims: j.registered(userID, j.accessTokenTTL),
	}, j.accessSecret)
}

// GenerateRefreshToken issues a refresh token carrying only the subject
func (j *JWTService) GenerateRefreshToken(userID kernel.UserID) (string, error) {
	return j.sign(JWTClaims{
		Purpose:          PurposeRefresh,
		RegisteredClaims: j.registered(userID, j.refreshTokenTTL),
	}, j.refreshSecret)
}

// GenerateMagicLinkToken issues a short-lived login token
func (j *JWTService) GenerateMagicLinkToken(userID kernel.UserID, email string) (string, error) {
	return j.sign(JWTClaims{
		Purpose:          PurposeMagicLink,
		Email:            email,
		RegisteredClaims: j.registered(userID, j.magicLinkTTL),
	}, j.accessSecret)
}

func (j *JWTService) ValidateAccessToken(token string) (*TokenClaims, error) {
	return j.validate(token, j.accessSecret, PurposeAccess)
}

func (j *JWTService) ValidateRefreshToken(token string) (*TokenClaims, error) {
	return j.validate(token, j.refreshSecret, PurposeRefresh)
}

func (j *JWTService) ValidateMagicLinkToken(token string) (*TokenClaims, error) {
	return j.validate(token, j.accessSecret, PurposeMagicLink)
}

func (j *JWTService) registered(userID kernel.UserID, ttl time.Duration) jwt.RegisteredClaims {
	now := j.now()
	return jwt.RegisteredClaims{
		Issuer:    j.issuer,
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (j *JWTService) sign(claims JWTClaims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithCause(err)
	}
	return signed, nil
}

func (j *JWTService) validate(tokenString string, secret []byte, purpose TokenPurpose) (*TokenClaims, error) {
	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.Purpose != purpose {
		return nil, &TokenError{
			Kind: TokenMalformed,
			Err:  fmt.Errorf("purpose %q where %q expected", claims.Purpose, purpose),
		}
	}
	if claims.Subject == "" {
		return nil, &TokenError{Kind: TokenMalformed, Err: errors.New("missing subject")}
	}

	out := &TokenClaims{
		UserID:    kernel.NewUserID(claims.Subject),
		Role:      claims.Role,
		Email:     claims.Email,
		Purpose:   claims.Purpose,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: TokenExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return &TokenError{Kind: TokenNotYetValid, Err: err}
	default:
		return &TokenError{Kind: TokenMalformed, Err: err}
	}
}
