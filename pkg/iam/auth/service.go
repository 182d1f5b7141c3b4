package auth

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/authcore/pkg/asyncx"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/user"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
	"github.com/google/uuid"
)

// magicLinkPath is appended to the frontend URL
const magicLinkPath = "/auth/magic-link"

// ServiceConfig holds the non-capability settings of AuthService
type ServiceConfig struct {
	AppName     string
	FrontendURL string
	// ExternalCallTimeout bounds identity verification and email dispatch
	ExternalCallTimeout time.Duration
}

// AuthService runs the login flows. It holds no per-request state.
type AuthService struct {
	users     user.UserRepository
	tokens    TokenService
	passwords PasswordService
	verifier  IdentityVerifier
	notifier  EmailNotifier
	cfg       ServiceConfig
}

func NewAuthService(
	users user.UserRepository,
	tokens TokenService,
	passwords PasswordService,
	verifier IdentityVerifier,
	notifier EmailNotifier,
	cfg ServiceConfig,
) *AuthService {
	if cfg.ExternalCallTimeout <= 0 {
		cfg.ExternalCallTimeout = 10 * time.Second
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		verifier:  verifier,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// ============================================================================
// Requests and results
// ============================================================================

type RegisterRequest struct {
	Username string `json:"userName"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the token pair issued by every successful login
type Session struct {
	User         *user.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// AccessGrant is the result of a refresh
type AccessGrant struct {
	AccessToken string
	ExpiresIn   int
}

// ============================================================================
// Flows
// ============================================================================

// Register creates a password account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, ErrRegistrationFieldsRequired()
	}

	role, ok := kernel.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole().WithDetail("role", req.Role)
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		if errx.HasCode(err, CodePasswordTooLong) {
			return nil, err
		}
		return nil, ErrRegistry.NewWithCause(CodeRegistrationFailed, err)
	}

	u := user.NewUser(username, email, role)
	u.PasswordHash = ptrx.String(hash)

	if err := s.users.Create(ctx, u); err != nil {
		if errx.HasCode(err, user.CodeDuplicateIdentity) {
			return nil, err
		}
		return nil, ErrRegistry.NewWithCause(CodeRegistrationFailed, err)
	}

	logx.WithContext(ctx).WithFields(logx.Fields{
		"user_id": u.ID,
		"role":    u.Role,
	}).Info("user registered")

	return u, nil
}

// Login checks a password against the account found by username or email
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if req.Password == "" || (username == "" && email == "") {
		return nil, ErrLoginFieldsRequired()
	}

	u, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}

	if !u.HasPassword() {
		return nil, ErrPasswordLoginUnavailable()
	}
	if !s.passwords.VerifyPassword(req.Password, *u.PasswordHash) {
		return nil, ErrInvalidCredentials()
	}

	return s.issueSession(u)
}

// Refresh trades a refresh token for a new access token. The refresh token
// itself stays valid until its own expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AccessGrant, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken()
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if TokenErrorKindOf(err) == TokenExpired {
			return nil, ErrRefreshTokenExpired()
		}
		return nil, ErrInvalidRefreshToken()
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(u.ID, u.Role, u.Email)
	if err != nil {
		return nil, err
	}

	return &AccessGrant{AccessToken: access, ExpiresIn: s.expiresIn()}, nil
}

// GenerateMagicLink mails a login link. A send failure ends the request;
// the token already minted stays valid until it expires.
func (s *AuthService) GenerateMagicLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired()
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.GenerateMagicLinkToken(u.ID, u.Email)
	if err != nil {
		return err
	}

	data := MagicLinkEmailData{
		AppName:          s.cfg.AppName,
		Username:         u.Username,
		Link:             s.MagicLinkURL(token),
		ExpiresInMinutes: int(s.tokens.MagicLinkTTL() / time.Minute),
	}
	msg := notifx.EmailMessage{To: []string{u.Email}}

	_, err = asyncx.WithTimeout(ctx, s.cfg.ExternalCallTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.notifier.SendTemplatedEmail(ctx, MagicLinkTemplate, data, msg, notifx.WithTag(MagicLinkTemplate))
	})
	if err != nil {
		return ErrRegistry.NewWithCause(CodeEmailSendFailed, err)
	}

	logx.WithContext(ctx).WithField("user_id", u.ID).Info("magic link sent")
	return nil
}

// MagicLinkURL builds the frontend callback for token
func (s *AuthService) MagicLinkURL(token string) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + magicLinkPath + "?token=" + url.QueryEscape(token)
}

// VerifyMagicLink exchanges a magic link token for a full session. The same
// token may be exchanged again until it expires.
func (s *AuthService) VerifyMagicLink(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken()
	}

	claims, err := s.tokens.ValidateMagicLinkToken(token)
	if err != nil {
		if TokenErrorKindOf(err) == TokenExpired {
			return nil, ErrMagicLinkExpired()
		}
		return nil, ErrInvalidMagicLink()
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueSession(u)
}

// GoogleLogin logs in with a Google ID token, linking the Google subject to
// an existing account on first use or creating a passwordless account.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	if idToken == "" {
		return nil, ErrIDTokenRequired()
	}

	identity, err := asyncx.WithTimeout(ctx, s.cfg.ExternalCallTimeout, func(ctx context.Context) (*FederatedIdentity, error) {
		return s.verifier.VerifyIDToken(ctx, idToken), nil
	})
	if err != nil || identity == nil {
		return nil, ErrInvalidGoogleToken()
	}

	u, err := s.findFederated(ctx, identity)
	switch {
	case err == nil:
		if !u.HasGoogleID() {
			if err := s.users.LinkGoogleID(ctx, u.ID, identity.SubjectID); err != nil {
				return nil, err
			}
			u.LinkGoogle(identity.SubjectID)
			logx.WithContext(ctx).WithField("user_id", u.ID).Info("google account linked")
		}
	case errx.HasCode(err, user.CodeUserNotFound):
		if u, err = s.createFederatedUser(ctx, identity); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.issueSession(u)
}

func (s *AuthService) createFederatedUser(ctx context.Context, identity *FederatedIdentity) (*user.User, error) {
	username, err := s.availableUsername(ctx, identity.Name)
	if err != nil {
		return nil, err
	}

	u := user.NewUser(username, identity.Email, kernel.RoleUser)
	u.GoogleID = ptrx.String(identity.SubjectID)

	if err := s.users.Create(ctx, u); err != nil {
		if !errx.HasCode(err, user.CodeDuplicateIdentity) {
			return nil, err
		}
		// A concurrent first login may have created the account.
		existing, findErr := s.findFederated(ctx, identity)
		if findErr != nil {
			return nil, err
		}
		return existing, nil
	}

	logx.WithContext(ctx).WithFields(logx.Fields{
		"user_id":  u.ID,
		"provider": identity.Provider,
	}).Info("federated user created")

	return u, nil
}

// findFederated resolves the account for a provider identity. The linked
// subject wins over the asserted email, which may since belong to another account.
func (s *AuthService) findFederated(ctx context.Context, identity *FederatedIdentity) (*user.User, error) {
	u, err := s.users.FindByGoogleID(ctx, identity.SubjectID)
	if err == nil || !errx.HasCode(err, user.CodeUserNotFound) {
		return u, err
	}
	if identity.Email == "" {
		return nil, err
	}
	return s.users.FindByEmail(ctx, identity.Email)
}

// availableUsername returns name, or name with a short random suffix when
// name is taken.
func (s *AuthService) availableUsername(ctx context.Context, name string) (string, error) {
	base := strings.TrimSpace(name)

	taken, err := s.users.ExistsByUsername(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:6], nil
}

func (s *AuthService) issueSession(u *user.User) (*Session, error) {
	access, err := s.tokens.GenerateAccessToken(u.ID, u.Role, u.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.expiresIn(),
	}, nil
}

func (s *AuthService) expiresIn() int {
	return int(s.tokens.AccessTokenTTL() / time.Second)
}
