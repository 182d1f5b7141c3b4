package authinfra

import (
	"context"
	"errors"
	"strconv"

	"github.com/Abraxas-365/authcore/pkg/iam"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"google.golang.org/api/idtoken"
)

// IDTokenValidator checks signature, expiry and audience of a Google ID
// token. *idtoken.Validator implements it.
type IDTokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleIdentityVerifier implements auth.IdentityVerifier for Google Sign-In
// The caller bounds the network round trip through ctx.
type GoogleIdentityVerifier struct {
	validator IDTokenValidator
	clientID  string
}

// NewGoogleIdentityVerifier builds a verifier backed by Google's public keys.
func NewGoogleIdentityVerifier(ctx context.Context, clientID string) (*GoogleIdentityVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, err
	}
	return NewGoogleIdentityVerifierWithValidator(v, clientID), nil
}

func NewGoogleIdentityVerifierWithValidator(v IDTokenValidator, clientID string) *GoogleIdentityVerifier {
	return &GoogleIdentityVerifier{validator: v, clientID: clientID}
}

var _ auth.IdentityVerifier = (*GoogleIdentityVerifier)(nil)

// VerifyIDToken returns nil unless the token is valid for our client id and
// asserts a verified email, a subject and a display name.
func (g *GoogleIdentityVerifier) VerifyIDToken(ctx context.Context, idToken string) *auth.FederatedIdentity {
	if g.clientID == "" {
		logx.Warn("google login attempted without GOOGLE_CLIENT_ID configured")
		return nil
	}

	payload, err := g.validator.Validate(ctx, idToken, g.clientID)
	if err != nil {
		logx.WithContext(ctx).WithError(err).Warn("google id token rejected")
		return nil
	}

	identity, err := identityFromPayload(payload)
	if err != nil {
		logx.WithContext(ctx).WithField("sub", payload.Subject).WithError(err).Warn("google id token incomplete")
		return nil
	}
	return identity
}

func identityFromPayload(p *idtoken.Payload) (*auth.FederatedIdentity, error) {
	email, _ := p.Claims["email"].(string)
	name, _ := p.Claims["name"].(string)

	switch {
	case !claimBool(p.Claims["email_verified"]):
		return nil, errors.New("email not verified")
	case p.Subject == "":
		return nil, errors.New("missing subject")
	case email == "":
		return nil, errors.New("missing email")
	case name == "":
		return nil, errors.New("missing name")
	}

	return &auth.FederatedIdentity{
		Provider:      iam.OAuthProviderGoogle,
		SubjectID:     p.Subject,
		Email:         email,
		Name:          name,
		EmailVerified: true,
	}, nil
}

// claimBool accepts both the boolean and the string form Google has used.
func claimBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	default:
		return false
	}
}
