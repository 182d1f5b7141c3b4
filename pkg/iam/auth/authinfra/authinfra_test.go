package authinfra

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestBcrypt_HashAndVerify(t *testing.T) {
	svc := NewBcryptPasswordService(0)

	hash, err := svc.HashPassword("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, "pw123456", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))
	assert.True(t, svc.VerifyPassword("pw123456", hash))
	assert.False(t, svc.VerifyPassword("wrong", hash))
}

func TestBcrypt_MalformedHashIsMismatch(t *testing.T) {
	svc := NewBcryptPasswordService(10)

	assert.False(t, svc.VerifyPassword("pw", "not-a-hash"))
	assert.False(t, svc.VerifyPassword("pw", ""))
}

func TestBcrypt_TooLong(t *testing.T) {
	svc := NewBcryptPasswordService(10)

	_, err := svc.HashPassword(strings.Repeat("a", 73))
	assert.True(t, errx.HasCode(err, auth.CodePasswordTooLong))
}

type fakeValidator struct {
	payload  *idtoken.Payload
	err      error
	audience string
}

func (f *fakeValidator) Validate(_ context.Context, _ string, audience string) (*idtoken.Payload, error) {
	f.audience = audience
	return f.payload, f.err
}

func googlePayload(claims map[string]any) *idtoken.Payload {
	base := map[string]any{
		"email":          "g@x.com",
		"email_verified": true,
		"name":           "Gina",
	}
	for k, v := range claims {
		base[k] = v
	}
	return &idtoken.Payload{Subject: "sub-1", Claims: base}
}

func TestGoogleVerifier_Valid(t *testing.T) {
	v := &fakeValidator{payload: googlePayload(nil)}
	g := NewGoogleIdentityVerifierWithValidator(v, "client-id")

	id := g.VerifyIDToken(context.Background(), "tok")
	require.NotNil(t, id)
	assert.Equal(t, iam.OAuthProviderGoogle, id.Provider)
	assert.Equal(t, "sub-1", id.SubjectID)
	assert.Equal(t, "g@x.com", id.Email)
	assert.Equal(t, "Gina", id.Name)
	assert.Equal(t, "client-id", v.audience)
}

func TestGoogleVerifier_RejectsIncompleteOrInvalid(t *testing.T) {
	cases := map[string]*fakeValidator{
		"unverified email":  {payload: googlePayload(map[string]any{"email_verified": false})},
		"missing name":      {payload: googlePayload(map[string]any{"name": ""})},
		"missing email":     {payload: googlePayload(map[string]any{"email": nil})},
		"validation failed": {err: errors.New("audience mismatch")},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGoogleIdentityVerifierWithValidator(v, "client-id")
			assert.Nil(t, g.VerifyIDToken(context.Background(), "tok"))
		})
	}

	noSub := googlePayload(nil)
	noSub.Subject = ""
	g := NewGoogleIdentityVerifierWithValidator(&fakeValidator{payload: noSub}, "client-id")
	assert.Nil(t, g.VerifyIDToken(context.Background(), "tok"))
}

func TestGoogleVerifier_StringEmailVerified(t *testing.T) {
	v := &fakeValidator{payload: googlePayload(map[string]any{"email_verified": "true"})}
	g := NewGoogleIdentityVerifierWithValidator(v, "client-id")

	assert.NotNil(t, g.VerifyIDToken(context.Background(), "tok"))
}

func TestGoogleVerifier_NoClientID(t *testing.T) {
	g := NewGoogleIdentityVerifierWithValidator(&fakeValidator{payload: googlePayload(nil)}, "")
	assert.Nil(t, g.VerifyIDToken(context.Background(), "tok"))
}
