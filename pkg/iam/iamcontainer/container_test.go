package iamcontainer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/authcore/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/authcore/pkg/notifx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*auth.FederatedIdentity

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) *auth.FederatedIdentity {
	return s[idToken]
}

type outbox struct {
	mu   sync.Mutex
	sent []notifx.EmailMessage
}

func (o *outbox) SendEmail(_ context.Context, msg notifx.EmailMessage, _ ...notifx.Option) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

var magicLinkPattern = regexp.MustCompile(`http://localhost:3000/auth/magic-link\?token=(\S+)`)

func (o *outbox) magicToken(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)

	match := magicLinkPattern.FindStringSubmatch(o.sent[len(o.sent)-1].TextBody)
	require.Len(t, match, 2)
	token, err := url.QueryUnescape(match[1])
	require.NoError(t, err)
	return token
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			AppName:             "authcore",
			FrontendURL:         "http://localhost:3000",
			ExternalCallTimeout: time.Second,
		},
		Auth: config.AuthConfig{
			AccessSecret:    "access-secret",
			RefreshSecret:   "refresh-secret",
			Issuer:          "authcore",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			MagicLinkTTL:    15 * time.Minute,
			BcryptCost:      4,
		},
	}
}

func newApp(t *testing.T) (*fiber.App, *outbox) {
	t.Helper()
	mail := &outbox{}

	verifier := stubVerifier{
		"google-bob": {
			Provider:      iam.OAuthProviderGoogle,
			SubjectID:     "g-bob",
			Email:         "bob@x.com",
			Name:          "bob",
			EmailVerified: true,
		},
	}

	c, err := iamcontainer.New(iamcontainer.Deps{
		Users:    userinfra.NewMemoryUserRepository(),
		Notifier: notifx.NewClient(mail, notifx.WithDefaultFrom("noreply@authcore.test")),
		Verifier: verifier,
		Cfg:      testConfig(),
	})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: errx.FiberErrorHandler})
	c.RegisterRoutes(app.Group("/api"))
	return app, mail
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestPasswordAccountLifecycle(t *testing.T) {
	app, mail := newApp(t)

	status, body := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName": "alice",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "User created successfully", body["message"])
	created := body["user"].(map[string]any)
	assert.Equal(t, "alice", created["userName"])
	assert.Equal(t, "user", created["role"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "passwordHash")

	status, body = call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName": "alice",
		"email":    "alice2@x.com",
		"password": "pw2",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_IDENTITY", body["error"])

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"userName": "alice",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Login successful", body["message"])
	assert.EqualValues(t, 3600, body["expiresIn"])
	token, _ := body["token"].(string)
	refresh, _ := body["refreshToken"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, refresh)
	assert.Equal(t, map[string]any{"userName": "alice", "email": "a@x.com", "role": "user"}, body["user"])

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"userName": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid password!", body["message"])
	assert.Equal(t, "INVALID_CREDENTIALS", body["error"])
	assert.Equal(t, false, body["success"])

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"userName": "nobody",
		"password": "pw123456",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found!", body["message"])

	status, body = call(t, app, http.MethodGet, "/api/users/admin", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", body["error"])

	status, body = call(t, app, http.MethodGet, "/api/users/user", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User route accessed successfully!", body["message"])

	status, body = call(t, app, http.MethodGet, "/api/users/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "NO_TOKEN", body["error"])

	status, body = call(t, app, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	status, body = call(t, app, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
		"refreshToken": token,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", body["error"])

	status, body = call(t, app, http.MethodPost, "/api/auth/generate-magic-link", "", map[string]string{
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Magic link sent to your email", body["message"])

	magic := mail.magicToken(t)
	status, body = call(t, app, http.MethodGet, "/api/auth/verify-magic-link?token="+url.QueryEscape(magic), "", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Magic link login successful", body["message"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.Equal(t, map[string]any{"userName": "alice", "email": "a@x.com", "role": "user"}, body["user"])

	status, body = call(t, app, http.MethodGet, "/api/auth/verify-magic-link", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TOKEN", body["error"])
}

func TestManagerRoutes(t *testing.T) {
	app, _ := newApp(t)

	status, _ := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName": "mia",
		"email":    "mia@x.com",
		"password": "pw",
		"role":     "manager",
	})
	require.Equal(t, http.StatusCreated, status)

	_, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "mia@x.com",
		"password": "pw",
	})
	token := body["token"].(string)

	status, _ = call(t, app, http.MethodGet, "/api/users/manager", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/users/user", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/users/admin", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestGoogleLoginOverHTTP(t *testing.T) {
	app, _ := newApp(t)

	status, first := call(t, app, http.MethodPost, "/api/auth/google", "", map[string]string{"idToken": "google-bob"})
	require.Equal(t, http.StatusOK, status, first)
	assert.Equal(t, "Google login successful", first["message"])

	status, second := call(t, app, http.MethodPost, "/api/auth/google", "", map[string]string{"idToken": "google-bob"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first["user"], second["user"])

	status, body := call(t, app, http.MethodPost, "/api/auth/google", "", map[string]string{"idToken": "forged"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_GOOGLE_TOKEN", body["error"])

	status, body = call(t, app, http.MethodPost, "/api/auth/google", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ID_TOKEN_REQUIRED", body["error"])
}
