package errx_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRegistry = errx.NewRegistry("TEST")

var (
	codeMissing = testRegistry.Register("FIELD_MISSING", errx.TypeValidation, http.StatusBadRequest, "Field is missing")
	codeBroken  = testRegistry.Register("STORE_BROKEN", errx.TypeInternal, http.StatusInternalServerError, "Store unavailable")
)

func TestRegistry_CodesAreUnprefixed(t *testing.T) {
	e := testRegistry.New(codeMissing)

	assert.Equal(t, "FIELD_MISSING", e.Code)
	assert.Equal(t, "TEST", e.Module)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus)

	got, ok := testRegistry.Get("FIELD_MISSING")
	require.True(t, ok)
	assert.Same(t, codeMissing, got)
}

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := errx.Wrap(testRegistry.New(codeMissing), "outer", errx.TypeInternal)

	assert.True(t, errors.Is(wrapped, testRegistry.New(codeMissing)))
	assert.True(t, errx.HasCode(wrapped, codeMissing))
	assert.False(t, errx.HasCode(wrapped, codeBroken))
	assert.Equal(t, http.StatusBadRequest, wrapped.HTTPStatus)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, errx.Wrap(nil, "nothing", errx.TypeInternal))
}

func newApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errx.FiberErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func decode(t *testing.T, resp *http.Response) errx.Response {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out errx.Response
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestFiberErrorHandler_ClientError(t *testing.T) {
	app := newApp(testRegistry.New(codeMissing).WithDetail("field", "email"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.Equal(t, "FIELD_MISSING", out.Code)
	assert.Equal(t, "Field is missing", out.Message)
	assert.Equal(t, "email", out.Details["field"])
}

func TestFiberErrorHandler_ServerErrorHidesCause(t *testing.T) {
	app := newApp(testRegistry.NewWithCause(codeBroken, errors.New("dial tcp 10.0.0.3: refused")).
		WithDetail("host", "10.0.0.3"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	out := decode(t, resp)
	assert.Equal(t, "STORE_BROKEN", out.Code)
	assert.Equal(t, "Store unavailable", out.Message)
	assert.Empty(t, out.Details)
}

func TestFiberErrorHandler_UnknownError(t *testing.T) {
	app := newApp(errors.New("boom"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	out := decode(t, resp)
	assert.Equal(t, "INTERNAL_ERROR", out.Code)
	assert.NotContains(t, out.Message, "boom")
}
