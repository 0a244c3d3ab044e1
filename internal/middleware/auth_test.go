package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sstcore/internal/models"
	"sstcore/internal/tenancy"
)

const testSecret = "test-secret"

type stubRegistry struct {
	tenant *models.Tenant
}

func (s *stubRegistry) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenant, nil
}

func signedToken(t *testing.T, method jwt.SigningMethod, tenantID uuid.UUID) string {
	t.Helper()
	claims := Claims{
		TenantID: tenantID.String(),
		Role:     models.RoleAdmin,
		Name:     "Root",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin@t.co",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runAuth(t *testing.T, token string) (int, bool) {
	t.Helper()

	tenantID := uuid.New()
	router := tenancy.NewRouter(&stubRegistry{tenant: &models.Tenant{
		ID: tenantID, Status: models.TenantActive,
	}}, zerolog.Nop())

	// Re-sign with the real tenant id so valid tokens resolve.
	if token == "" {
		token = signedToken(t, jwt.SigningMethodHS256, tenantID)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := Auth(router, testSecret)(func(c echo.Context) error {
		reached = true
		_, ok := tenancy.CallerFromContext(c.Request().Context())
		assert.True(t, ok)
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	if err != nil {
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		return httpErr.Code, reached
	}
	return rec.Code, reached
}

func TestAuthAcceptsHS256(t *testing.T) {
	code, reached := runAuth(t, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, reached)
}

// Tokens signed with any method other than HS256 are rejected even when the
// signature verifies under the shared secret.
func TestAuthRejectsOtherSigningMethods(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS512, uuid.New())
	code, reached := runAuth(t, token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	router := tenancy.NewRouter(&stubRegistry{tenant: &models.Tenant{
		ID: uuid.New(), Status: models.TenantActive,
	}}, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Auth(router, testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
