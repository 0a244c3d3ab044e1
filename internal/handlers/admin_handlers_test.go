package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sstcore/internal/caching"
	"sstcore/internal/models"
	"sstcore/internal/store"
	"sstcore/internal/tenancy"
)

// scopedContext builds an echo context carrying the handle and caller the
// auth middleware would have placed.
func scopedContext(t *testing.T, e *echo.Echo, method, path string, handle store.Handle, caller tenancy.Caller) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	ctx := tenancy.WithHandle(req.Context(), handle)
	ctx = tenancy.WithCaller(ctx, caller)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestInvalidateCacheClearsTenantEntries(t *testing.T) {
	e := echo.New()
	cache := caching.NewMemory()
	h := NewAdminHandlers(cache, zerolog.Nop())

	tenantID := uuid.New()
	otherTenant := uuid.New()
	handle, err := store.NewHandle(tenantID)
	require.NoError(t, err)

	ctx := httptest.NewRequest(http.MethodPost, "/", nil).Context()
	require.NoError(t, cache.SetClients(ctx, tenantID, []models.Client{{Name: "Uno"}}, time.Minute))
	require.NoError(t, cache.SetProfile(ctx, tenantID, &models.Profile{Email: "ana@t.co"}, time.Minute))
	require.NoError(t, cache.SetClients(ctx, otherTenant, []models.Client{{Name: "Dos"}}, time.Minute))

	c, rec := scopedContext(t, e, http.MethodPost, "/api/admin/cache/invalidate", handle, tenancy.Caller{
		Email: "admin@t.co", Role: models.RoleAdmin,
	})
	require.NoError(t, h.InvalidateCache(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	clients, err := cache.GetClients(ctx, tenantID)
	require.NoError(t, err)
	assert.Nil(t, clients)
	profile, err := cache.GetProfile(ctx, tenantID, "ana@t.co")
	require.NoError(t, err)
	assert.Nil(t, profile)

	// Other tenants keep their entries.
	other, err := cache.GetClients(ctx, otherTenant)
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestInvalidateCacheWithoutScope(t *testing.T) {
	e := echo.New()
	h := NewAdminHandlers(caching.NewMemory(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.InvalidateCache(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
