package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/caching"
)

type AdminHandlers struct {
	cache  caching.CacheService
	logger zerolog.Logger
}

func NewAdminHandlers(cache caching.CacheService, logger zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{cache: cache, logger: logger.With().Str("component", "admin").Logger()}
}

// InvalidateCache drops every cached entry for the calling tenant. Used
// after bulk data corrections done outside the API.
func (h *AdminHandlers) InvalidateCache(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	if err := h.cache.InvalidateTenant(c.Request().Context(), handle.TenantID()); err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cache invalidated"})
}

func (h *AdminHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
