package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/analytics"
)

type MetricsHandlers struct {
	analytics *analytics.Service
	logger    zerolog.Logger
}

func NewMetricsHandlers(svc *analytics.Service, logger zerolog.Logger) *MetricsHandlers {
	return &MetricsHandlers{analytics: svc, logger: logger.With().Str("component", "metrics").Logger()}
}

// windowFromQuery reads optional from/to bounds in RFC 3339. Absent values
// stay zero; the analytics layer resolves the defaults.
func windowFromQuery(c echo.Context) (analytics.Window, error) {
	var w analytics.Window
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return w, echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
		}
		w.From = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return w, echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
		}
		w.To = t
	}
	return w, nil
}

func (h *MetricsHandlers) SupervisorMetrics(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	window, err := windowFromQuery(c)
	if err != nil {
		return err
	}
	report, err := h.analytics.SupervisorMetrics(c.Request().Context(), handle, window)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *MetricsHandlers) PerformanceReport(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	window, err := windowFromQuery(c)
	if err != nil {
		return err
	}
	report, err := h.analytics.PerformanceReport(c.Request().Context(), handle, window)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, report)
}
