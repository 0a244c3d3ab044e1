package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/services"
)

type AttendanceHandlers struct {
	attendance services.AttendanceService
	logger     zerolog.Logger
}

func NewAttendanceHandlers(attendance services.AttendanceService, logger zerolog.Logger) *AttendanceHandlers {
	return &AttendanceHandlers{attendance: attendance, logger: logger.With().Str("component", "attendance").Logger()}
}

func (h *AttendanceHandlers) Status(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}
	status, err := h.attendance.GetStatus(c.Request().Context(), handle, caller.Email)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *AttendanceHandlers) CheckIn(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}

	var req services.CheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	req.Email = caller.Email

	entry, err := h.attendance.CheckIn(c.Request().Context(), handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *AttendanceHandlers) CheckOut(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}
	entry, err := h.attendance.CheckOut(c.Request().Context(), handle, caller.Email)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *AttendanceHandlers) ListAll(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	entries, err := h.attendance.ListForAdmin(c.Request().Context(), handle)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, entries)
}
