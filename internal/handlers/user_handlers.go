package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/services"
)

type UserHandlers struct {
	identity services.IdentityService
	logger   zerolog.Logger
}

func NewUserHandlers(identity services.IdentityService, logger zerolog.Logger) *UserHandlers {
	return &UserHandlers{identity: identity, logger: logger.With().Str("component", "users").Logger()}
}

func (h *UserHandlers) List(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	users, err := h.identity.ListUsers(c.Request().Context(), handle)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) ClientsForUsers(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	clients, err := h.identity.ListClientsForUsers(c.Request().Context(), handle)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, clients)
}

func (h *UserHandlers) Create(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}

	var req services.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, err := h.identity.CreateUser(c.Request().Context(), handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	user.PasswordHash = ""
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) Update(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}

	var req services.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	req.Email = c.Param("email")

	user, err := h.identity.UpdateUser(c.Request().Context(), handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	user.PasswordHash = ""
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) Delete(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	if err := h.identity.DeleteUser(c.Request().Context(), handle, c.Param("email")); err != nil {
		return renderError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandlers) Get(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	user, err := h.identity.GetUser(c.Request().Context(), handle, c.Param("email"))
	if err != nil {
		return renderError(c, h.logger, err)
	}
	user.PasswordHash = ""
	return c.JSON(http.StatusOK, user)
}

// Me returns the active profile of the calling user, cached.
func (h *UserHandlers) Me(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}
	profile, err := h.identity.GetActiveUser(c.Request().Context(), handle, caller.Email)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, profile)
}
