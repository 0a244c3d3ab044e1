// Package handlers is the thin echo boundary. It parses payloads, pulls the
// tenant handle and caller from the request context, calls into the core and
// renders typed results or errors. No business logic lives here.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/apperrors"
	"sstcore/internal/store"
	"sstcore/internal/tenancy"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusFor(code string) int {
	switch code {
	case apperrors.ENotFound:
		return http.StatusNotFound
	case apperrors.EConflict:
		return http.StatusConflict
	case apperrors.EInvalid:
		return http.StatusBadRequest
	case apperrors.EUnauthorized:
		return http.StatusUnauthorized
	case apperrors.EUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// renderError maps core errors onto HTTP. Storage failures are the boundary's
// responsibility to log; recoverable codes pass through for the UI to render.
func renderError(c echo.Context, logger zerolog.Logger, err error) error {
	code := apperrors.ErrorCode(err)
	if code == apperrors.EUnavailable || code == apperrors.EInternal {
		logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = apperrors.ErrorMessage(err)
	return c.JSON(statusFor(code), body)
}

// scope extracts the per-request tenant handle and caller placed by the auth
// middleware.
func scope(c echo.Context) (store.Handle, tenancy.Caller, error) {
	ctx := c.Request().Context()
	h, ok := tenancy.HandleFromContext(ctx)
	if !ok {
		return store.Handle{}, tenancy.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "no tenant scope")
	}
	caller, ok := tenancy.CallerFromContext(ctx)
	if !ok {
		return store.Handle{}, tenancy.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return h, caller, nil
}
