package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sstcore/internal/apperrors"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(apperrors.ENotFound))
	assert.Equal(t, http.StatusConflict, statusFor(apperrors.EConflict))
	assert.Equal(t, http.StatusBadRequest, statusFor(apperrors.EInvalid))
	assert.Equal(t, http.StatusUnauthorized, statusFor(apperrors.EUnauthorized))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(apperrors.EUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperrors.EInternal))
	assert.Equal(t, http.StatusInternalServerError, statusFor("something else"))
}

func TestRenderErrorBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := renderError(c, zerolog.Nop(), apperrors.Conflict("test.Op", "record does not accept management actions in its current state"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.EConflict, body.Error.Code)
	assert.Equal(t, "record does not accept management actions in its current state", body.Error.Message)
}

func TestScopeWithoutAuthContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_, _, err := scope(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
