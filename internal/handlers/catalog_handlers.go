package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/services"
)

type CatalogHandlers struct {
	catalog services.CatalogService
	logger  zerolog.Logger
}

func NewCatalogHandlers(catalog services.CatalogService, logger zerolog.Logger) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, logger: logger.With().Str("component", "catalog").Logger()}
}

func (h *CatalogHandlers) ListRegisteredClients(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	clients, err := h.catalog.ListRegisteredClients(c.Request().Context(), handle)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, clients)
}

func (h *CatalogHandlers) ListClientsForAdmin(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	clients, err := h.catalog.ListClientsForAdmin(c.Request().Context(), handle)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// clientSavePayload is the wire shape the UI sends: the presence of id
// decides create vs update. It is resolved into the tagged variant here,
// once, so the service never sees the ambiguity.
type clientSavePayload struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	NIT          string `json:"nit"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Active       *bool  `json:"active,omitempty"`
}

func (h *CatalogHandlers) SaveClient(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}

	var payload clientSavePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	var save services.ClientSave
	if payload.ID == "" {
		save.Create = &services.ClientCreate{
			Name:         payload.Name,
			NIT:          payload.NIT,
			ContactName:  payload.ContactName,
			ContactEmail: payload.ContactEmail,
		}
	} else {
		id, err := uuid.Parse(payload.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
		}
		active := true
		if payload.Active != nil {
			active = *payload.Active
		}
		save.Update = &services.ClientUpdate{
			ID:           id,
			Name:         payload.Name,
			NIT:          payload.NIT,
			ContactName:  payload.ContactName,
			ContactEmail: payload.ContactEmail,
			Active:       active,
		}
	}

	client, err := h.catalog.SaveClient(c.Request().Context(), handle, save)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	status := http.StatusOK
	if save.Create != nil {
		status = http.StatusCreated
	}
	return c.JSON(status, client)
}

func (h *CatalogHandlers) DeleteClient(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}
	if err := h.catalog.DeleteClient(c.Request().Context(), handle, id); err != nil {
		return renderError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandlers) ListFormatsByClient(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}
	formats, err := h.catalog.ListFormatsByClient(c.Request().Context(), handle, clientID)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, formats)
}

func (h *CatalogHandlers) ListFormatsForAdmin(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	formats, err := h.catalog.ListFormatsForAdmin(c.Request().Context(), handle)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, formats)
}

// ListMyFormats lists the formats visible to the calling user.
func (h *CatalogHandlers) ListMyFormats(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}
	formats, err := h.catalog.ListFormatsForUser(c.Request().Context(), handle, caller.Email)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, formats)
}

func (h *CatalogHandlers) CreateFormat(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}

	var req services.FormatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	format, err := h.catalog.CreateFormat(c.Request().Context(), handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, format)
}

func (h *CatalogHandlers) UpdateFormat(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid format id")
	}

	var req services.FormatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	format, err := h.catalog.UpdateFormat(c.Request().Context(), handle, id, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, format)
}

func (h *CatalogHandlers) DeleteFormat(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid format id")
	}
	if err := h.catalog.DeleteFormat(c.Request().Context(), handle, id); err != nil {
		return renderError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
