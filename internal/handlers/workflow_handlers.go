package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"sstcore/internal/models"
	"sstcore/internal/services"
	"sstcore/internal/workflow"
)

const photoURLExpiry = 15 * time.Minute

type WorkflowHandlers struct {
	engine   *workflow.Engine
	evidence services.EvidenceService
	logger   zerolog.Logger
}

func NewWorkflowHandlers(engine *workflow.Engine, evidence services.EvidenceService, logger zerolog.Logger) *WorkflowHandlers {
	return &WorkflowHandlers{engine: engine, evidence: evidence, logger: logger.With().Str("component", "workflow").Logger()}
}

func (h *WorkflowHandlers) Submit(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}

	var req workflow.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	// Submissions are always attributed to the authenticated user.
	req.Email = caller.Email

	id, err := h.engine.Submit(c.Request().Context(), handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"record_id": id.String()})
}

func (h *WorkflowHandlers) ListPending(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}
	records, err := h.engine.ListPending(c.Request().Context(), handle, caller.Email)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *WorkflowHandlers) RecordAction(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}

	var req workflow.ActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	req.Email = caller.Email
	if id := c.Param("id"); id != "" {
		recordID, err := uuid.Parse(id)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
		}
		req.RecordID = recordID
	}

	record, err := h.engine.RecordManagementAction(c.Request().Context(), handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *WorkflowHandlers) ListActions(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	actions, err := h.engine.ListActions(c.Request().Context(), handle, recordID)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, actions)
}

func (h *WorkflowHandlers) Close(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}

	var req workflow.CloseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	req.Email = caller.Email
	if id := c.Param("id"); id != "" {
		recordID, err := uuid.Parse(id)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
		}
		req.RecordID = recordID
	}

	closure, err := h.engine.Close(c.Request().Context(), handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, closure)
}

// SaveFinding accepts multipart form data so the photo travels with the
// report in a single request from the field.
func (h *WorkflowHandlers) SaveFinding(c echo.Context) error {
	handle, caller, err := scope(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	req := workflow.FindingRequest{
		Email:       caller.Email,
		Description: c.FormValue("description"),
		Severity:    c.FormValue("severity"),
		Location:    c.FormValue("location"),
	}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, header := range form.File["photos"] {
			file, err := header.Open()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unreadable photo upload")
			}
			key, err := h.evidence.UploadPhoto(ctx, handle, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
			file.Close()
			if err != nil {
				return renderError(c, h.logger, err)
			}
			req.PhotoKeys = append(req.PhotoKeys, key)
		}
	}

	finding, err := h.engine.SaveFinding(ctx, handle, &req)
	if err != nil {
		return renderError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, finding)
}

type findingView struct {
	models.Finding
	PhotoURLs []string `json:"photo_urls,omitempty"`
}

// FindingsGallery returns findings newest first with short-lived presigned
// photo URLs for display.
func (h *WorkflowHandlers) FindingsGallery(c echo.Context) error {
	handle, _, err := scope(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	findings, err := h.engine.ListFindingsGallery(ctx, handle)
	if err != nil {
		return renderError(c, h.logger, err)
	}

	views := make([]findingView, 0, len(findings))
	for _, f := range findings {
		view := findingView{Finding: f}
		for _, key := range f.PhotoKeys {
			url, err := h.evidence.PhotoURL(ctx, handle, key, photoURLExpiry)
			if err != nil {
				h.logger.Warn().Err(err).Str("key", key).Msg("could not presign evidence photo")
				continue
			}
			view.PhotoURLs = append(view.PhotoURLs, url)
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, views)
}
