// Package workflow drives the form-record state machine: open on submission,
// pending_action once a management action attaches, closed terminally.
// Findings live here too but have no machine; they are append plus gallery.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

type Engine struct {
	records  repositories.FormRecordRepository
	actions  repositories.ManagementActionRepository
	findings repositories.FindingRepository
	formats  repositories.FormatRepository
	users    repositories.UserRepository
	logger   zerolog.Logger
}

func NewEngine(records repositories.FormRecordRepository, actions repositories.ManagementActionRepository, findings repositories.FindingRepository, formats repositories.FormatRepository, users repositories.UserRepository, logger zerolog.Logger) *Engine {
	return &Engine{
		records:  records,
		actions:  actions,
		findings: findings,
		formats:  formats,
		users:    users,
		logger:   logger.With().Str("component", "workflow").Logger(),
	}
}

// canTransition is the single place the machine's edges are defined. A
// record in pending_action may take further actions without changing state.
func canTransition(from, to string) bool {
	switch from {
	case models.RecordOpen:
		return to == models.RecordPendingAction || to == models.RecordClosed
	case models.RecordPendingAction:
		return to == models.RecordPendingAction || to == models.RecordClosed
	default:
		return false
	}
}

type SubmitRequest struct {
	FormatID uuid.UUID      `json:"format_id"`
	Email    string         `json:"email"`
	Values   map[string]any `json:"values"`
}

// Submit creates a FormRecord in open state and returns its id. The format
// name is denormalized into the record so it survives template deletion.
func (e *Engine) Submit(ctx context.Context, h store.Handle, req *SubmitRequest) (uuid.UUID, error) {
	const op = "workflow.Submit"

	if req.FormatID == uuid.Nil {
		return uuid.Nil, apperrors.Invalid(op, "format id is required")
	}

	user, err := e.users.GetByEmail(ctx, h, req.Email)
	if err != nil {
		return uuid.Nil, err
	}

	format, err := e.formats.GetByID(ctx, h, req.FormatID)
	if err != nil {
		if apperrors.ErrorCode(err) == apperrors.ENotFound {
			return uuid.Nil, apperrors.Invalid(op, "unknown format")
		}
		return uuid.Nil, err
	}

	record := &models.FormRecord{
		FormatID:    format.ID,
		FormatName:  format.Name,
		ClientID:    user.ClientID,
		SubmittedBy: user.Email,
		Values:      req.Values,
		Status:      models.RecordOpen,
		CreatedAt:   time.Now(),
	}
	if err := e.records.Create(ctx, h, record); err != nil {
		return uuid.Nil, err
	}

	e.logger.Info().Str("record", record.ID.String()).Str("format", format.Name).Msg("form record submitted")
	return record.ID, nil
}

// ListPending returns every record in open or pending_action visible to the
// caller: admins see all, supervisors their client, field workers their own
// submissions.
func (e *Engine) ListPending(ctx context.Context, h store.Handle, email string) ([]models.FormRecord, error) {
	user, err := e.users.GetByEmail(ctx, h, email)
	if err != nil {
		return nil, err
	}

	open, err := e.records.ListByStatus(ctx, h, models.RecordOpen)
	if err != nil {
		return nil, err
	}
	pending, err := e.records.ListByStatus(ctx, h, models.RecordPendingAction)
	if err != nil {
		return nil, err
	}

	all := append(open, pending...)
	visible := make([]models.FormRecord, 0, len(all))
	for _, r := range all {
		switch user.Role {
		case models.RoleAdmin:
			visible = append(visible, r)
		case models.RoleSupervisor:
			if r.ClientID == user.ClientID {
				visible = append(visible, r)
			}
		default:
			if r.SubmittedBy == user.Email {
				visible = append(visible, r)
			}
		}
	}
	return visible, nil
}

type ActionRequest struct {
	RecordID    uuid.UUID `json:"record_id"`
	Description string    `json:"description"`
	Responsible string    `json:"responsible"`
	DueDate     time.Time `json:"due_date"`
	Completed   bool      `json:"completed"`
	Email       string    `json:"email"` // recording user
}

// RecordManagementAction attaches a follow-up to a record and moves it to
// pending_action. When the action arrives already completed the record
// closes in the same call, saving the extra round trip; both paths go
// through the same transition check.
func (e *Engine) RecordManagementAction(ctx context.Context, h store.Handle, req *ActionRequest) (*models.FormRecord, error) {
	const op = "workflow.RecordManagementAction"

	if req.Description == "" {
		return nil, apperrors.Invalid(op, "action description is required")
	}

	record, err := e.records.GetByID(ctx, h, req.RecordID)
	if err != nil {
		return nil, err
	}

	target := models.RecordPendingAction
	if req.Completed {
		target = models.RecordClosed
	}
	if !canTransition(record.Status, target) {
		return nil, apperrors.Conflict(op, "record does not accept management actions in its current state")
	}

	action := &models.ManagementAction{
		RecordID:    record.ID,
		Description: req.Description,
		Responsible: req.Responsible,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
		CreatedBy:   req.Email,
		CreatedAt:   time.Now(),
	}
	if err := e.actions.Create(ctx, h, action); err != nil {
		return nil, err
	}

	if req.Completed {
		closure := &models.Closure{
			ClosedBy: req.Email,
			ClosedAt: time.Now(),
			Outcome:  "resolved",
			Notes:    req.Description,
		}
		if err := e.records.SetClosure(ctx, h, record.ID, closure); err != nil {
			return nil, err
		}
		record.Status = models.RecordClosed
		record.Closure = closure
	} else {
		if err := e.records.SetStatus(ctx, h, record.ID, models.RecordPendingAction); err != nil {
			return nil, err
		}
		record.Status = models.RecordPendingAction
	}

	e.logger.Info().Str("record", record.ID.String()).Bool("auto_closed", req.Completed).Msg("management action recorded")
	return record, nil
}

type CloseRequest struct {
	RecordID uuid.UUID `json:"record_id"`
	Email    string    `json:"email"` // closer
	Outcome  string    `json:"outcome"`
	Notes    string    `json:"notes,omitempty"`
}

// Close sets the terminal state. Closing an already-closed record returns
// the existing closure unchanged; workflows must tolerate duplicate submit
// clicks.
func (e *Engine) Close(ctx context.Context, h store.Handle, req *CloseRequest) (*models.Closure, error) {
	const op = "workflow.Close"

	record, err := e.records.GetByID(ctx, h, req.RecordID)
	if err != nil {
		return nil, err
	}

	if record.Status == models.RecordClosed {
		if record.Closure == nil {
			return nil, apperrors.Internal(op, apperrors.Conflict(op, "closed record without closure"))
		}
		return record.Closure, nil
	}
	if !canTransition(record.Status, models.RecordClosed) {
		return nil, apperrors.Conflict(op, "record cannot be closed from its current state")
	}

	closure := &models.Closure{
		ClosedBy: req.Email,
		ClosedAt: time.Now(),
		Outcome:  req.Outcome,
		Notes:    req.Notes,
	}
	if err := e.records.SetClosure(ctx, h, record.ID, closure); err != nil {
		return nil, err
	}

	e.logger.Info().Str("record", record.ID.String()).Str("outcome", closure.Outcome).Msg("form record closed")
	return closure, nil
}

type FindingRequest struct {
	Email       string   `json:"email"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Location    string   `json:"location,omitempty"`
	PhotoKeys   []string `json:"photo_keys,omitempty"`
}

// SaveFinding is an independent append; findings are terminal at creation.
func (e *Engine) SaveFinding(ctx context.Context, h store.Handle, req *FindingRequest) (*models.Finding, error) {
	const op = "workflow.SaveFinding"

	if req.Description == "" {
		return nil, apperrors.Invalid(op, "finding description is required")
	}

	user, err := e.users.GetByEmail(ctx, h, req.Email)
	if err != nil {
		return nil, err
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityLow
	}

	finding := &models.Finding{
		ClientID:    user.ClientID,
		ReportedBy:  user.Email,
		Description: req.Description,
		Severity:    severity,
		Location:    req.Location,
		PhotoKeys:   req.PhotoKeys,
		CreatedAt:   time.Now(),
	}
	if err := e.findings.Create(ctx, h, finding); err != nil {
		return nil, err
	}
	return finding, nil
}

// ListFindingsGallery returns all findings for admin review, newest first.
func (e *Engine) ListFindingsGallery(ctx context.Context, h store.Handle) ([]models.Finding, error) {
	return e.findings.ListNewestFirst(ctx, h)
}

// ListActions returns the follow-ups attached to a record.
func (e *Engine) ListActions(ctx context.Context, h store.Handle, recordID uuid.UUID) ([]models.ManagementAction, error) {
	return e.actions.ListByRecord(ctx, h, recordID)
}
