package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

type EngineTestSuite struct {
	suite.Suite
	ctx      context.Context
	handle   store.Handle
	users    repositories.UserRepository
	formats  repositories.FormatRepository
	records  repositories.FormRecordRepository
	engine   *Engine
	clientID uuid.UUID
	formatID uuid.UUID
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()

	handle, err := store.NewHandle(uuid.New())
	s.Require().NoError(err)
	s.handle = handle

	mem := store.NewMemory()
	s.users = repositories.NewUserRepo(mem)
	s.formats = repositories.NewFormatRepo(mem)
	s.records = repositories.NewFormRecordRepo(mem)
	actions := repositories.NewManagementActionRepo(mem)
	findings := repositories.NewFindingRepo(mem)
	s.engine = NewEngine(s.records, actions, findings, s.formats, s.users, zerolog.Nop())

	s.clientID = uuid.New()
	s.Require().NoError(s.users.Create(s.ctx, s.handle, &models.User{
		Email: "field@acme.co", Name: "Ana", Role: models.RoleField, Active: true, ClientID: s.clientID,
	}))
	s.Require().NoError(s.users.Create(s.ctx, s.handle, &models.User{
		Email: "super@acme.co", Name: "Luis", Role: models.RoleSupervisor, Active: true, ClientID: s.clientID,
	}))
	s.Require().NoError(s.users.Create(s.ctx, s.handle, &models.User{
		Email: "admin@acme.co", Name: "Root", Role: models.RoleAdmin, Active: true, ClientID: uuid.New(),
	}))

	format := &models.Format{
		ClientID: s.clientID,
		Name:     "Inspección de andamios",
		Active:   true,
	}
	s.Require().NoError(s.formats.Create(s.ctx, s.handle, format))
	s.formatID = format.ID
}

func (s *EngineTestSuite) submit() uuid.UUID {
	id, err := s.engine.Submit(s.ctx, s.handle, &SubmitRequest{
		FormatID: s.formatID,
		Email:    "field@acme.co",
		Values:   map[string]any{"estado": "con observaciones"},
	})
	s.Require().NoError(err)
	return id
}

func (s *EngineTestSuite) TestSubmitOpensRecord() {
	id := s.submit()

	record, err := s.records.GetByID(s.ctx, s.handle, id)
	s.Require().NoError(err)
	s.Equal(models.RecordOpen, record.Status)
	s.Equal("Inspección de andamios", record.FormatName)
	s.Equal(s.clientID, record.ClientID)
	s.Equal("field@acme.co", record.SubmittedBy)
}

func (s *EngineTestSuite) TestSubmitUnknownFormat() {
	_, err := s.engine.Submit(s.ctx, s.handle, &SubmitRequest{
		FormatID: uuid.New(),
		Email:    "field@acme.co",
	})
	s.Equal(apperrors.EInvalid, apperrors.ErrorCode(err))
}

func (s *EngineTestSuite) TestFullLifecycle() {
	id := s.submit()

	record, err := s.engine.RecordManagementAction(s.ctx, s.handle, &ActionRequest{
		RecordID:    id,
		Description: "Reponer barandas faltantes",
		Responsible: "Luis",
		DueDate:     time.Now().Add(72 * time.Hour),
		Email:       "super@acme.co",
	})
	s.Require().NoError(err)
	s.Equal(models.RecordPendingAction, record.Status)

	// A pending record accepts further actions without changing state.
	record, err = s.engine.RecordManagementAction(s.ctx, s.handle, &ActionRequest{
		RecordID:    id,
		Description: "Verificar anclajes",
		Email:       "super@acme.co",
	})
	s.Require().NoError(err)
	s.Equal(models.RecordPendingAction, record.Status)

	actions, err := s.engine.ListActions(s.ctx, s.handle, id)
	s.Require().NoError(err)
	s.Len(actions, 2)

	closure, err := s.engine.Close(s.ctx, s.handle, &CloseRequest{
		RecordID: id,
		Email:    "super@acme.co",
		Outcome:  "resolved",
		Notes:    "Barandas repuestas",
	})
	s.Require().NoError(err)
	s.Equal("super@acme.co", closure.ClosedBy)

	// Closing again returns the same closure, not an error.
	again, err := s.engine.Close(s.ctx, s.handle, &CloseRequest{
		RecordID: id,
		Email:    "admin@acme.co",
		Outcome:  "other",
	})
	s.Require().NoError(err)
	s.Equal(closure.ClosedBy, again.ClosedBy)
	s.Equal(closure.Outcome, again.Outcome)
}

func (s *EngineTestSuite) TestCompletedActionAutoCloses() {
	id := s.submit()

	record, err := s.engine.RecordManagementAction(s.ctx, s.handle, &ActionRequest{
		RecordID:    id,
		Description: "Señalizar zona, corregido en sitio",
		Completed:   true,
		Email:       "super@acme.co",
	})
	s.Require().NoError(err)
	s.Equal(models.RecordClosed, record.Status)
	s.Require().NotNil(record.Closure)
	s.Equal("resolved", record.Closure.Outcome)
	s.Equal("super@acme.co", record.Closure.ClosedBy)
}

func (s *EngineTestSuite) TestActionOnClosedRecordConflicts() {
	id := s.submit()
	_, err := s.engine.Close(s.ctx, s.handle, &CloseRequest{RecordID: id, Email: "super@acme.co", Outcome: "resolved"})
	s.Require().NoError(err)

	_, err = s.engine.RecordManagementAction(s.ctx, s.handle, &ActionRequest{
		RecordID:    id,
		Description: "Demasiado tarde",
		Email:       "super@acme.co",
	})
	s.Equal(apperrors.EConflict, apperrors.ErrorCode(err))
}

// A record stays listable and closable after its format template is deleted;
// the format name was denormalized at submission.
func (s *EngineTestSuite) TestRecordSurvivesFormatDeletion() {
	id := s.submit()
	s.Require().NoError(s.formats.Delete(s.ctx, s.handle, s.formatID))

	pending, err := s.engine.ListPending(s.ctx, s.handle, "admin@acme.co")
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("Inspección de andamios", pending[0].FormatName)

	_, err = s.engine.Close(s.ctx, s.handle, &CloseRequest{RecordID: id, Email: "super@acme.co", Outcome: "resolved"})
	s.Require().NoError(err)
}

func (s *EngineTestSuite) TestPendingVisibilityByRole() {
	s.submit()

	// A second field worker for another client.
	otherClient := uuid.New()
	s.Require().NoError(s.users.Create(s.ctx, s.handle, &models.User{
		Email: "other@acme.co", Role: models.RoleField, Active: true, ClientID: otherClient,
	}))

	adminView, err := s.engine.ListPending(s.ctx, s.handle, "admin@acme.co")
	s.Require().NoError(err)
	s.Len(adminView, 1)

	superView, err := s.engine.ListPending(s.ctx, s.handle, "super@acme.co")
	s.Require().NoError(err)
	s.Len(superView, 1)

	ownView, err := s.engine.ListPending(s.ctx, s.handle, "field@acme.co")
	s.Require().NoError(err)
	s.Len(ownView, 1)

	otherView, err := s.engine.ListPending(s.ctx, s.handle, "other@acme.co")
	s.Require().NoError(err)
	s.Empty(otherView)
}

func (s *EngineTestSuite) TestSaveFindingDefaultsSeverity() {
	finding, err := s.engine.SaveFinding(s.ctx, s.handle, &FindingRequest{
		Email:       "field@acme.co",
		Description: "Extintor vencido en bodega",
	})
	s.Require().NoError(err)
	s.Equal(models.SeverityLow, finding.Severity)
	s.Equal(s.clientID, finding.ClientID)

	gallery, err := s.engine.ListFindingsGallery(s.ctx, s.handle)
	s.Require().NoError(err)
	s.Len(gallery, 1)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
