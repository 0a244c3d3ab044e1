package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

type AttendanceServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	handle store.Handle
	svc    AttendanceService
}

func (s *AttendanceServiceTestSuite) SetupTest() {
	s.ctx = context.Background()

	handle, err := store.NewHandle(uuid.New())
	s.Require().NoError(err)
	s.handle = handle

	mem := store.NewMemory()
	users := repositories.NewUserRepo(mem)
	entries := repositories.NewAttendanceRepo(mem)
	s.svc = NewAttendanceService(entries, users, zerolog.Nop())

	err = users.Create(s.ctx, s.handle, &models.User{
		Email: "ana@acme.co", Name: "Ana", Role: models.RoleField, Active: true, ClientID: uuid.New(),
	})
	s.Require().NoError(err)
}

func (s *AttendanceServiceTestSuite) TestCheckInThenStatus() {
	status, err := s.svc.GetStatus(s.ctx, s.handle, "ana@acme.co")
	s.Require().NoError(err)
	s.False(status.CheckedIn)

	entry, err := s.svc.CheckIn(s.ctx, s.handle, &CheckInRequest{Email: "ana@acme.co", Location: "Obra 14"})
	s.Require().NoError(err)
	s.True(entry.Open())
	s.Equal("Obra 14", entry.Location)

	status, err = s.svc.GetStatus(s.ctx, s.handle, "ana@acme.co")
	s.Require().NoError(err)
	s.True(status.CheckedIn)
	s.Require().NotNil(status.Entry)
	s.Equal(entry.ID, status.Entry.ID)
}

func (s *AttendanceServiceTestSuite) TestDoubleCheckInConflicts() {
	_, err := s.svc.CheckIn(s.ctx, s.handle, &CheckInRequest{Email: "ana@acme.co"})
	s.Require().NoError(err)

	_, err = s.svc.CheckIn(s.ctx, s.handle, &CheckInRequest{Email: "ana@acme.co"})
	s.Equal(apperrors.EConflict, apperrors.ErrorCode(err))
}

func (s *AttendanceServiceTestSuite) TestCheckOutWithoutOpenEntryConflicts() {
	_, err := s.svc.CheckOut(s.ctx, s.handle, "ana@acme.co")
	s.Equal(apperrors.EConflict, apperrors.ErrorCode(err))
}

func (s *AttendanceServiceTestSuite) TestCheckOutClosesEntry() {
	_, err := s.svc.CheckIn(s.ctx, s.handle, &CheckInRequest{Email: "ana@acme.co"})
	s.Require().NoError(err)

	entry, err := s.svc.CheckOut(s.ctx, s.handle, "ana@acme.co")
	s.Require().NoError(err)
	s.False(entry.Open())

	// A fresh span can start after the previous one closed.
	_, err = s.svc.CheckIn(s.ctx, s.handle, &CheckInRequest{Email: "ana@acme.co"})
	s.Require().NoError(err)
}

func (s *AttendanceServiceTestSuite) TestCheckInUnknownUser() {
	_, err := s.svc.CheckIn(s.ctx, s.handle, &CheckInRequest{Email: "ghost@acme.co"})
	s.Equal(apperrors.ENotFound, apperrors.ErrorCode(err))
}

func TestAttendanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AttendanceServiceTestSuite))
}
