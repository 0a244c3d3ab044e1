package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

// AttendanceService tracks daily check-in spans. The invariant is one open
// entry per user: a second check-in without a check-out is a conflict, and
// so is a check-out with nothing open.
type AttendanceService interface {
	GetStatus(ctx context.Context, h store.Handle, email string) (*AttendanceStatus, error)
	CheckIn(ctx context.Context, h store.Handle, req *CheckInRequest) (*models.AttendanceEntry, error)
	CheckOut(ctx context.Context, h store.Handle, email string) (*models.AttendanceEntry, error)
	ListForAdmin(ctx context.Context, h store.Handle) ([]models.AttendanceEntry, error)
}

type AttendanceStatus struct {
	CheckedIn bool                    `json:"checked_in"`
	Entry     *models.AttendanceEntry `json:"entry,omitempty"`
}

type CheckInRequest struct {
	Email    string `json:"email"`
	Location string `json:"location,omitempty"`
}

type attendanceService struct {
	entries repositories.AttendanceRepository
	users   repositories.UserRepository
	logger  zerolog.Logger
}

func NewAttendanceService(entries repositories.AttendanceRepository, users repositories.UserRepository, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		entries: entries,
		users:   users,
		logger:  logger.With().Str("component", "attendance").Logger(),
	}
}

func (s *attendanceService) GetStatus(ctx context.Context, h store.Handle, email string) (*AttendanceStatus, error) {
	entry, err := s.entries.GetOpenByEmail(ctx, h, email)
	if err != nil {
		if apperrors.ErrorCode(err) == apperrors.ENotFound {
			return &AttendanceStatus{CheckedIn: false}, nil
		}
		return nil, err
	}
	return &AttendanceStatus{CheckedIn: true, Entry: entry}, nil
}

func (s *attendanceService) CheckIn(ctx context.Context, h store.Handle, req *CheckInRequest) (*models.AttendanceEntry, error) {
	const op = "attendance.CheckIn"

	if req.Email == "" {
		return nil, apperrors.Invalid(op, "email is required")
	}

	user, err := s.users.GetByEmail(ctx, h, req.Email)
	if err != nil {
		return nil, err
	}

	if _, err := s.entries.GetOpenByEmail(ctx, h, req.Email); err == nil {
		return nil, apperrors.Conflict(op, "user already has an open attendance entry")
	} else if apperrors.ErrorCode(err) != apperrors.ENotFound {
		return nil, err
	}

	now := time.Now()
	entry := &models.AttendanceEntry{
		Email:    user.Email,
		ClientID: user.ClientID,
		Date:     now.Format("2006-01-02"),
		CheckIn:  now,
		Location: req.Location,
	}
	if err := s.entries.Create(ctx, h, entry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", user.Email).Msg("check-in recorded")
	return entry, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, h store.Handle, email string) (*models.AttendanceEntry, error) {
	const op = "attendance.CheckOut"

	if email == "" {
		return nil, apperrors.Invalid(op, "email is required")
	}

	entry, err := s.entries.GetOpenByEmail(ctx, h, email)
	if err != nil {
		if apperrors.ErrorCode(err) == apperrors.ENotFound {
			return nil, apperrors.Conflict(op, "no open attendance entry to check out")
		}
		return nil, err
	}

	now := time.Now()
	if err := s.entries.SetCheckOut(ctx, h, entry.ID, now); err != nil {
		return nil, err
	}
	entry.CheckOut = &now

	s.logger.Info().Str("email", email).Msg("check-out recorded")
	return entry, nil
}

func (s *attendanceService) ListForAdmin(ctx context.Context, h store.Handle) ([]models.AttendanceEntry, error) {
	return s.entries.ListAll(ctx, h)
}
