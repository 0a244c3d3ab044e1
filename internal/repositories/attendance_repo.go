package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/store"
)

type AttendanceRepository interface {
	Create(ctx context.Context, h store.Handle, entry *models.AttendanceEntry) error
	// GetOpenByEmail returns the user's open entry, ENotFound when none.
	GetOpenByEmail(ctx context.Context, h store.Handle, email string) (*models.AttendanceEntry, error)
	SetCheckOut(ctx context.Context, h store.Handle, id uuid.UUID, at time.Time) error
	ListAll(ctx context.Context, h store.Handle) ([]models.AttendanceEntry, error)
}

type attendanceRepo struct {
	store store.Store
}

func NewAttendanceRepo(s store.Store) AttendanceRepository {
	return &attendanceRepo{store: s}
}

func decodeEntry(row *store.Row) (*models.AttendanceEntry, error) {
	var entry models.AttendanceEntry
	if err := row.Decode(&entry); err != nil {
		return nil, err
	}
	entry.ID = row.ID
	return &entry, nil
}

func (r *attendanceRepo) Create(ctx context.Context, h store.Handle, entry *models.AttendanceEntry) error {
	id, err := r.store.Append(ctx, h, store.TableAttendance, entry)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (r *attendanceRepo) GetOpenByEmail(ctx context.Context, h store.Handle, email string) (*models.AttendanceEntry, error) {
	const op = "attendance.GetOpenByEmail"

	// Open entries carry no check_out key, so containment cannot express
	// "absent"; filter on email and scan for the open one. A user has at
	// most a handful of entries per day.
	rows, err := r.store.List(ctx, h, store.TableAttendance, store.Filter{
		Match:      map[string]any{"email": email},
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		entry, err := decodeEntry(&rows[i])
		if err != nil {
			return nil, err
		}
		if entry.Open() {
			return entry, nil
		}
	}
	return nil, apperrors.NotFound(op, "no open attendance entry")
}

func (r *attendanceRepo) SetCheckOut(ctx context.Context, h store.Handle, id uuid.UUID, at time.Time) error {
	_, err := r.store.Update(ctx, h, store.TableAttendance, id, map[string]any{"check_out": at})
	return err
}

func (r *attendanceRepo) ListAll(ctx context.Context, h store.Handle) ([]models.AttendanceEntry, error) {
	rows, err := r.store.List(ctx, h, store.TableAttendance, store.Filter{Descending: true})
	if err != nil {
		return nil, err
	}

	entries := make([]models.AttendanceEntry, 0, len(rows))
	for i := range rows {
		entry, err := decodeEntry(&rows[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}
