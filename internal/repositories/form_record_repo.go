package repositories

import (
	"context"

	"github.com/google/uuid"

	"sstcore/internal/models"
	"sstcore/internal/store"
)

type FormRecordRepository interface {
	Create(ctx context.Context, h store.Handle, record *models.FormRecord) error
	GetByID(ctx context.Context, h store.Handle, id uuid.UUID) (*models.FormRecord, error)
	SetStatus(ctx context.Context, h store.Handle, id uuid.UUID, status string) error
	SetClosure(ctx context.Context, h store.Handle, id uuid.UUID, closure *models.Closure) error
	ListByStatus(ctx context.Context, h store.Handle, status string) ([]models.FormRecord, error)
	ListAll(ctx context.Context, h store.Handle) ([]models.FormRecord, error)
}

type formRecordRepo struct {
	store store.Store
}

func NewFormRecordRepo(s store.Store) FormRecordRepository {
	return &formRecordRepo{store: s}
}

func decodeRecord(row *store.Row) (*models.FormRecord, error) {
	var record models.FormRecord
	if err := row.Decode(&record); err != nil {
		return nil, err
	}
	record.ID = row.ID
	return &record, nil
}

func (r *formRecordRepo) Create(ctx context.Context, h store.Handle, record *models.FormRecord) error {
	id, err := r.store.Append(ctx, h, store.TableFormRecords, record)
	if err != nil {
		return err
	}
	record.ID = id
	return nil
}

func (r *formRecordRepo) GetByID(ctx context.Context, h store.Handle, id uuid.UUID) (*models.FormRecord, error) {
	row, err := r.store.Get(ctx, h, store.TableFormRecords, id)
	if err != nil {
		return nil, err
	}
	return decodeRecord(row)
}

func (r *formRecordRepo) SetStatus(ctx context.Context, h store.Handle, id uuid.UUID, status string) error {
	_, err := r.store.Update(ctx, h, store.TableFormRecords, id, map[string]any{"status": status})
	return err
}

// SetClosure writes status and closure in one patch so a record is never
// observed closed without its closure metadata.
func (r *formRecordRepo) SetClosure(ctx context.Context, h store.Handle, id uuid.UUID, closure *models.Closure) error {
	_, err := r.store.Update(ctx, h, store.TableFormRecords, id, map[string]any{
		"status":  models.RecordClosed,
		"closure": closure,
	})
	return err
}

func (r *formRecordRepo) list(ctx context.Context, h store.Handle, f store.Filter) ([]models.FormRecord, error) {
	rows, err := r.store.List(ctx, h, store.TableFormRecords, f)
	if err != nil {
		return nil, err
	}

	records := make([]models.FormRecord, 0, len(rows))
	for i := range rows {
		record, err := decodeRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (r *formRecordRepo) ListByStatus(ctx context.Context, h store.Handle, status string) ([]models.FormRecord, error) {
	return r.list(ctx, h, store.Filter{Match: map[string]any{"status": status}})
}

func (r *formRecordRepo) ListAll(ctx context.Context, h store.Handle) ([]models.FormRecord, error) {
	return r.list(ctx, h, store.Filter{})
}
