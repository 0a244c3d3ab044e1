package repositories

import (
	"context"

	"github.com/google/uuid"

	"sstcore/internal/models"
	"sstcore/internal/store"
)

type FormatRepository interface {
	Create(ctx context.Context, h store.Handle, format *models.Format) error
	GetByID(ctx context.Context, h store.Handle, id uuid.UUID) (*models.Format, error)
	Update(ctx context.Context, h store.Handle, format *models.Format) error
	Delete(ctx context.Context, h store.Handle, id uuid.UUID) error
	ListByClient(ctx context.Context, h store.Handle, clientID uuid.UUID) ([]models.Format, error)
	ListAll(ctx context.Context, h store.Handle) ([]models.Format, error)
}

type formatRepo struct {
	store store.Store
}

func NewFormatRepo(s store.Store) FormatRepository {
	return &formatRepo{store: s}
}

func decodeFormat(row *store.Row) (*models.Format, error) {
	var format models.Format
	if err := row.Decode(&format); err != nil {
		return nil, err
	}
	format.ID = row.ID
	return &format, nil
}

func (r *formatRepo) Create(ctx context.Context, h store.Handle, format *models.Format) error {
	id, err := r.store.Append(ctx, h, store.TableFormats, format)
	if err != nil {
		return err
	}
	format.ID = id
	return nil
}

func (r *formatRepo) GetByID(ctx context.Context, h store.Handle, id uuid.UUID) (*models.Format, error) {
	row, err := r.store.Get(ctx, h, store.TableFormats, id)
	if err != nil {
		return nil, err
	}
	return decodeFormat(row)
}

func (r *formatRepo) Update(ctx context.Context, h store.Handle, format *models.Format) error {
	patch := map[string]any{
		"client_id": format.ClientID,
		"name":      format.Name,
		"category":  format.Category,
		"fields":    format.Fields,
		"active":    format.Active,
	}
	_, err := r.store.Update(ctx, h, store.TableFormats, format.ID, patch)
	return err
}

func (r *formatRepo) Delete(ctx context.Context, h store.Handle, id uuid.UUID) error {
	return r.store.Delete(ctx, h, store.TableFormats, id)
}

func (r *formatRepo) list(ctx context.Context, h store.Handle, f store.Filter) ([]models.Format, error) {
	rows, err := r.store.List(ctx, h, store.TableFormats, f)
	if err != nil {
		return nil, err
	}

	formats := make([]models.Format, 0, len(rows))
	for i := range rows {
		format, err := decodeFormat(&rows[i])
		if err != nil {
			return nil, err
		}
		formats = append(formats, *format)
	}
	return formats, nil
}

func (r *formatRepo) ListByClient(ctx context.Context, h store.Handle, clientID uuid.UUID) ([]models.Format, error) {
	return r.list(ctx, h, store.Filter{Match: map[string]any{"client_id": clientID}})
}

func (r *formatRepo) ListAll(ctx context.Context, h store.Handle) ([]models.Format, error) {
	return r.list(ctx, h, store.Filter{})
}
