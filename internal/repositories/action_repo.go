package repositories

import (
	"context"

	"github.com/google/uuid"

	"sstcore/internal/models"
	"sstcore/internal/store"
)

type ManagementActionRepository interface {
	Create(ctx context.Context, h store.Handle, action *models.ManagementAction) error
	ListByRecord(ctx context.Context, h store.Handle, recordID uuid.UUID) ([]models.ManagementAction, error)
	ListAll(ctx context.Context, h store.Handle) ([]models.ManagementAction, error)
}

type actionRepo struct {
	store store.Store
}

func NewManagementActionRepo(s store.Store) ManagementActionRepository {
	return &actionRepo{store: s}
}

func decodeAction(row *store.Row) (*models.ManagementAction, error) {
	var action models.ManagementAction
	if err := row.Decode(&action); err != nil {
		return nil, err
	}
	action.ID = row.ID
	return &action, nil
}

func (r *actionRepo) Create(ctx context.Context, h store.Handle, action *models.ManagementAction) error {
	id, err := r.store.Append(ctx, h, store.TableActions, action)
	if err != nil {
		return err
	}
	action.ID = id
	return nil
}

func (r *actionRepo) list(ctx context.Context, h store.Handle, f store.Filter) ([]models.ManagementAction, error) {
	rows, err := r.store.List(ctx, h, store.TableActions, f)
	if err != nil {
		return nil, err
	}

	actions := make([]models.ManagementAction, 0, len(rows))
	for i := range rows {
		action, err := decodeAction(&rows[i])
		if err != nil {
			return nil, err
		}
		actions = append(actions, *action)
	}
	return actions, nil
}

func (r *actionRepo) ListByRecord(ctx context.Context, h store.Handle, recordID uuid.UUID) ([]models.ManagementAction, error) {
	return r.list(ctx, h, store.Filter{Match: map[string]any{"record_id": recordID}})
}

func (r *actionRepo) ListAll(ctx context.Context, h store.Handle) ([]models.ManagementAction, error) {
	return r.list(ctx, h, store.Filter{})
}
