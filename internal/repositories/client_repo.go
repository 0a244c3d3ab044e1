package repositories

import (
	"context"

	"github.com/google/uuid"

	"sstcore/internal/models"
	"sstcore/internal/store"
)

type ClientRepository interface {
	Create(ctx context.Context, h store.Handle, client *models.Client) error
	GetByID(ctx context.Context, h store.Handle, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, h store.Handle, client *models.Client) error
	Delete(ctx context.Context, h store.Handle, id uuid.UUID) error
	ListActive(ctx context.Context, h store.Handle) ([]models.Client, error)
	ListAll(ctx context.Context, h store.Handle) ([]models.Client, error)
}

type clientRepo struct {
	store store.Store
}

func NewClientRepo(s store.Store) ClientRepository {
	return &clientRepo{store: s}
}

func decodeClient(row *store.Row) (*models.Client, error) {
	var client models.Client
	if err := row.Decode(&client); err != nil {
		return nil, err
	}
	client.ID = row.ID
	return &client, nil
}

func (r *clientRepo) Create(ctx context.Context, h store.Handle, client *models.Client) error {
	id, err := r.store.Append(ctx, h, store.TableClients, client)
	if err != nil {
		return err
	}
	client.ID = id
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, h store.Handle, id uuid.UUID) (*models.Client, error) {
	row, err := r.store.Get(ctx, h, store.TableClients, id)
	if err != nil {
		return nil, err
	}
	return decodeClient(row)
}

func (r *clientRepo) Update(ctx context.Context, h store.Handle, client *models.Client) error {
	patch := map[string]any{
		"name":          client.Name,
		"nit":           client.NIT,
		"contact_name":  client.ContactName,
		"contact_email": client.ContactEmail,
		"active":        client.Active,
	}
	_, err := r.store.Update(ctx, h, store.TableClients, client.ID, patch)
	return err
}

func (r *clientRepo) Delete(ctx context.Context, h store.Handle, id uuid.UUID) error {
	return r.store.Delete(ctx, h, store.TableClients, id)
}

func (r *clientRepo) list(ctx context.Context, h store.Handle, f store.Filter) ([]models.Client, error) {
	rows, err := r.store.List(ctx, h, store.TableClients, f)
	if err != nil {
		return nil, err
	}

	clients := make([]models.Client, 0, len(rows))
	for i := range rows {
		client, err := decodeClient(&rows[i])
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	return clients, nil
}

func (r *clientRepo) ListActive(ctx context.Context, h store.Handle) ([]models.Client, error) {
	return r.list(ctx, h, store.Filter{Match: map[string]any{"active": true}})
}

func (r *clientRepo) ListAll(ctx context.Context, h store.Handle) ([]models.Client, error) {
	return r.list(ctx, h, store.Filter{})
}
