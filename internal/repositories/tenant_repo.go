package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/store"
)

// TenantRepository is the tenant registry. It is the one repository that is
// not scoped by a Handle: handles are derived from it.
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type tenantRepo struct {
	db store.PgxPool
}

func NewTenantRepo(db store.PgxPool) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	const op = "tenants.Create"
	query := `
		INSERT INTO tenants (id, name, subdomain, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.Subdomain, tenant.Status)
	if err != nil {
		return apperrors.Unavailable(op, err)
	}
	return nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	const op = "tenants.GetByID"
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, subdomain, status, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(op, "tenant not found")
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, err)
	}
	return tenant, nil
}

func (r *tenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	const op = "tenants.GetBySubdomain"
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, subdomain, status, created_at, updated_at
		FROM tenants
		WHERE subdomain = $1
	`
	err := r.db.QueryRow(ctx, query, subdomain).Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(op, "tenant not found")
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, err)
	}
	return tenant, nil
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	const op = "tenants.List"
	query := `
		SELECT id, name, subdomain, status, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Unavailable(op, err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, apperrors.Unavailable(op, err)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

func (r *tenantRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	const op = "tenants.SetStatus"
	query := `UPDATE tenants SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return apperrors.Unavailable(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(op, "tenant not found")
	}
	return nil
}
