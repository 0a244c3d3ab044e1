package tenancy

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/store"
)

// TenantRegistry is the lookup the router needs; the tenant repository
// implements it.
type TenantRegistry interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// Router turns a resolved tenant identifier into a store handle, once per
// request. There is no fallback store: a missing or unknown tenant fails
// fast with a configuration error.
type Router struct {
	registry TenantRegistry
	logger   zerolog.Logger
}

func NewRouter(registry TenantRegistry, logger zerolog.Logger) *Router {
	return &Router{registry: registry, logger: logger.With().Str("component", "tenancy").Logger()}
}

func (r *Router) Resolve(ctx context.Context, tenantID uuid.UUID) (store.Handle, error) {
	const op = "tenancy.Resolve"

	if tenantID == uuid.Nil {
		return store.Handle{}, apperrors.Invalid(op, "no tenant configured")
	}

	tenant, err := r.registry.GetByID(ctx, tenantID)
	if err != nil {
		if apperrors.ErrorCode(err) == apperrors.ENotFound {
			return store.Handle{}, apperrors.Invalidf(op, "unknown tenant %s", tenantID)
		}
		return store.Handle{}, err
	}
	if tenant.Status != models.TenantActive {
		r.logger.Warn().Str("tenant", tenantID.String()).Str("status", tenant.Status).Msg("rejected inactive tenant")
		return store.Handle{}, apperrors.Invalidf(op, "tenant %s is not active", tenantID)
	}

	return store.NewHandle(tenant.ID)
}
