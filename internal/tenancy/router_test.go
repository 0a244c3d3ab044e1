package tenancy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
)

type MockTenantRegistry struct {
	mock.Mock
}

func (m *MockTenantRegistry) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func TestResolve_ActiveTenant(t *testing.T) {
	registry := &MockTenantRegistry{}
	router := NewRouter(registry, zerolog.Nop())
	tenantID := uuid.New()

	registry.On("GetByID", mock.Anything, tenantID).Return(&models.Tenant{
		ID:     tenantID,
		Name:   "Constructora Andina",
		Status: models.TenantActive,
	}, nil)

	h, err := router.Resolve(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, h.TenantID())
	registry.AssertExpectations(t)
}

func TestResolve_NoTenantFailsFast(t *testing.T) {
	registry := &MockTenantRegistry{}
	router := NewRouter(registry, zerolog.Nop())

	_, err := router.Resolve(context.Background(), uuid.Nil)
	assert.Equal(t, apperrors.EInvalid, apperrors.ErrorCode(err))
	registry.AssertNotCalled(t, "GetByID")
}

func TestResolve_UnknownTenant(t *testing.T) {
	registry := &MockTenantRegistry{}
	router := NewRouter(registry, zerolog.Nop())
	tenantID := uuid.New()

	registry.On("GetByID", mock.Anything, tenantID).Return(nil, apperrors.NotFound("tenants.GetByID", "tenant not found"))

	_, err := router.Resolve(context.Background(), tenantID)
	assert.Equal(t, apperrors.EInvalid, apperrors.ErrorCode(err))
}

func TestResolve_SuspendedTenant(t *testing.T) {
	registry := &MockTenantRegistry{}
	router := NewRouter(registry, zerolog.Nop())
	tenantID := uuid.New()

	registry.On("GetByID", mock.Anything, tenantID).Return(&models.Tenant{
		ID:     tenantID,
		Status: models.TenantSuspended,
	}, nil)

	_, err := router.Resolve(context.Background(), tenantID)
	assert.Equal(t, apperrors.EInvalid, apperrors.ErrorCode(err))
}

func TestContext_HandleRoundTrip(t *testing.T) {
	registry := &MockTenantRegistry{}
	router := NewRouter(registry, zerolog.Nop())
	tenantID := uuid.New()

	registry.On("GetByID", mock.Anything, tenantID).Return(&models.Tenant{
		ID:     tenantID,
		Status: models.TenantActive,
	}, nil)

	h, err := router.Resolve(context.Background(), tenantID)
	require.NoError(t, err)

	ctx := WithHandle(context.Background(), h)
	got, ok := HandleFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, h, got)

	// An unpopulated context yields no handle, never a default.
	_, ok = HandleFromContext(context.Background())
	assert.False(t, ok)
}
