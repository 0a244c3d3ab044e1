package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sstcore/internal/apperrors"
	"sstcore/internal/caching"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

// CatalogService manages the per-tenant catalogs: registered clients and
// form templates (formats). Reads of slow-changing lists go through the
// parameter cache; every write invalidates the tenant's cache wholesale.
type CatalogService interface {
	ListRegisteredClients(ctx context.Context, h store.Handle) ([]models.Client, error)
	ListClientsForAdmin(ctx context.Context, h store.Handle) ([]models.Client, error)
	SaveClient(ctx context.Context, h store.Handle, save ClientSave) (*models.Client, error)
	DeleteClient(ctx context.Context, h store.Handle, id uuid.UUID) error

	ListFormatsByClient(ctx context.Context, h store.Handle, clientID uuid.UUID) ([]models.Format, error)
	ListFormatsForAdmin(ctx context.Context, h store.Handle) ([]models.Format, error)
	ListFormatsForUser(ctx context.Context, h store.Handle, email string) ([]models.Format, error)
	CreateFormat(ctx context.Context, h store.Handle, req *FormatRequest) (*models.Format, error)
	UpdateFormat(ctx context.Context, h store.Handle, id uuid.UUID, req *FormatRequest) (*models.Format, error)
	DeleteFormat(ctx context.Context, h store.Handle, id uuid.UUID) error
}

// ClientSave is the tagged create-or-update variant. Exactly one of Create
// and Update must be set; the boundary resolves the ambiguous
// presence-of-id payload into it once.
type ClientSave struct {
	Create *ClientCreate
	Update *ClientUpdate
}

type ClientCreate struct {
	Name         string `json:"name"`
	NIT          string `json:"nit"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
}

type ClientUpdate struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	NIT          string    `json:"nit"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	Active       bool      `json:"active"`
}

type FormatRequest struct {
	ClientID uuid.UUID            `json:"client_id"`
	Name     string               `json:"name"`
	Category string               `json:"category"`
	Fields   []models.FormatField `json:"fields"`
	Active   bool                 `json:"active"`
}

type catalogService struct {
	clients  repositories.ClientRepository
	formats  repositories.FormatRepository
	users    repositories.UserRepository
	cache    caching.CacheService
	cacheTTL time.Duration
	logger   zerolog.Logger
}

func NewCatalogService(clients repositories.ClientRepository, formats repositories.FormatRepository, users repositories.UserRepository, cache caching.CacheService, cacheTTL time.Duration, logger zerolog.Logger) CatalogService {
	return &catalogService{
		clients:  clients,
		formats:  formats,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

func (s *catalogService) ListRegisteredClients(ctx context.Context, h store.Handle) ([]models.Client, error) {
	if cached, err := s.cache.GetClients(ctx, h.TenantID()); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Msg("client cache read failed, falling through to store")
	}

	clients, err := s.clients.ListActive(ctx, h)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetClients(ctx, h.TenantID(), clients, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to populate client cache")
	}
	return clients, nil
}

func (s *catalogService) ListClientsForAdmin(ctx context.Context, h store.Handle) ([]models.Client, error) {
	return s.clients.ListAll(ctx, h)
}

func (s *catalogService) SaveClient(ctx context.Context, h store.Handle, save ClientSave) (*models.Client, error) {
	const op = "catalog.SaveClient"

	switch {
	case save.Create != nil && save.Update == nil:
		if save.Create.Name == "" {
			return nil, apperrors.Invalid(op, "client name is required")
		}
		client := &models.Client{
			Name:         save.Create.Name,
			NIT:          save.Create.NIT,
			ContactName:  save.Create.ContactName,
			ContactEmail: save.Create.ContactEmail,
			Active:       true,
			CreatedAt:    time.Now(),
		}
		if err := s.clients.Create(ctx, h, client); err != nil {
			return nil, err
		}
		s.invalidate(ctx, h)
		return client, nil

	case save.Update != nil && save.Create == nil:
		if save.Update.ID == uuid.Nil {
			return nil, apperrors.Invalid(op, "client id is required for update")
		}
		current, err := s.clients.GetByID(ctx, h, save.Update.ID)
		if err != nil {
			return nil, err
		}
		current.Name = save.Update.Name
		current.NIT = save.Update.NIT
		current.ContactName = save.Update.ContactName
		current.ContactEmail = save.Update.ContactEmail
		current.Active = save.Update.Active
		if err := s.clients.Update(ctx, h, current); err != nil {
			return nil, err
		}
		s.invalidate(ctx, h)
		return current, nil

	default:
		return nil, apperrors.Invalid(op, "exactly one of create or update must be set")
	}
}

// DeleteClient succeeds when the client is already gone. The format path is
// stricter on purpose; see UpdateFormat.
func (s *catalogService) DeleteClient(ctx context.Context, h store.Handle, id uuid.UUID) error {
	err := s.clients.Delete(ctx, h, id)
	if err != nil && apperrors.ErrorCode(err) != apperrors.ENotFound {
		return err
	}
	s.invalidate(ctx, h)
	return nil
}

func (s *catalogService) ListFormatsByClient(ctx context.Context, h store.Handle, clientID uuid.UUID) ([]models.Format, error) {
	if cached, err := s.cache.GetFormats(ctx, h.TenantID(), clientID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Msg("format cache read failed, falling through to store")
	}

	formats, err := s.formats.ListByClient(ctx, h, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetFormats(ctx, h.TenantID(), clientID, formats, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to populate format cache")
	}
	return formats, nil
}

func (s *catalogService) ListFormatsForAdmin(ctx context.Context, h store.Handle) ([]models.Format, error) {
	return s.formats.ListAll(ctx, h)
}

// ListFormatsForUser applies role visibility: admins see every active
// format, everyone else only their own client's.
func (s *catalogService) ListFormatsForUser(ctx context.Context, h store.Handle, email string) ([]models.Format, error) {
	user, err := s.users.GetByEmail(ctx, h, email)
	if err != nil {
		return nil, err
	}

	var formats []models.Format
	if user.Role == models.RoleAdmin {
		formats, err = s.formats.ListAll(ctx, h)
	} else {
		formats, err = s.ListFormatsByClient(ctx, h, user.ClientID)
	}
	if err != nil {
		return nil, err
	}

	visible := make([]models.Format, 0, len(formats))
	for _, f := range formats {
		if f.Active {
			visible = append(visible, f)
		}
	}
	return visible, nil
}

func (s *catalogService) CreateFormat(ctx context.Context, h store.Handle, req *FormatRequest) (*models.Format, error) {
	const op = "catalog.CreateFormat"

	if req.Name == "" {
		return nil, apperrors.Invalid(op, "format name is required")
	}
	if req.ClientID == uuid.Nil {
		return nil, apperrors.Invalid(op, "owning client is required")
	}
	if _, err := s.clients.GetByID(ctx, h, req.ClientID); err != nil {
		return nil, err
	}

	format := &models.Format{
		ClientID:  req.ClientID,
		Name:      req.Name,
		Category:  req.Category,
		Fields:    req.Fields,
		Active:    req.Active,
		CreatedAt: time.Now(),
	}
	if err := s.formats.Create(ctx, h, format); err != nil {
		return nil, err
	}

	s.invalidate(ctx, h)
	s.logger.Info().Str("format", format.Name).Msg("format created")
	return format, nil
}

// UpdateFormat returns ENotFound for a missing id, unlike DeleteClient's
// leniency. The asymmetry mirrors how the product behaves and is deliberate.
func (s *catalogService) UpdateFormat(ctx context.Context, h store.Handle, id uuid.UUID, req *FormatRequest) (*models.Format, error) {
	const op = "catalog.UpdateFormat"

	if id == uuid.Nil {
		return nil, apperrors.Invalid(op, "format id is required")
	}
	current, err := s.formats.GetByID(ctx, h, id)
	if err != nil {
		return nil, err
	}

	current.ClientID = req.ClientID
	current.Name = req.Name
	current.Category = req.Category
	current.Fields = req.Fields
	current.Active = req.Active
	if err := s.formats.Update(ctx, h, current); err != nil {
		return nil, err
	}

	s.invalidate(ctx, h)
	return current, nil
}

func (s *catalogService) DeleteFormat(ctx context.Context, h store.Handle, id uuid.UUID) error {
	if err := s.formats.Delete(ctx, h, id); err != nil {
		return err
	}
	s.invalidate(ctx, h)
	return nil
}

func (s *catalogService) invalidate(ctx context.Context, h store.Handle) {
	if err := s.cache.InvalidateTenant(ctx, h.TenantID()); err != nil {
		s.logger.Warn().Err(err).Msg("cache invalidation failed after catalog change")
	}
}
