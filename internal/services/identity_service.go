package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sstcore/internal/apperrors"
	"sstcore/internal/caching"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

// IdentityService owns credential validation and user CRUD. Credential
// failures are uniform: the caller cannot tell a missing account from a
// wrong password or an inactive user.
type IdentityService interface {
	ValidateCredentials(ctx context.Context, h store.Handle, email, password string) (*models.Profile, error)
	CreateUser(ctx context.Context, h store.Handle, req *CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, h store.Handle, req *UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, h store.Handle, email string) error
	GetUser(ctx context.Context, h store.Handle, email string) (*models.User, error)
	GetActiveUser(ctx context.Context, h store.Handle, email string) (*models.Profile, error)
	ListUsers(ctx context.Context, h store.Handle) ([]models.User, error)
	ListClientsForUsers(ctx context.Context, h store.Handle) ([]models.Client, error)
}

type CreateUserRequest struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Password string    `json:"password"`
	Role     string    `json:"role"`
	ClientID uuid.UUID `json:"client_id"`
}

type UpdateUserRequest struct {
	Email    string    `json:"email"` // key, immutable
	Name     string    `json:"name"`
	Password string    `json:"password,omitempty"` // empty keeps the current one
	Role     string    `json:"role"`
	Active   bool      `json:"active"`
	ClientID uuid.UUID `json:"client_id"`
}

type identityService struct {
	users    repositories.UserRepository
	clients  repositories.ClientRepository
	cache    caching.CacheService
	hasher   CredentialHasher
	cacheTTL time.Duration
	logger   zerolog.Logger
}

func NewIdentityService(users repositories.UserRepository, clients repositories.ClientRepository, cache caching.CacheService, hasher CredentialHasher, cacheTTL time.Duration, logger zerolog.Logger) IdentityService {
	return &identityService{
		users:    users,
		clients:  clients,
		cache:    cache,
		hasher:   hasher,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "identity").Logger(),
	}
}

func (s *identityService) ValidateCredentials(ctx context.Context, h store.Handle, email, password string) (*models.Profile, error) {
	const op = "identity.ValidateCredentials"

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.Unauthorized(op)
	}

	user, err := s.users.GetByEmail(ctx, h, email)
	if err != nil {
		if apperrors.ErrorCode(err) == apperrors.ENotFound {
			return nil, apperrors.Unauthorized(op)
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.Unauthorized(op)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(op)
	}

	profile := user.Profile()
	if err := s.cache.SetProfile(ctx, h.TenantID(), profile, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache profile after login")
	}
	return profile, nil
}

func (s *identityService) CreateUser(ctx context.Context, h store.Handle, req *CreateUserRequest) (*models.User, error) {
	const op = "identity.CreateUser"

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, apperrors.Invalid(op, "a valid email is required")
	}
	if req.Password == "" {
		return nil, apperrors.Invalid(op, "password is required")
	}
	if !models.ValidRole(req.Role) {
		return nil, apperrors.Invalidf(op, "unknown role %q", req.Role)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(op, err)
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		ClientID:     req.ClientID,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, h, user); err != nil {
		return nil, err
	}

	s.invalidate(ctx, h)
	s.logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("user created")
	return user, nil
}

func (s *identityService) UpdateUser(ctx context.Context, h store.Handle, req *UpdateUserRequest) (*models.User, error) {
	const op = "identity.UpdateUser"

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return nil, apperrors.Invalid(op, "email is required")
	}
	if !models.ValidRole(req.Role) {
		return nil, apperrors.Invalidf(op, "unknown role %q", req.Role)
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Active:   req.Active,
		ClientID: req.ClientID,
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, apperrors.Internal(op, err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, h, user); err != nil {
		return nil, err
	}

	s.invalidate(ctx, h)
	return user, nil
}

// DeleteUser is an idempotent no-op when the user does not exist; the admin
// screen issues deletes without checking first.
func (s *identityService) DeleteUser(ctx context.Context, h store.Handle, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	err := s.users.Delete(ctx, h, email)
	if err != nil && apperrors.ErrorCode(err) != apperrors.ENotFound {
		return err
	}

	s.invalidate(ctx, h)
	return nil
}

func (s *identityService) GetUser(ctx context.Context, h store.Handle, email string) (*models.User, error) {
	return s.users.GetByEmail(ctx, h, strings.TrimSpace(strings.ToLower(email)))
}

// GetActiveUser is the read-through path for the frequently consulted
// profile of a logged-in user.
func (s *identityService) GetActiveUser(ctx context.Context, h store.Handle, email string) (*models.Profile, error) {
	const op = "identity.GetActiveUser"

	email = strings.TrimSpace(strings.ToLower(email))
	if cached, err := s.cache.GetProfile(ctx, h.TenantID(), email); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Msg("profile cache read failed, falling through to store")
	}

	user, err := s.users.GetByEmail(ctx, h, email)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NotFound(op, "user is not active")
	}

	profile := user.Profile()
	if err := s.cache.SetProfile(ctx, h.TenantID(), profile, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to populate profile cache")
	}
	return profile, nil
}

func (s *identityService) ListUsers(ctx context.Context, h store.Handle) ([]models.User, error) {
	users, err := s.users.List(ctx, h)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = "" // never leaves the service
	}
	return users, nil
}

// ListClientsForUsers feeds the client dropdown on the user admin screen.
func (s *identityService) ListClientsForUsers(ctx context.Context, h store.Handle) ([]models.Client, error) {
	return s.clients.ListActive(ctx, h)
}

func (s *identityService) invalidate(ctx context.Context, h store.Handle) {
	if err := s.cache.InvalidateTenant(ctx, h.TenantID()); err != nil {
		s.logger.Warn().Err(err).Msg("cache invalidation failed after user change")
	}
}
