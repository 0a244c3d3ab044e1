package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"sstcore/internal/apperrors"
	"sstcore/internal/caching"
	"sstcore/internal/repositories"
	"sstcore/internal/store"
)

type IdentityServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	handle  store.Handle
	users   repositories.UserRepository
	clients repositories.ClientRepository
	cache   *caching.Memory
	svc     IdentityService
}

func (s *IdentityServiceTestSuite) SetupTest() {
	s.ctx = context.Background()

	handle, err := store.NewHandle(uuid.New())
	s.Require().NoError(err)
	s.handle = handle

	mem := store.NewMemory()
	s.users = repositories.NewUserRepo(mem)
	s.clients = repositories.NewClientRepo(mem)
	s.cache = caching.NewMemory()
	s.svc = NewIdentityService(s.users, s.clients, s.cache, NewBcryptHasher(), time.Minute, zerolog.Nop())
}

func (s *IdentityServiceTestSuite) createUser(email, password, role string) {
	_, err := s.svc.CreateUser(s.ctx, s.handle, &CreateUserRequest{
		Email:    email,
		Name:     "Test User",
		Password: password,
		Role:     role,
		ClientID: uuid.New(),
	})
	s.Require().NoError(err)
}

func (s *IdentityServiceTestSuite) TestValidateCredentials() {
	s.createUser("ana@acme.co", "hunter22", "field")

	profile, err := s.svc.ValidateCredentials(s.ctx, s.handle, "ana@acme.co", "hunter22")
	s.Require().NoError(err)
	s.Equal("ana@acme.co", profile.Email)
	s.Equal("field", profile.Role)
}

func (s *IdentityServiceTestSuite) TestValidateCredentialsNormalizesEmail() {
	s.createUser("ana@acme.co", "hunter22", "field")

	profile, err := s.svc.ValidateCredentials(s.ctx, s.handle, "  ANA@Acme.co ", "hunter22")
	s.Require().NoError(err)
	s.Equal("ana@acme.co", profile.Email)
}

// All credential failures look identical to the caller: unknown account,
// wrong password and deactivated user return the same unauthorized error.
func (s *IdentityServiceTestSuite) TestValidateCredentialsUniformFailure() {
	s.createUser("ana@acme.co", "hunter22", "field")

	_, unknownErr := s.svc.ValidateCredentials(s.ctx, s.handle, "nobody@acme.co", "hunter22")
	_, wrongPassErr := s.svc.ValidateCredentials(s.ctx, s.handle, "ana@acme.co", "wrong")

	user, err := s.svc.GetUser(s.ctx, s.handle, "ana@acme.co")
	s.Require().NoError(err)
	_, err = s.svc.UpdateUser(s.ctx, s.handle, &UpdateUserRequest{
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
		Active:   false,
		ClientID: user.ClientID,
	})
	s.Require().NoError(err)
	_, inactiveErr := s.svc.ValidateCredentials(s.ctx, s.handle, "ana@acme.co", "hunter22")

	s.Equal(apperrors.EUnauthorized, apperrors.ErrorCode(unknownErr))
	s.Equal(apperrors.EUnauthorized, apperrors.ErrorCode(wrongPassErr))
	s.Equal(apperrors.EUnauthorized, apperrors.ErrorCode(inactiveErr))
	s.Equal(apperrors.ErrorMessage(unknownErr), apperrors.ErrorMessage(wrongPassErr))
	s.Equal(apperrors.ErrorMessage(unknownErr), apperrors.ErrorMessage(inactiveErr))
}

func (s *IdentityServiceTestSuite) TestCreateUserDuplicateEmail() {
	s.createUser("ana@acme.co", "hunter22", "field")

	_, err := s.svc.CreateUser(s.ctx, s.handle, &CreateUserRequest{
		Email:    "ana@acme.co",
		Password: "other",
		Role:     "admin",
	})
	s.Equal(apperrors.EConflict, apperrors.ErrorCode(err))
}

func (s *IdentityServiceTestSuite) TestCreateUserRejectsBadInput() {
	_, err := s.svc.CreateUser(s.ctx, s.handle, &CreateUserRequest{Email: "not-an-email", Password: "x", Role: "field"})
	s.Equal(apperrors.EInvalid, apperrors.ErrorCode(err))

	_, err = s.svc.CreateUser(s.ctx, s.handle, &CreateUserRequest{Email: "a@b.co", Password: "", Role: "field"})
	s.Equal(apperrors.EInvalid, apperrors.ErrorCode(err))

	_, err = s.svc.CreateUser(s.ctx, s.handle, &CreateUserRequest{Email: "a@b.co", Password: "x", Role: "superuser"})
	s.Equal(apperrors.EInvalid, apperrors.ErrorCode(err))
}

func (s *IdentityServiceTestSuite) TestUpdateUserKeepsPasswordWhenEmpty() {
	s.createUser("ana@acme.co", "hunter22", "field")

	_, err := s.svc.UpdateUser(s.ctx, s.handle, &UpdateUserRequest{
		Email:  "ana@acme.co",
		Name:   "Ana Renamed",
		Role:   "supervisor",
		Active: true,
	})
	s.Require().NoError(err)

	profile, err := s.svc.ValidateCredentials(s.ctx, s.handle, "ana@acme.co", "hunter22")
	s.Require().NoError(err)
	s.Equal("Ana Renamed", profile.Name)
	s.Equal("supervisor", profile.Role)
}

// Deleting a user that does not exist is a silent no-op. The admin screen
// issues deletes without checking first.
func (s *IdentityServiceTestSuite) TestDeleteUserIdempotent() {
	s.createUser("ana@acme.co", "hunter22", "field")

	s.Require().NoError(s.svc.DeleteUser(s.ctx, s.handle, "ana@acme.co"))
	s.Require().NoError(s.svc.DeleteUser(s.ctx, s.handle, "ana@acme.co"))
	s.Require().NoError(s.svc.DeleteUser(s.ctx, s.handle, "never-existed@acme.co"))
}

func (s *IdentityServiceTestSuite) TestGetActiveUserReadThrough() {
	s.createUser("ana@acme.co", "hunter22", "field")

	first, err := s.svc.GetActiveUser(s.ctx, s.handle, "ana@acme.co")
	s.Require().NoError(err)

	cached, err := s.cache.GetProfile(s.ctx, s.handle.TenantID(), "ana@acme.co")
	s.Require().NoError(err)
	s.Require().NotNil(cached)
	s.Equal(first.Email, cached.Email)
}

func (s *IdentityServiceTestSuite) TestListUsersStripsPasswordHash() {
	s.createUser("ana@acme.co", "hunter22", "field")
	s.createUser("luis@acme.co", "hunter23", "admin")

	users, err := s.svc.ListUsers(s.ctx, s.handle)
	s.Require().NoError(err)
	s.Len(users, 2)
	for _, u := range users {
		s.Empty(u.PasswordHash)
	}
}

func TestIdentityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceTestSuite))
}
