package repositories

import (
	"context"

	"sstcore/internal/apperrors"
	"sstcore/internal/models"
	"sstcore/internal/store"
)

type UserRepository interface {
	Create(ctx context.Context, h store.Handle, user *models.User) error
	GetByEmail(ctx context.Context, h store.Handle, email string) (*models.User, error)
	Update(ctx context.Context, h store.Handle, user *models.User) error
	Delete(ctx context.Context, h store.Handle, email string) error
	List(ctx context.Context, h store.Handle) ([]models.User, error)
}

type userRepo struct {
	store store.Store
}

func NewUserRepo(s store.Store) UserRepository {
	return &userRepo{store: s}
}

func decodeUser(row *store.Row) (*models.User, error) {
	var user models.User
	if err := row.Decode(&user); err != nil {
		return nil, err
	}
	user.ID = row.ID
	return &user, nil
}

// Create appends a user; email is the natural key and must be unique within
// the tenant.
func (r *userRepo) Create(ctx context.Context, h store.Handle, user *models.User) error {
	const op = "users.Create"

	existing, err := r.GetByEmail(ctx, h, user.Email)
	if err != nil && apperrors.ErrorCode(err) != apperrors.ENotFound {
		return err
	}
	if existing != nil {
		return apperrors.Conflict(op, "a user with this email already exists")
	}

	id, err := r.store.Append(ctx, h, store.TableUsers, user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, h store.Handle, email string) (*models.User, error) {
	const op = "users.GetByEmail"

	rows, err := r.store.List(ctx, h, store.TableUsers, store.Filter{
		Match: map[string]any{"email": email},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound(op, "user not found")
	}
	return decodeUser(&rows[0])
}

// Update rewrites the mutable fields. The email key never changes; callers
// locate the row by it.
func (r *userRepo) Update(ctx context.Context, h store.Handle, user *models.User) error {
	const op = "users.Update"

	current, err := r.GetByEmail(ctx, h, user.Email)
	if err != nil {
		return err
	}

	patch := map[string]any{
		"name":          user.Name,
		"role":          user.Role,
		"active":        user.Active,
		"client_id":     user.ClientID,
		"password_hash": user.PasswordHash,
	}
	if user.PasswordHash == "" {
		delete(patch, "password_hash") // unchanged password keeps the stored hash
	}
	if _, err := r.store.Update(ctx, h, store.TableUsers, current.ID, patch); err != nil {
		return err
	}
	user.ID = current.ID
	return nil
}

func (r *userRepo) Delete(ctx context.Context, h store.Handle, email string) error {
	current, err := r.GetByEmail(ctx, h, email)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, h, store.TableUsers, current.ID)
}

func (r *userRepo) List(ctx context.Context, h store.Handle) ([]models.User, error) {
	rows, err := r.store.List(ctx, h, store.TableUsers, store.Filter{})
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for i := range rows {
		user, err := decodeUser(&rows[i])
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}
