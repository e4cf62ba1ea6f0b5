package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/repository"
	apperrors "github.com/MoNabawy-2003/al-safaa-hospital/pkg/errors"
)

type userRepository struct {
	*Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{Store: store}
}

func (r *userRepository) loadAll(ctx context.Context) ([]*model.User, error) {
	raw, err := r.loadRaw(ctx, keyUsers, "users")
	if err != nil {
		return nil, err
	}
	return decodeDoc[*model.User](r.Store, keyUsers, raw), nil
}

func (r *userRepository) saveAll(ctx context.Context, users []*model.User) error {
	return r.save(ctx, keyUsers, "users", users)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	users, err := r.loadAll(ctx)
	if err != nil {
		return err
	}
	users = append(users, user)
	return r.saveAll(ctx, users)
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	users, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	users, err := r.loadAll(ctx)
	if err != nil {
		return err
	}
	for i, u := range users {
		if u.ID == user.ID {
			users[i] = user
			return r.saveAll(ctx, users)
		}
	}
	return apperrors.NotFound("user", fmt.Errorf("id %s", user.ID))
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	return r.loadAll(ctx)
}
