package kv

import (
	"context"
	"strings"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/storage"
)

type UsersRepo interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIdentifier matches the username exactly or the email case-insensitively.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, username string, fn func(*domain.User) error) (*domain.User, error)
	// RemoveEventRegistrations drops eventID from every user and returns how many changed.
	RemoveEventRegistrations(ctx context.Context, eventID int64) (int, error)
}

type UsersRepoImpl struct{ c *collection[domain.User] }

func NewUsersRepo(store storage.Storage) *UsersRepoImpl {
	return &UsersRepoImpl{c: newCollection[domain.User](store, KeyUsers)}
}

func (r *UsersRepoImpl) List(ctx context.Context) ([]domain.User, error) {
	return r.c.read(ctx)
}

func (r *UsersRepoImpl) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UsersRepoImpl) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	users, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		u := &users[i]
		if u.Username == identifier || (u.Email != "" && strings.EqualFold(u.Email, identifier)) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UsersRepoImpl) Create(ctx context.Context, u *domain.User) error {
	return r.c.mutate(ctx, func(users []domain.User) ([]domain.User, bool, error) {
		for i := range users {
			if users[i].Username == u.Username {
				return nil, false, domain.ErrUsernameTaken
			}
			if u.Email != "" && strings.EqualFold(users[i].Email, u.Email) {
				return nil, false, domain.ErrEmailTaken
			}
		}
		return append(users, *u), true, nil
	})
}

func (r *UsersRepoImpl) Update(ctx context.Context, username string, fn func(*domain.User) error) (*domain.User, error) {
	var out *domain.User
	err := r.c.mutate(ctx, func(users []domain.User) ([]domain.User, bool, error) {
		for i := range users {
			if users[i].Username != username {
				continue
			}
			u := users[i]
			if err := fn(&u); err != nil {
				return nil, false, err
			}
			users[i] = u
			out = &u
			return users, true, nil
		}
		return nil, false, domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepoImpl) RemoveEventRegistrations(ctx context.Context, eventID int64) (int, error) {
	n := 0
	err := r.c.mutate(ctx, func(users []domain.User) ([]domain.User, bool, error) {
		for i := range users {
			if users[i].RemoveRegistration(eventID) {
				n++
			}
		}
		return users, n > 0, nil
	})
	return n, err
}

var _ UsersRepo = (*UsersRepoImpl)(nil)
