package kv

import (
	"context"
	"time"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/storage"
)

type SessionsRepo interface {
	// Create stores s and drops sessions already expired at now.
	Create(ctx context.Context, s *domain.Session, now time.Time) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, username string) (int, error)
}

type SessionsRepoImpl struct{ c *collection[domain.Session] }

func NewSessionsRepo(store storage.Storage) *SessionsRepoImpl {
	return &SessionsRepoImpl{c: newCollection[domain.Session](store, KeySessions)}
}

func (r *SessionsRepoImpl) Create(ctx context.Context, s *domain.Session, now time.Time) error {
	return r.c.mutate(ctx, func(sessions []domain.Session) ([]domain.Session, bool, error) {
		kept := sessions[:0]
		for _, existing := range sessions {
			if !existing.Expired(now) {
				kept = append(kept, existing)
			}
		}
		return append(kept, *s), true, nil
	})
}

func (r *SessionsRepoImpl) Get(ctx context.Context, id string) (*domain.Session, error) {
	sessions, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete is a no-op for an unknown id.
func (r *SessionsRepoImpl) Delete(ctx context.Context, id string) error {
	return r.c.mutate(ctx, func(sessions []domain.Session) ([]domain.Session, bool, error) {
		for i := range sessions {
			if sessions[i].ID == id {
				return append(sessions[:i], sessions[i+1:]...), true, nil
			}
		}
		return sessions, false, nil
	})
}

func (r *SessionsRepoImpl) DeleteForUser(ctx context.Context, username string) (int, error) {
	n := 0
	err := r.c.mutate(ctx, func(sessions []domain.Session) ([]domain.Session, bool, error) {
		kept := sessions[:0]
		for _, s := range sessions {
			if s.Username == username {
				n++
				continue
			}
			kept = append(kept, s)
		}
		return kept, n > 0, nil
	})
	return n, err
}

var _ SessionsRepo = (*SessionsRepoImpl)(nil)
