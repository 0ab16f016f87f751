package kv

import (
	"context"
	"sync"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/storage"
)

type FeedbackRepo interface {
	List(ctx context.Context, eventID int64) ([]domain.Feedback, error)
	// Upsert replaces the caller's earlier entry for the same event in place,
	// keeping its id and helpful count. created reports a first submission.
	Upsert(ctx context.Context, f *domain.Feedback) (saved *domain.Feedback, created bool, err error)
	// AddHelpfulVote records one vote per username on the entry.
	AddHelpfulVote(ctx context.Context, eventID int64, feedbackID, username string) (*domain.Feedback, error)
	DeleteEvent(ctx context.Context, eventID int64) error
}

// FeedbackRepoImpl shares one lock across all per-event keys.
type FeedbackRepoImpl struct {
	mu    sync.Mutex
	store storage.Storage
}

func NewFeedbackRepo(store storage.Storage) *FeedbackRepoImpl {
	return &FeedbackRepoImpl{store: store}
}

func (r *FeedbackRepoImpl) List(ctx context.Context, eventID int64) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return loadJSON[domain.Feedback](ctx, r.store, FeedbackKey(eventID))
}

func (r *FeedbackRepoImpl) Upsert(ctx context.Context, f *domain.Feedback) (*domain.Feedback, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := FeedbackKey(f.EventID)
	list, err := loadJSON[domain.Feedback](ctx, r.store, key)
	if err != nil {
		return nil, false, err
	}

	saved := *f
	created := true
	for i := range list {
		if list[i].UserID == f.UserID {
			saved.ID = list[i].ID
			saved.Helpful = list[i].Helpful
			saved.HelpfulBy = list[i].HelpfulBy
			list[i] = saved
			created = false
			break
		}
	}
	if created {
		list = append(list, saved)
	}
	if err := saveJSON(ctx, r.store, key, list); err != nil {
		return nil, false, err
	}
	return &saved, created, nil
}

func (r *FeedbackRepoImpl) AddHelpfulVote(ctx context.Context, eventID int64, feedbackID, username string) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := FeedbackKey(eventID)
	list, err := loadJSON[domain.Feedback](ctx, r.store, key)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID != feedbackID {
			continue
		}
		if list[i].AddHelpfulVote(username) {
			if err := saveJSON(ctx, r.store, key, list); err != nil {
				return nil, err
			}
		}
		out := list[i]
		return &out, nil
	}
	return nil, domain.ErrNotFound
}

func (r *FeedbackRepoImpl) DeleteEvent(ctx context.Context, eventID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, FeedbackKey(eventID))
}

var _ FeedbackRepo = (*FeedbackRepoImpl)(nil)
