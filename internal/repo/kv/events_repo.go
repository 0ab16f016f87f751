package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/storage"
)

type EventsRepo interface {
	List(ctx context.Context) ([]domain.Event, error)
	Get(ctx context.Context, id int64) (*domain.Event, error)
	// Create assigns the next id from the persisted sequence.
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	// Update returns domain.ErrNotFound and writes nothing when id is missing.
	Update(ctx context.Context, id int64, fn func(*domain.Event) error) (*domain.Event, error)
	Delete(ctx context.Context, id int64) error
}

type EventsRepoImpl struct {
	c     *collection[domain.Event]
	store storage.Storage
}

func NewEventsRepo(store storage.Storage) *EventsRepoImpl {
	return &EventsRepoImpl{c: newCollection[domain.Event](store, KeyEvents), store: store}
}

func (r *EventsRepoImpl) List(ctx context.Context) ([]domain.Event, error) {
	return r.c.read(ctx)
}

func (r *EventsRepoImpl) Get(ctx context.Context, id int64) (*domain.Event, error) {
	events, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *EventsRepoImpl) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	var out domain.Event
	err := r.c.mutate(ctx, func(events []domain.Event) ([]domain.Event, bool, error) {
		id, err := r.nextID(ctx, events)
		if err != nil {
			return nil, false, err
		}
		out = *e
		out.ID = id
		return append(events, out), true, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// nextID bumps seq-events. A store without the counter is seeded from the
// highest existing id. Callers hold the collection lock.
func (r *EventsRepoImpl) nextID(ctx context.Context, events []domain.Event) (int64, error) {
	var seq int64
	raw, err := r.store.Get(ctx, KeyEventSeq)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		for _, e := range events {
			seq = max(seq, e.ID)
		}
	case err != nil:
		return 0, fmt.Errorf("load %s: %w", KeyEventSeq, err)
	default:
		if err := json.Unmarshal(raw, &seq); err != nil {
			return 0, fmt.Errorf("decode %s: %w", KeyEventSeq, err)
		}
	}
	seq++
	if err := r.store.Put(ctx, KeyEventSeq, []byte(strconv.FormatInt(seq, 10))); err != nil {
		return 0, fmt.Errorf("save %s: %w", KeyEventSeq, err)
	}
	return seq, nil
}

func (r *EventsRepoImpl) Update(ctx context.Context, id int64, fn func(*domain.Event) error) (*domain.Event, error) {
	var out *domain.Event
	err := r.c.mutate(ctx, func(events []domain.Event) ([]domain.Event, bool, error) {
		for i := range events {
			if events[i].ID != id {
				continue
			}
			e := events[i]
			if err := fn(&e); err != nil {
				return nil, false, err
			}
			events[i] = e
			out = &e
			return events, true, nil
		}
		return nil, false, domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EventsRepoImpl) Delete(ctx context.Context, id int64) error {
	return r.c.mutate(ctx, func(events []domain.Event) ([]domain.Event, bool, error) {
		for i := range events {
			if events[i].ID == id {
				return append(events[:i], events[i+1:]...), true, nil
			}
		}
		return nil, false, domain.ErrNotFound
	})
}

var _ EventsRepo = (*EventsRepoImpl)(nil)
