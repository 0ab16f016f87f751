package kv

import (
	"context"
	"time"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/storage"
)

type QRCodesRepo interface {
	Get(ctx context.Context, id string) (*domain.QRCode, error)
	FindByPayload(ctx context.Context, data string) (*domain.QRCode, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.QRCode, error)
	// CreatePending returns the pair's pending code when it is still valid at
	// now. Otherwise a stale pending code is marked expired and q is stored.
	CreatePending(ctx context.Context, q *domain.QRCode, now time.Time) (stored *domain.QRCode, created bool, err error)
	Update(ctx context.Context, id string, fn func(*domain.QRCode) error) (*domain.QRCode, error)
}

type QRCodesRepoImpl struct{ c *collection[domain.QRCode] }

func NewQRCodesRepo(store storage.Storage) *QRCodesRepoImpl {
	return &QRCodesRepoImpl{c: newCollection[domain.QRCode](store, KeyQRCodes)}
}

func (r *QRCodesRepoImpl) find(ctx context.Context, match func(*domain.QRCode) bool) (*domain.QRCode, error) {
	codes, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range codes {
		if match(&codes[i]) {
			return &codes[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *QRCodesRepoImpl) Get(ctx context.Context, id string) (*domain.QRCode, error) {
	return r.find(ctx, func(q *domain.QRCode) bool { return q.ID == id })
}

func (r *QRCodesRepoImpl) FindByPayload(ctx context.Context, data string) (*domain.QRCode, error) {
	return r.find(ctx, func(q *domain.QRCode) bool { return q.QRCodeData == data })
}

func (r *QRCodesRepoImpl) ListByEvent(ctx context.Context, eventID int64) ([]domain.QRCode, error) {
	codes, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QRCode, 0)
	for _, q := range codes {
		if q.EventID == eventID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *QRCodesRepoImpl) CreatePending(ctx context.Context, q *domain.QRCode, now time.Time) (*domain.QRCode, bool, error) {
	stored := q
	created := false
	err := r.c.mutate(ctx, func(codes []domain.QRCode) ([]domain.QRCode, bool, error) {
		for i := range codes {
			c := &codes[i]
			if c.EventID != q.EventID || c.UserID != q.UserID || c.CheckInStatus != domain.CheckInPending {
				continue
			}
			if c.ExpiresAt == nil || now.Before(*c.ExpiresAt) {
				existing := *c
				stored = &existing
				return nil, false, nil
			}
			c.CheckInStatus = domain.CheckInExpired
		}
		created = true
		return append(codes, *q), true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *QRCodesRepoImpl) Update(ctx context.Context, id string, fn func(*domain.QRCode) error) (*domain.QRCode, error) {
	var out *domain.QRCode
	err := r.c.mutate(ctx, func(codes []domain.QRCode) ([]domain.QRCode, bool, error) {
		for i := range codes {
			if codes[i].ID != id {
				continue
			}
			q := codes[i]
			if err := fn(&q); err != nil {
				return nil, false, err
			}
			codes[i] = q
			out = &q
			return codes, true, nil
		}
		return nil, false, domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ QRCodesRepo = (*QRCodesRepoImpl)(nil)
