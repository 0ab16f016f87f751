package kv

import (
	"context"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/storage"
)

type CertificatesRepo interface {
	Get(ctx context.Context, id string) (*domain.Certificate, error)
	FindByVerificationCode(ctx context.Context, code string) (*domain.Certificate, error)
	ListByParticipant(ctx context.Context, participantID string) ([]domain.Certificate, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Certificate, error)
	// CreateIfAbsent stores c unless the participant already holds a
	// certificate for the event, in which case that one is returned and
	// created is false.
	CreateIfAbsent(ctx context.Context, c *domain.Certificate) (stored *domain.Certificate, created bool, err error)
	Update(ctx context.Context, id string, fn func(*domain.Certificate) error) (*domain.Certificate, error)
}

type CertificatesRepoImpl struct{ c *collection[domain.Certificate] }

func NewCertificatesRepo(store storage.Storage) *CertificatesRepoImpl {
	return &CertificatesRepoImpl{c: newCollection[domain.Certificate](store, KeyCertificates)}
}

func (r *CertificatesRepoImpl) find(ctx context.Context, match func(*domain.Certificate) bool) (*domain.Certificate, error) {
	certs, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range certs {
		if match(&certs[i]) {
			return &certs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CertificatesRepoImpl) filter(ctx context.Context, match func(*domain.Certificate) bool) ([]domain.Certificate, error) {
	certs, err := r.c.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Certificate, 0)
	for i := range certs {
		if match(&certs[i]) {
			out = append(out, certs[i])
		}
	}
	return out, nil
}

func (r *CertificatesRepoImpl) Get(ctx context.Context, id string) (*domain.Certificate, error) {
	return r.find(ctx, func(c *domain.Certificate) bool { return c.ID == id })
}

func (r *CertificatesRepoImpl) FindByVerificationCode(ctx context.Context, code string) (*domain.Certificate, error) {
	return r.find(ctx, func(c *domain.Certificate) bool { return c.VerificationCode == code })
}

func (r *CertificatesRepoImpl) ListByParticipant(ctx context.Context, participantID string) ([]domain.Certificate, error) {
	return r.filter(ctx, func(c *domain.Certificate) bool { return c.ParticipantID == participantID })
}

func (r *CertificatesRepoImpl) ListByEvent(ctx context.Context, eventID int64) ([]domain.Certificate, error) {
	return r.filter(ctx, func(c *domain.Certificate) bool { return c.EventID == eventID })
}

func (r *CertificatesRepoImpl) CreateIfAbsent(ctx context.Context, c *domain.Certificate) (*domain.Certificate, bool, error) {
	stored := c
	created := false
	err := r.c.mutate(ctx, func(certs []domain.Certificate) ([]domain.Certificate, bool, error) {
		for i := range certs {
			if certs[i].EventID == c.EventID && certs[i].ParticipantID == c.ParticipantID {
				existing := certs[i]
				stored = &existing
				return nil, false, nil
			}
			if certs[i].VerificationCode == c.VerificationCode {
				return nil, false, domain.ErrVerificationCodeTaken
			}
		}
		created = true
		return append(certs, *c), true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *CertificatesRepoImpl) Update(ctx context.Context, id string, fn func(*domain.Certificate) error) (*domain.Certificate, error) {
	var out *domain.Certificate
	err := r.c.mutate(ctx, func(certs []domain.Certificate) ([]domain.Certificate, bool, error) {
		for i := range certs {
			if certs[i].ID != id {
				continue
			}
			c := certs[i]
			if err := fn(&c); err != nil {
				return nil, false, err
			}
			certs[i] = c
			out = &c
			return certs, true, nil
		}
		return nil, false, domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ CertificatesRepo = (*CertificatesRepoImpl)(nil)
