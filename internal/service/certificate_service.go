package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/repo/kv"
	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

type CertificateService interface {
	// Issue is idempotent per participant and event: a second call returns
	// the certificate already issued.
	Issue(ctx context.Context, actor domain.Actor, eventID int64, participantID string) (*domain.Certificate, error)
	Verify(ctx context.Context, code string) (*domain.Certificate, error)
	ListForParticipant(ctx context.Context, participantID string) ([]domain.Certificate, error)
	ListForEvent(ctx context.Context, actor domain.Actor, eventID int64) ([]domain.Certificate, error)
	Revoke(ctx context.Context, id string) (*domain.Certificate, error)
}

type certificateService struct {
	clock
	certRepo  kv.CertificatesRepo
	eventRepo kv.EventsRepo
	userRepo  kv.UsersRepo
	eventBus  events.EventBus
}

func NewCertificateService(
	certRepo kv.CertificatesRepo,
	eventRepo kv.EventsRepo,
	userRepo kv.UsersRepo,
	eventBus events.EventBus,
) CertificateService {
	return &certificateService{
		certRepo:  certRepo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		eventBus:  eventBus,
	}
}

func (s *certificateService) Issue(ctx context.Context, actor domain.Actor, eventID int64, participantID string) (*domain.Certificate, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(event.Organizer) {
		return nil, domain.ErrForbidden
	}
	user, err := s.userRepo.FindByUsername(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if !user.IsRegisteredFor(eventID) {
		return nil, domain.ErrNotRegistered
	}

	name := user.FullName
	if name == "" {
		name = user.Username
	}
	issued := s.timeNow()
	cert := &domain.Certificate{
		ID:                uuid.NewString(),
		EventID:           eventID,
		ParticipantID:     participantID,
		ParticipantName:   name,
		EventTitle:        event.Title,
		IssueDate:         issued,
		CertificateNumber: domain.CertificateNumber(eventID, participantID, issued),
		IsValid:           true,
	}

	// The repository settles both the one-per-participant rule and code
	// uniqueness under its lock; a code clash just draws again.
	var (
		stored  *domain.Certificate
		created bool
	)
	for range 5 {
		cert.VerificationCode = newVerificationCode()
		stored, created, err = s.certRepo.CreateIfAbsent(ctx, cert)
		if !errors.Is(err, domain.ErrVerificationCodeTaken) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save certificate: %w", err)
	}
	if !created {
		return stored, nil
	}

	logger.InfoContext(ctx, "Certificate issued", "certificate_id", cert.ID, "number", cert.CertificateNumber, "event_id", eventID, "participant", participantID)
	publish(ctx, s.eventBus, events.CertificateIssued, events.CertificateIssuedEvent{
		CertificateID:     cert.ID,
		EventID:           eventID,
		EventTitle:        event.Title,
		Username:          user.Username,
		Email:             user.Email,
		FullName:          user.FullName,
		CertificateNumber: cert.CertificateNumber,
		VerificationCode:  cert.VerificationCode,
		IssuedAt:          issued,
	})
	return cert, nil
}

// newVerificationCode draws 8 uppercase hex characters.
func newVerificationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *certificateService) Verify(ctx context.Context, code string) (*domain.Certificate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrNotFound
	}
	return s.certRepo.FindByVerificationCode(ctx, code)
}

func (s *certificateService) ListForParticipant(ctx context.Context, participantID string) ([]domain.Certificate, error) {
	return s.certRepo.ListByParticipant(ctx, participantID)
}

func (s *certificateService) ListForEvent(ctx context.Context, actor domain.Actor, eventID int64) ([]domain.Certificate, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(event.Organizer) {
		return nil, domain.ErrForbidden
	}
	return s.certRepo.ListByEvent(ctx, eventID)
}

func (s *certificateService) Revoke(ctx context.Context, id string) (*domain.Certificate, error) {
	cert, err := s.certRepo.Update(ctx, id, func(c *domain.Certificate) error {
		if !c.IsValid {
			return domain.ErrCertificateRevoked
		}
		c.IsValid = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Certificate revoked", "certificate_id", id)
	publish(ctx, s.eventBus, events.CertificateRevoked, events.CertificateRevokedEvent{
		CertificateID: cert.ID,
		EventID:       cert.EventID,
		Username:      cert.ParticipantID,
		RevokedAt:     s.timeNow(),
	})
	return cert, nil
}
