package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/repo/kv"
	"github.com/nthung-2k5/eventsphere/pkg/config"
	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

// QRInspection is the public answer to "is this payload one of ours".
type QRInspection struct {
	WellFormed bool   `json:"wellFormed"`
	Authentic  bool   `json:"authentic"`
	EventID    int64  `json:"eventId,omitempty"`
	UserID     string `json:"userId,omitempty"`
}

type CheckInService interface {
	// Generate returns the user's pending code for the event, creating one
	// when none is usable.
	Generate(ctx context.Context, username string, eventID int64) (*domain.QRCode, error)
	// CheckIn transitions a pending code. It returns false when the code has
	// expired; terminal codes fail with ErrAlreadyCheckedIn or ErrQRCodeExpired.
	CheckIn(ctx context.Context, actor domain.Actor, qrID string) (*domain.QRCode, bool, error)
	CheckInByPayload(ctx context.Context, actor domain.Actor, data string) (*domain.QRCode, bool, error)
	Inspect(data string) QRInspection
	ListForEvent(ctx context.Context, actor domain.Actor, eventID int64) ([]domain.QRCode, error)
}

type checkInService struct {
	clock
	qrRepo    kv.QRCodesRepo
	eventRepo kv.EventsRepo
	userRepo  kv.UsersRepo
	eventBus  events.EventBus
	config    *config.Config
}

func NewCheckInService(
	qrRepo kv.QRCodesRepo,
	eventRepo kv.EventsRepo,
	userRepo kv.UsersRepo,
	eventBus events.EventBus,
	config *config.Config,
) CheckInService {
	return &checkInService{
		qrRepo:    qrRepo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		eventBus:  eventBus,
		config:    config,
	}
}

func (s *checkInService) Generate(ctx context.Context, username string, eventID int64) (*domain.QRCode, error) {
	if username == "" {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := s.eventRepo.Get(ctx, eventID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !user.IsRegisteredFor(eventID) {
		return nil, domain.ErrNotRegistered
	}

	now := s.timeNow()
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	token := domain.SignQRToken(s.config.CheckIn.QRSigningSecret, eventID, username, now)
	qr := &domain.QRCode{
		ID:              uuid.NewString(),
		EventID:         eventID,
		UserID:          username,
		ParticipantName: name,
		QRCodeData:      domain.BuildQRPayload(eventID, username, token, now),
		CheckInStatus:   domain.CheckInPending,
		CreatedAt:       now,
	}
	if ttl := s.config.CheckIn.QRCodeTTL; ttl > 0 {
		expires := now.Add(ttl)
		qr.ExpiresAt = &expires
	}
	stored, created, err := s.qrRepo.CreatePending(ctx, qr, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save qr code: %w", err)
	}
	if created {
		logger.InfoContext(ctx, "QR code generated", "qr_id", qr.ID, "event_id", eventID, "username", username)
	}
	return stored, nil
}

func (s *checkInService) CheckIn(ctx context.Context, actor domain.Actor, qrID string) (*domain.QRCode, bool, error) {
	current, err := s.qrRepo.Get(ctx, qrID)
	if err != nil {
		return nil, false, err
	}
	if err := s.authorizeEvent(ctx, actor, current.EventID); err != nil {
		return nil, false, err
	}

	var ok bool
	now := s.timeNow()
	qr, err := s.qrRepo.Update(ctx, qrID, func(q *domain.QRCode) error {
		switch q.CheckInStatus {
		case domain.CheckInCheckedIn:
			return domain.ErrAlreadyCheckedIn
		case domain.CheckInExpired:
			return domain.ErrQRCodeExpired
		}
		ok = q.CheckIn(now)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	subject := events.CheckInCompleted
	if !ok {
		subject = events.CheckInExpired
	}
	logger.InfoContext(ctx, "QR check-in", "qr_id", qr.ID, "event_id", qr.EventID, "status", qr.CheckInStatus, "by", actor.Username)
	publish(ctx, s.eventBus, subject, events.CheckInEvent{
		QRCodeID: qr.ID,
		EventID:  qr.EventID,
		Username: qr.UserID,
		Status:   string(qr.CheckInStatus),
		At:       now,
	})
	return qr, ok, nil
}

func (s *checkInService) CheckInByPayload(ctx context.Context, actor domain.Actor, data string) (*domain.QRCode, bool, error) {
	payload, err := domain.ParseQRPayload(data)
	if err != nil {
		return nil, false, err
	}
	if !domain.VerifyQRToken(s.config.CheckIn.QRSigningSecret, payload) {
		return nil, false, domain.ErrQRTokenMismatch
	}
	qr, err := s.qrRepo.FindByPayload(ctx, data)
	if err != nil {
		return nil, false, err
	}
	return s.CheckIn(ctx, actor, qr.ID)
}

func (s *checkInService) Inspect(data string) QRInspection {
	payload, err := domain.ParseQRPayload(data)
	if err != nil {
		return QRInspection{WellFormed: domain.ValidateQRCode(data)}
	}
	return QRInspection{
		WellFormed: true,
		Authentic:  domain.VerifyQRToken(s.config.CheckIn.QRSigningSecret, payload),
		EventID:    payload.EventID,
		UserID:     payload.UserID,
	}
}

func (s *checkInService) ListForEvent(ctx context.Context, actor domain.Actor, eventID int64) ([]domain.QRCode, error) {
	if err := s.authorizeEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.qrRepo.ListByEvent(ctx, eventID)
}

// authorizeEvent allows admins and the event's organizer. A code whose event
// was deleted can only be handled by an admin.
func (s *checkInService) authorizeEvent(ctx context.Context, actor domain.Actor, eventID int64) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	event, err := s.eventRepo.Get(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrForbidden
	}
	if err != nil {
		return err
	}
	if !actor.CanManage(event.Organizer) {
		return domain.ErrForbidden
	}
	return nil
}
