package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nthung-2k5/eventsphere/pkg/config"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

// New connects the bus selected by cfg.Driver.
func New(cfg config.BusConfig) (EventBus, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalEventBus(), nil
	case "nats":
		bus, err := NewNATSEventBus(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case "amqp":
		bus, err := NewAMQPEventBus(cfg.AMQPURL, cfg.Exchange)
		if err != nil {
			return nil, err
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown event bus %q", cfg.Driver)
	}
}

// Event types and subjects
const (
	// Account events
	UserRegistered = "user.registered"

	// Event lifecycle
	EventCreated  = "event.created"
	EventUpdated  = "event.updated"
	EventDeleted  = "event.deleted"
	EventApproved = "event.approved"
	EventRejected = "event.rejected"

	// Participation
	RegistrationCreated = "registration.created"
	CheckInCompleted    = "checkin.completed"
	CheckInExpired      = "checkin.expired"
	FeedbackSubmitted   = "feedback.submitted"

	// Certificates
	CertificateIssued  = "certificate.issued"
	CertificateRevoked = "certificate.revoked"
)

// Event payloads
type UserRegisteredEvent struct {
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type EventCreatedEvent struct {
	EventID   int64     `json:"event_id"`
	Title     string    `json:"title"`
	Organizer string    `json:"organizer"`
	CreatedAt time.Time `json:"created_at"`
}

type EventUpdatedEvent struct {
	EventID   int64     `json:"event_id"`
	UpdatedBy string    `json:"updated_by"`
	Changes   []string  `json:"changes"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EventDeletedEvent struct {
	EventID              int64     `json:"event_id"`
	DeletedBy            string    `json:"deleted_by"`
	RemovedRegistrations int       `json:"removed_registrations"`
	DeletedAt            time.Time `json:"deleted_at"`
}

// EventStatusChangedEvent is published on both event.approved and event.rejected.
type EventStatusChangedEvent struct {
	EventID   int64     `json:"event_id"`
	Title     string    `json:"title"`
	Organizer string    `json:"organizer"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type RegistrationCreatedEvent struct {
	EventID      int64     `json:"event_id"`
	EventTitle   string    `json:"event_title"`
	EventDate    string    `json:"event_date,omitempty"`
	Location     string    `json:"location,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type CheckInEvent struct {
	QRCodeID string    `json:"qr_code_id"`
	EventID  int64     `json:"event_id"`
	Username string    `json:"username"`
	Status   string    `json:"status"`
	At       time.Time `json:"at"`
}

type FeedbackSubmittedEvent struct {
	FeedbackID  string    `json:"feedback_id"`
	EventID     int64     `json:"event_id"`
	Username    string    `json:"username"`
	Rating      int       `json:"rating"`
	Created     bool      `json:"created"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type CertificateIssuedEvent struct {
	CertificateID     string    `json:"certificate_id"`
	EventID           int64     `json:"event_id"`
	EventTitle        string    `json:"event_title"`
	Username          string    `json:"username"`
	Email             string    `json:"email,omitempty"`
	FullName          string    `json:"full_name,omitempty"`
	CertificateNumber string    `json:"certificate_number"`
	VerificationCode  string    `json:"verification_code"`
	IssuedAt          time.Time `json:"issued_at"`
}

type CertificateRevokedEvent struct {
	CertificateID string    `json:"certificate_id"`
	EventID       int64     `json:"event_id"`
	Username      string    `json:"username"`
	RevokedAt     time.Time `json:"revoked_at"`
}
