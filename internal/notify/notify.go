// Package notify turns domain events into emails.
package notify

import (
	"encoding/json"

	"github.com/nthung-2k5/eventsphere/internal/platform/mailer"
	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

const queueGroup = "notify"

type Notifier struct {
	mailer mailer.Service
}

func New(m mailer.Service) *Notifier {
	return &Notifier{mailer: m}
}

// Start subscribes in the notify queue group so each event is mailed once
// across replicas.
func (n *Notifier) Start(bus events.Subscriber) error {
	subs := map[string]func(*events.Message){
		events.UserRegistered:      n.onUserRegistered,
		events.RegistrationCreated: n.onRegistrationCreated,
		events.CertificateIssued:   n.onCertificateIssued,
	}
	for subject, handler := range subs {
		if err := bus.QueueSubscribe(subject, queueGroup, handler); err != nil {
			return err
		}
	}
	logger.Info("Notifier subscribed", "subjects", len(subs))
	return nil
}

func (n *Notifier) onUserRegistered(msg *events.Message) {
	var e events.UserRegisteredEvent
	if !decode(msg, &e) || e.Email == "" {
		return
	}
	m := mailer.WelcomeMessage(e.FullName, e.Username, e.Role)
	n.send(msg, e.Email, e.FullName, m)
}

func (n *Notifier) onRegistrationCreated(msg *events.Message) {
	var e events.RegistrationCreatedEvent
	if !decode(msg, &e) || e.Email == "" {
		return
	}
	m := mailer.RegistrationMessage(e.FullName, e.EventTitle, e.EventDate, e.Location)
	n.send(msg, e.Email, e.FullName, m)
}

func (n *Notifier) onCertificateIssued(msg *events.Message) {
	var e events.CertificateIssuedEvent
	if !decode(msg, &e) || e.Email == "" {
		return
	}
	m := mailer.CertificateMessage(e.FullName, e.EventTitle, e.CertificateNumber, e.VerificationCode)
	n.send(msg, e.Email, e.FullName, m)
}

func (n *Notifier) send(msg *events.Message, to, name string, m mailer.Message) {
	id, err := n.mailer.Send(to, name, m.Subject, m.Text, m.HTML)
	if err != nil {
		logger.Error("Failed to send notification", "error", err, "subject", msg.Subject, "message_id", msg.ID)
		return
	}
	logger.Info("Notification sent", "subject", msg.Subject, "to", to, "mail_id", id)
}

func decode(msg *events.Message, v interface{}) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		logger.Error("Failed to decode event", "error", err, "subject", msg.Subject, "message_id", msg.ID)
		return false
	}
	return true
}
