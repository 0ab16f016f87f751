package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nthung-2k5/eventsphere/pkg/events"
)

type sentMail struct {
	to, subject, text string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(toEmail, _, subject, text, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject, text: text})
	return "mock-id", m.err
}

func TestNotifierMailsOnEvents(t *testing.T) {
	bus := events.NewLocalEventBus()
	mm := &mockMailer{}
	if err := New(mm).Start(bus); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx := context.Background()

	_ = bus.Publish(ctx, events.RegistrationCreated, events.RegistrationCreatedEvent{
		EventID: 1, EventTitle: "Go Workshop", Username: "alice", Email: "alice@uni.edu",
	})
	_ = bus.Publish(ctx, events.CertificateIssued, events.CertificateIssuedEvent{
		EventTitle: "Go Workshop", Username: "alice", Email: "alice@uni.edu",
		CertificateNumber: "EVT001-2025-ALI0001", VerificationCode: "ABCDEF12",
	})
	// No address: nothing to send.
	_ = bus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{Username: "bob"})
	// Not subscribed.
	_ = bus.Publish(ctx, events.EventCreated, events.EventCreatedEvent{EventID: 1})
	_ = bus.Close()

	if len(mm.sent) != 2 {
		t.Fatalf("sent %d mails, want 2: %+v", len(mm.sent), mm.sent)
	}
	var sawCert bool
	for _, m := range mm.sent {
		if m.to != "alice@uni.edu" {
			t.Errorf("recipient = %s", m.to)
		}
		if strings.Contains(m.text, "ABCDEF12") {
			sawCert = true
		}
	}
	if !sawCert {
		t.Error("certificate mail missing verification code")
	}
}

func TestNotifierSurvivesMailerErrors(t *testing.T) {
	bus := events.NewLocalEventBus()
	mm := &mockMailer{err: errors.New("smtp down")}
	_ = New(mm).Start(bus)
	_ = bus.Publish(context.Background(), events.UserRegistered, events.UserRegisteredEvent{Username: "a", Email: "a@uni.edu"})
	_ = bus.Close()
	if len(mm.sent) != 1 {
		t.Errorf("attempts = %d", len(mm.sent))
	}
}

func TestNotifierIgnoresBadPayload(t *testing.T) {
	mm := &mockMailer{}
	n := New(mm)
	n.onCertificateIssued(&events.Message{Subject: events.CertificateIssued, Data: []byte("{not json")})
	if len(mm.sent) != 0 {
		t.Error("bad payload should not be mailed")
	}
}
