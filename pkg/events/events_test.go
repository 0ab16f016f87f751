package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nthung-2k5/eventsphere/pkg/config"
)

func TestSubjectMatches(t *testing.T) {
	tests := []struct {
		pattern, subject string
		want             bool
	}{
		{"event.created", "event.created", true},
		{"event.created", "event.updated", false},
		{"event.*", "event.approved", true},
		{"event.*", "event.approved.extra", false},
		{"event.>", "event.approved.extra", true},
		{"event.>", "event", false},
		{">", "certificate.issued", true},
		{"*.issued", "certificate.issued", true},
	}
	for _, tt := range tests {
		if got := subjectMatches(tt.pattern, tt.subject); got != tt.want {
			t.Errorf("subjectMatches(%q, %q) = %v, want %v", tt.pattern, tt.subject, got, tt.want)
		}
	}
}

func TestLocalEventBusDelivers(t *testing.T) {
	bus := NewLocalEventBus()

	var mu sync.Mutex
	var got []RegistrationCreatedEvent
	_ = bus.Subscribe("registration.*", func(msg *Message) {
		var e RegistrationCreatedEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			t.Errorf("unmarshal: %v", err)
			return
		}
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	if err := bus.Publish(context.Background(), RegistrationCreated, RegistrationCreatedEvent{EventID: 3, Username: "alice"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	_ = bus.Publish(context.Background(), EventCreated, EventCreatedEvent{EventID: 4})
	_ = bus.Close()

	if len(got) != 1 || got[0].EventID != 3 || got[0].Username != "alice" {
		t.Errorf("delivered = %+v", got)
	}
}

func TestLocalEventBusQueueGroup(t *testing.T) {
	bus := NewLocalEventBus()
	var a, b, plain atomic.Int32
	_ = bus.QueueSubscribe("feedback.submitted", "workers", func(*Message) { a.Add(1) })
	_ = bus.QueueSubscribe("feedback.submitted", "workers", func(*Message) { b.Add(1) })
	_ = bus.Subscribe("feedback.submitted", func(*Message) { plain.Add(1) })

	for i := 0; i < 4; i++ {
		_ = bus.Publish(context.Background(), FeedbackSubmitted, FeedbackSubmittedEvent{Rating: 5})
	}
	_ = bus.Close()

	if a.Load()+b.Load() != 4 {
		t.Errorf("group deliveries = %d + %d, want 4 total", a.Load(), b.Load())
	}
	if a.Load() != 2 || b.Load() != 2 {
		t.Errorf("round robin = %d/%d, want 2/2", a.Load(), b.Load())
	}
	if plain.Load() != 4 {
		t.Errorf("plain subscriber got %d, want 4", plain.Load())
	}
}

func TestLocalEventBusClosed(t *testing.T) {
	bus := NewLocalEventBus()
	_ = bus.Close()
	if err := bus.Publish(context.Background(), EventCreated, nil); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Publish after Close err = %v", err)
	}
}

func TestRoutingKey(t *testing.T) {
	if got := routingKey("event.>"); got != "event.#" {
		t.Errorf("routingKey(event.>) = %s", got)
	}
	if got := routingKey("event.created"); got != "event.created" {
		t.Errorf("routingKey(event.created) = %s", got)
	}
}

func TestGroupQueuePerSubject(t *testing.T) {
	subjects := []string{UserRegistered, RegistrationCreated, CertificateIssued}
	seen := map[string]bool{}
	for _, s := range subjects {
		seen[groupQueue("notify", s)] = true
	}
	if len(seen) != len(subjects) {
		t.Errorf("queue names collide: %v", seen)
	}
	if got := groupQueue("notify", "event.>"); got != "notify.event.#" {
		t.Errorf("groupQueue(notify, event.>) = %s", got)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := New(config.BusConfig{Driver: "kafka"}); err == nil {
		t.Fatal("expected error")
	}
	bus, err := New(config.BusConfig{Driver: "local"})
	if err != nil {
		t.Fatalf("New(local): %v", err)
	}
	_ = bus.Close()
}
