package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

var ErrBusClosed = errors.New("event bus closed")

// LocalEventBus delivers in-process. Each delivery runs on its own goroutine;
// Close waits for in-flight handlers.
type LocalEventBus struct {
	mu     sync.RWMutex
	subs   []*localSub
	groups map[string]int // round-robin cursor per subject+queue
	closed bool
	wg     sync.WaitGroup
}

type localSub struct {
	subject string
	queue   string
	handler func(msg *Message)
}

func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{groups: make(map[string]int)}
}

func (b *LocalEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	msg := &Message{Subject: subject, Data: payload, Timestamp: time.Now(), ID: uuid.NewString()}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	queued := make(map[string][]*localSub)
	for _, s := range b.subs {
		if !subjectMatches(s.subject, subject) {
			continue
		}
		if s.queue == "" {
			b.dispatch(s, msg)
			continue
		}
		group := s.subject + "\x00" + s.queue
		queued[group] = append(queued[group], s)
	}
	for group, members := range queued {
		i := b.groups[group] % len(members)
		b.groups[group]++
		b.dispatch(members[i], msg)
	}
	return nil
}

// dispatch hands each handler its own copy of msg. Callers hold mu.
func (b *LocalEventBus) dispatch(s *localSub, msg *Message) {
	m := *msg
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		s.handler(&m)
	}()
}

func (b *LocalEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	return b.QueueSubscribe(subject, "", handler)
}

func (b *LocalEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.subs = append(b.subs, &localSub{subject: subject, queue: queue, handler: handler})
	return nil
}

func (b *LocalEventBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
	return nil
}

// subjectMatches applies NATS token rules: "*" matches one token, a final
// ">" matches one or more.
func subjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, p := range pt {
		if p == ">" && i == len(pt)-1 {
			return len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}

var _ EventBus = (*LocalEventBus)(nil)
