// Package service holds the stores and workflows behind the HTTP API. Every
// mutation goes through a kv repository and is written through immediately;
// domain events are published after the write succeeds.
package service

import (
	"context"
	"time"

	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

// publish never fails the caller; a lost notification is logged.
func publish(ctx context.Context, bus events.EventBus, subject string, payload interface{}) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}

// clock is embedded by services so tests can pin the time.
type clock struct {
	now func() time.Time
}

func (c *clock) timeNow() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}
