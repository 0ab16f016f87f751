package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/repo/kv"
	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

type EventService interface {
	AddEvent(ctx context.Context, organizer string, req *domain.CreateEventRequest) (*domain.Event, error)
	UpdateEvent(ctx context.Context, actor domain.Actor, id int64, patch domain.EventPatch) (*domain.Event, error)
	// DeleteEvent also removes the event from every user's registrations and
	// drops its feedback. Issued certificates are kept.
	DeleteEvent(ctx context.Context, actor domain.Actor, id int64) error
	ApproveEvent(ctx context.Context, id int64) (*domain.Event, error)
	RejectEvent(ctx context.Context, id int64) (*domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.EventView, error)
	ListEvents(ctx context.Context, filter domain.EventFilter, page domain.Page) (*domain.EventPage, error)
	// ListRegistered returns the events username is registered for.
	ListRegistered(ctx context.Context, username string) ([]domain.EventView, error)
}

type eventService struct {
	clock
	eventRepo    kv.EventsRepo
	userRepo     kv.UsersRepo
	feedbackRepo kv.FeedbackRepo
	eventBus     events.EventBus
}

func NewEventService(
	eventRepo kv.EventsRepo,
	userRepo kv.UsersRepo,
	feedbackRepo kv.FeedbackRepo,
	eventBus events.EventBus,
) EventService {
	return &eventService{
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		feedbackRepo: feedbackRepo,
		eventBus:     eventBus,
	}
}

func (s *eventService) AddEvent(ctx context.Context, organizer string, req *domain.CreateEventRequest) (*domain.Event, error) {
	if organizer == "" {
		return nil, domain.ErrUnauthenticated
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.timeNow()
	event, err := s.eventRepo.Create(ctx, &domain.Event{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Date:            req.Date,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Organizer:       organizer,
		Status:          domain.EventPending,
		Category:        req.Category,
		Department:      req.Department,
		MaxParticipants: req.MaxParticipants,
		Tags:            req.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logger.InfoContext(ctx, "Event created", "event_id", event.ID, "organizer", organizer)
	publish(ctx, s.eventBus, events.EventCreated, events.EventCreatedEvent{
		EventID:   event.ID,
		Title:     event.Title,
		Organizer: event.Organizer,
		CreatedAt: event.CreatedAt,
	})
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor domain.Actor, id int64, patch domain.EventPatch) (*domain.Event, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var changes []string
	event, err := s.eventRepo.Update(ctx, id, func(e *domain.Event) error {
		if !actor.CanManage(e.Organizer) {
			return domain.ErrForbidden
		}
		draft := *e
		changes = patch.Apply(&draft)
		if len(changes) == 0 {
			return nil
		}
		if start, end, ok := draft.Span(); !ok || end.Before(start) {
			return fmt.Errorf("%w: event schedule is invalid", domain.ErrInvalidInput)
		}
		if draft.MaxParticipants > 0 && draft.MaxParticipants < draft.CurrentParticipants {
			return fmt.Errorf("%w: maxParticipants is below current registrations", domain.ErrInvalidInput)
		}
		draft.UpdatedAt = s.timeNow()
		*e = draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		logger.InfoContext(ctx, "Event updated", "event_id", id, "changes", changes)
		publish(ctx, s.eventBus, events.EventUpdated, events.EventUpdatedEvent{
			EventID:   id,
			UpdatedBy: actor.Username,
			Changes:   changes,
			UpdatedAt: event.UpdatedAt,
		})
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, actor domain.Actor, id int64) error {
	event, err := s.eventRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(event.Organizer) {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}

	removed, err := s.userRepo.RemoveEventRegistrations(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to prune registrations of deleted event", "error", err, "event_id", id)
	}
	if err := s.feedbackRepo.DeleteEvent(ctx, id); err != nil {
		logger.ErrorContext(ctx, "Failed to drop feedback of deleted event", "error", err, "event_id", id)
	}

	logger.InfoContext(ctx, "Event deleted", "event_id", id, "by", actor.Username, "removed_registrations", removed)
	publish(ctx, s.eventBus, events.EventDeleted, events.EventDeletedEvent{
		EventID:              id,
		DeletedBy:            actor.Username,
		RemovedRegistrations: removed,
		DeletedAt:            s.timeNow(),
	})
	return nil
}

func (s *eventService) ApproveEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.setStatus(ctx, id, domain.EventApproved, events.EventApproved)
}

func (s *eventService) RejectEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.setStatus(ctx, id, domain.EventRejected, events.EventRejected)
}

// setStatus applies the transition unconditionally, even from a terminal status.
func (s *eventService) setStatus(ctx context.Context, id int64, status domain.EventStatus, subject string) (*domain.Event, error) {
	event, err := s.eventRepo.Update(ctx, id, func(e *domain.Event) error {
		e.Status = status
		e.UpdatedAt = s.timeNow()
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Event status changed", "event_id", id, "status", status)
	publish(ctx, s.eventBus, subject, events.EventStatusChangedEvent{
		EventID:   event.ID,
		Title:     event.Title,
		Organizer: event.Organizer,
		Status:    string(status),
		ChangedAt: event.UpdatedAt,
	})
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*domain.EventView, error) {
	event, err := s.eventRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := domain.NewEventView(event, s.timeNow())
	return &view, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, page domain.Page) (*domain.EventPage, error) {
	all, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	today := s.timeNow()
	matched := make([]domain.EventView, 0, len(all))
	for i := range all {
		v := domain.NewEventView(&all[i], today)
		if filter.Match(&v) {
			matched = append(matched, v)
		}
	}
	page = page.Normalize()
	return &domain.EventPage{
		Items:    domain.Paginate(matched, page),
		Total:    len(matched),
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

func (s *eventService) ListRegistered(ctx context.Context, username string) ([]domain.EventView, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	out := make([]domain.EventView, 0, len(user.RegisteredEvents))
	today := s.timeNow()
	for _, id := range user.RegisteredEvents {
		event, err := s.eventRepo.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, domain.NewEventView(event, today))
	}
	return out, nil
}
