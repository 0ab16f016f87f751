package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/repo/kv"
	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

type FeedbackService interface {
	// Submit stores one entry per user and event; a second submission
	// replaces the first.
	Submit(ctx context.Context, username string, eventID int64, req *domain.SubmitFeedbackRequest) (*domain.Feedback, error)
	List(ctx context.Context, eventID int64) ([]domain.Feedback, error)
	Average(ctx context.Context, eventID int64) (float64, error)
	Stats(ctx context.Context, eventID int64) (*domain.FeedbackStats, error)
	// MarkHelpful counts one vote per user on an approved event's feedback.
	MarkHelpful(ctx context.Context, username string, eventID int64, feedbackID string) (*domain.Feedback, error)
}

type feedbackService struct {
	clock
	feedbackRepo kv.FeedbackRepo
	eventRepo    kv.EventsRepo
	userRepo     kv.UsersRepo
	eventBus     events.EventBus
}

func NewFeedbackService(
	feedbackRepo kv.FeedbackRepo,
	eventRepo kv.EventsRepo,
	userRepo kv.UsersRepo,
	eventBus events.EventBus,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		eventBus:     eventBus,
	}
}

func (s *feedbackService) Submit(ctx context.Context, username string, eventID int64, req *domain.SubmitFeedbackRequest) (*domain.Feedback, error) {
	if username == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := req.Validate(); err != nil {
		return nil, err
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

	name := user.FullName
	if name == "" {
		name = user.Username
	}
	saved, created, err := s.feedbackRepo.Upsert(ctx, &domain.Feedback{
		ID:        uuid.NewString(),
		EventID:   eventID,
		UserID:    user.Username,
		UserName:  name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Timestamp: s.timeNow(),
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Feedback submitted", "event_id", eventID, "username", username, "rating", saved.Rating, "created", created)
	publish(ctx, s.eventBus, events.FeedbackSubmitted, events.FeedbackSubmittedEvent{
		FeedbackID:  saved.ID,
		EventID:     eventID,
		Username:    username,
		Rating:      saved.Rating,
		Created:     created,
		SubmittedAt: saved.Timestamp,
	})
	return saved, nil
}

func (s *feedbackService) List(ctx context.Context, eventID int64) ([]domain.Feedback, error) {
	if _, err := s.eventRepo.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.feedbackRepo.List(ctx, eventID)
}

func (s *feedbackService) Average(ctx context.Context, eventID int64) (float64, error) {
	list, err := s.List(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return domain.AverageRating(list), nil
}

func (s *feedbackService) Stats(ctx context.Context, eventID int64) (*domain.FeedbackStats, error) {
	list, err := s.List(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stats := domain.ComputeFeedbackStats(list)
	return &stats, nil
}

func (s *feedbackService) MarkHelpful(ctx context.Context, username string, eventID int64, feedbackID string) (*domain.Feedback, error) {
	if username == "" {
		return nil, domain.ErrUnauthenticated
	}
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventApproved {
		return nil, domain.ErrNotFound
	}
	return s.feedbackRepo.AddHelpfulVote(ctx, eventID, feedbackID, username)
}
