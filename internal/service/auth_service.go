package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/internal/repo/kv"
	"github.com/nthung-2k5/eventsphere/pkg/auth"
	"github.com/nthung-2k5/eventsphere/pkg/config"
	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *domain.Profile `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*LoginResult, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	// CurrentUser resolves a session to its active user.
	CurrentUser(ctx context.Context, sessionID string) (*domain.User, error)
	// RegisterEvent adds eventID to the user's registrations. added is false
	// when the user was already registered.
	RegisterEvent(ctx context.Context, username string, eventID int64) (user *domain.User, added bool, err error)
	GetUser(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context, role domain.Role) ([]domain.Profile, error)
	SetRole(ctx context.Context, username string, role domain.Role) (*domain.Profile, error)
	SetActive(ctx context.Context, username string, active bool) (*domain.Profile, error)
	// EnsureAdmin creates the bootstrap admin account unless the username
	// is already taken.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authService struct {
	clock
	userRepo    kv.UsersRepo
	eventRepo   kv.EventsRepo
	sessionRepo kv.SessionsRepo
	eventBus    events.EventBus
	config      *config.Config

	// regMu orders registrations so the capacity check and the two writes
	// are not interleaved.
	regMu sync.Mutex
}

func NewAuthService(
	userRepo kv.UsersRepo,
	eventRepo kv.EventsRepo,
	sessionRepo kv.SessionsRepo,
	eventBus events.EventBus,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		sessionRepo: sessionRepo,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*LoginResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:         req.Username,
		PasswordHash:     passwordHash,
		Role:             req.Role,
		RegisteredEvents: []int64{},
		FullName:         req.FullName,
		Email:            req.Email,
		Department:       req.Department,
		IsActive:         true,
		CreatedAt:        s.timeNow(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "User registered", "username", user.Username, "role", user.Role)

	publish(ctx, s.eventBus, events.UserRegistered, events.UserRegisteredEvent{
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         string(user.Role),
		RegisteredAt: user.CreatedAt,
	})

	return s.startSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*LoginResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByIdentifier(ctx, req.Identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	return s.startSession(ctx, user)
}

func (s *authService) startSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	now := s.timeNow()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Auth.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session, now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := auth.NewSessionToken(user.Username, string(user.Role), session.ID, s.config.Auth.JWTSecret, s.config.Auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user.ToProfile()}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthenticated
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *authService) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.timeNow()) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.userRepo.FindByUsername(ctx, session.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}

func (s *authService) RegisterEvent(ctx context.Context, username string, eventID int64) (*domain.User, bool, error) {
	if username == "" {
		return nil, false, domain.ErrUnauthenticated
	}

	s.regMu.Lock()
	defer s.regMu.Unlock()

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, false, err
	}
	if user.IsRegisteredFor(eventID) {
		return user, false, nil
	}

	event, err := s.eventRepo.Update(ctx, eventID, func(e *domain.Event) error {
		if e.Status != domain.EventApproved {
			return domain.ErrEventNotOpen
		}
		if !e.HasCapacity() {
			return domain.ErrEventFull
		}
		e.CurrentParticipants++
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// DeleteEvent removes the event before it prunes registrations under the
	// users lock, so a registration saved while the event exists is pruned.
	var eventGone bool
	updated, err := s.userRepo.Update(ctx, username, func(u *domain.User) error {
		if _, err := s.eventRepo.Get(ctx, eventID); err != nil {
			eventGone = errors.Is(err, domain.ErrNotFound)
			return err
		}
		u.AddRegistration(eventID)
		return nil
	})
	if err != nil {
		if eventGone {
			return nil, false, domain.ErrNotFound
		}
		if _, rbErr := s.eventRepo.Update(ctx, eventID, func(e *domain.Event) error {
			e.CurrentParticipants--
			return nil
		}); rbErr != nil {
			logger.ErrorContext(ctx, "Failed to roll back participant count", "error", rbErr, "event_id", eventID)
		}
		return nil, false, fmt.Errorf("failed to save registration: %w", err)
	}

	logger.InfoContext(ctx, "User registered for event", "username", username, "event_id", eventID)
	publish(ctx, s.eventBus, events.RegistrationCreated, events.RegistrationCreatedEvent{
		EventID:      event.ID,
		EventTitle:   event.Title,
		EventDate:    eventDateLabel(event),
		Location:     event.Location,
		Username:     updated.Username,
		Email:        updated.Email,
		FullName:     updated.FullName,
		RegisteredAt: s.timeNow(),
	})
	return updated, true, nil
}

func (s *authService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

func (s *authService) ListUsers(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Profile, 0, len(users))
	for i := range users {
		if role != "" && users[i].Role != role {
			continue
		}
		out = append(out, *users[i].ToProfile())
	}
	return out, nil
}

func (s *authService) SetRole(ctx context.Context, username string, role domain.Role) (*domain.Profile, error) {
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, domain.ErrInvalidRole
	}
	user, err := s.userRepo.Update(ctx, username, func(u *domain.User) error {
		u.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Tokens carry the role, so existing sessions must sign in again.
	if _, err := s.sessionRepo.DeleteForUser(ctx, username); err != nil {
		logger.WarnContext(ctx, "Failed to drop sessions after role change", "error", err, "username", username)
	}
	logger.InfoContext(ctx, "User role changed", "username", username, "role", role)
	return user.ToProfile(), nil
}

func (s *authService) SetActive(ctx context.Context, username string, active bool) (*domain.Profile, error) {
	user, err := s.userRepo.Update(ctx, username, func(u *domain.User) error {
		u.IsActive = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !active {
		if _, err := s.sessionRepo.DeleteForUser(ctx, username); err != nil {
			logger.WarnContext(ctx, "Failed to drop sessions of disabled user", "error", err, "username", username)
		}
	}
	logger.InfoContext(ctx, "User activation changed", "username", username, "active", active)
	return user.ToProfile(), nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	passwordHash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.userRepo.Create(ctx, &domain.User{
		Username:         username,
		PasswordHash:     passwordHash,
		Role:             domain.RoleAdmin,
		RegisteredEvents: []int64{},
		IsActive:         true,
		CreatedAt:        s.timeNow(),
	})
	if errors.Is(err, domain.ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Bootstrap admin created", "username", username)
	return nil
}

func eventDateLabel(e *domain.Event) string {
	if e.StartDate != "" && e.EndDate != "" && e.StartDate != e.EndDate {
		return e.StartDate + " to " + e.EndDate
	}
	if e.StartDate != "" {
		return e.StartDate
	}
	return e.Date
}
