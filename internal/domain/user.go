package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

type User struct {
	Username         string    `json:"username"`
	PasswordHash     string    `json:"passwordHash"`
	Role             Role      `json:"role"`
	RegisteredEvents []int64   `json:"registeredEvents"`
	FullName         string    `json:"fullName,omitempty"`
	Email            string    `json:"email,omitempty"`
	Department       string    `json:"department,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// IsRegisteredFor reports whether eventID is in the user's registrations.
func (u *User) IsRegisteredFor(eventID int64) bool {
	return slices.Contains(u.RegisteredEvents, eventID)
}

// AddRegistration adds eventID once. It returns false when already present.
func (u *User) AddRegistration(eventID int64) bool {
	if u.IsRegisteredFor(eventID) {
		return false
	}
	u.RegisteredEvents = append(u.RegisteredEvents, eventID)
	return true
}

// RemoveRegistration drops eventID and reports whether it was present.
func (u *User) RemoveRegistration(eventID int64) bool {
	i := slices.Index(u.RegisteredEvents, eventID)
	if i < 0 {
		return false
	}
	u.RegisteredEvents = slices.Delete(u.RegisteredEvents, i, i+1)
	return true
}

// Profile is the client-facing view of a user; it never carries the hash.
type Profile struct {
	Username         string    `json:"username"`
	Role             Role      `json:"role"`
	RegisteredEvents []int64   `json:"registeredEvents"`
	FullName         string    `json:"fullName,omitempty"`
	Email            string    `json:"email,omitempty"`
	Department       string    `json:"department,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (u *User) ToProfile() *Profile {
	events := u.RegisteredEvents
	if events == nil {
		events = []int64{}
	}
	return &Profile{
		Username:         u.Username,
		Role:             u.Role,
		RegisteredEvents: slices.Clone(events),
		FullName:         u.FullName,
		Email:            u.Email,
		Department:       u.Department,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
	}
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       Role   `json:"role,omitempty"`
	FullName   string `json:"fullName,omitempty"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type UpdateUserRequest struct {
	Role     *Role `json:"role,omitempty"`
	IsActive *bool `json:"isActive,omitempty"`
}

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,32}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.Department = strings.TrimSpace(r.Department)
	if r.Role == "" {
		r.Role = RoleParticipant
	}
}

func (r *RegisterRequest) Validate() error {
	if !usernameRegex.MatchString(r.Username) {
		return fmt.Errorf("%w: username must be 3-32 letters, digits, '.', '_' or '-'", ErrInvalidInput)
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	if r.Email != "" && !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	if _, ok := ParseRole(string(r.Role)); !ok || !r.Role.SelfRegistrable() {
		return ErrInvalidRole
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Identifier = strings.TrimSpace(r.Identifier)
}

func (r *LoginRequest) Validate() error {
	if r.Identifier == "" || r.Password == "" {
		return fmt.Errorf("%w: identifier and password are required", ErrInvalidInput)
	}
	return nil
}

func (r *UpdateUserRequest) Validate() error {
	if r.Role != nil {
		if _, ok := ParseRole(string(*r.Role)); !ok {
			return ErrInvalidRole
		}
	}
	if r.Role == nil && r.IsActive == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	return nil
}

// Session backs one issued token. Logging out deletes it.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
