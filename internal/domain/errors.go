package domain

import "errors"

// Validation failures.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrInvalidRole   = errors.New("invalid role")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already registered")
)

// Lookup and access failures.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("no authenticated user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrForbidden          = errors.New("forbidden")
	ErrSessionExpired     = errors.New("session expired")
)

// Event and check-in state failures.
var (
	ErrEventNotOpen       = errors.New("event is not open for registration")
	ErrEventFull          = errors.New("event is fully booked")
	ErrNotRegistered      = errors.New("user is not registered for this event")
	ErrQRCodeExpired      = errors.New("qr code expired")
	ErrAlreadyCheckedIn   = errors.New("qr code already checked in")
	ErrInvalidQRCode      = errors.New("malformed qr code")
	ErrQRTokenMismatch    = errors.New("qr code token does not match")
	ErrCertificateRevoked = errors.New("certificate revoked")

	ErrVerificationCodeTaken = errors.New("verification code already in use")
)
