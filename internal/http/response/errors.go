package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nthung-2k5/eventsphere/internal/domain"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	JSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// Common error codes
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidRating      = "INVALID_RATING"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeEventNotOpen       = "EVENT_NOT_OPEN"
	CodeEventFull          = "EVENT_FULL"
	CodeNotRegistered      = "NOT_REGISTERED"
	CodeAlreadyCheckedIn   = "ALREADY_CHECKED_IN"
	CodeQRCodeExpired      = "QR_CODE_EXPIRED"
	CodeInvalidQRCode      = "INVALID_QR_CODE"
	CodeCertificateRevoked = "CERTIFICATE_REVOKED"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeInternalError      = "INTERNAL_ERROR"
)

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidRating, http.StatusBadRequest, CodeInvalidRating},
	{domain.ErrInvalidRole, http.StatusBadRequest, CodeInvalidRole},
	{domain.ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{domain.ErrInvalidQRCode, http.StatusBadRequest, CodeInvalidQRCode},
	{domain.ErrQRTokenMismatch, http.StatusBadRequest, CodeInvalidQRCode},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthorized},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{domain.ErrSessionExpired, http.StatusUnauthorized, CodeSessionExpired},
	{domain.ErrAccountDisabled, http.StatusForbidden, CodeAccountDisabled},
	{domain.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{domain.ErrNotRegistered, http.StatusForbidden, CodeNotRegistered},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrUsernameTaken, http.StatusConflict, CodeUsernameExists},
	{domain.ErrEmailTaken, http.StatusConflict, CodeEmailExists},
	{domain.ErrEventNotOpen, http.StatusConflict, CodeEventNotOpen},
	{domain.ErrEventFull, http.StatusConflict, CodeEventFull},
	{domain.ErrAlreadyCheckedIn, http.StatusConflict, CodeAlreadyCheckedIn},
	{domain.ErrQRCodeExpired, http.StatusGone, CodeQRCodeExpired},
	{domain.ErrCertificateRevoked, http.StatusConflict, CodeCertificateRevoked},
}

// FromError maps a service error to its status and code. Unknown errors are
// logged and reported as 500 without leaking their text.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			WriteError(w, e.status, err.Error(), e.code)
			return
		}
	}
	logger.ErrorContext(r.Context(), "Request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	InternalError(w, "internal server error")
}

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}
