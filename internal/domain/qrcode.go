package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type CheckInStatus string

const (
	CheckInPending   CheckInStatus = "pending"
	CheckInCheckedIn CheckInStatus = "checked-in"
	CheckInExpired   CheckInStatus = "expired"
)

type QRCode struct {
	ID              string        `json:"id"`
	EventID         int64         `json:"eventId"`
	UserID          string        `json:"userId"`
	ParticipantName string        `json:"participantName"`
	QRCodeData      string        `json:"qrCodeData"`
	CheckInStatus   CheckInStatus `json:"checkInStatus"`
	ExpiresAt       *time.Time    `json:"expiresAt,omitempty"`
	CheckInTime     *time.Time    `json:"checkInTime,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Terminal reports whether no further check-in transition applies.
func (q *QRCode) Terminal() bool {
	return q.CheckInStatus == CheckInCheckedIn || q.CheckInStatus == CheckInExpired
}

// CheckIn applies the pending transition at now. Expired codes move to
// expired and return false; everything else moves to checked-in.
func (q *QRCode) CheckIn(now time.Time) bool {
	if q.ExpiresAt != nil && now.After(*q.ExpiresAt) {
		q.CheckInStatus = CheckInExpired
		return false
	}
	stamp := now
	q.CheckInStatus = CheckInCheckedIn
	q.CheckInTime = &stamp
	return true
}

var qrPrefixes = [4]string{"EVENT:", "USER:", "TOKEN:", "TIMESTAMP:"}

// ValidateQRCode checks the payload shape only: four pipe-separated segments
// with the EVENT, USER, TOKEN and TIMESTAMP prefixes in that order.
func ValidateQRCode(data string) bool {
	parts := strings.Split(data, "|")
	if len(parts) != len(qrPrefixes) {
		return false
	}
	for i, p := range parts {
		if !strings.HasPrefix(p, qrPrefixes[i]) {
			return false
		}
	}
	return true
}

type QRPayload struct {
	EventID   int64
	UserID    string
	Token     string
	Timestamp time.Time
}

// ParseQRPayload validates and decodes a payload.
func ParseQRPayload(data string) (*QRPayload, error) {
	if !ValidateQRCode(data) {
		return nil, ErrInvalidQRCode
	}
	parts := strings.Split(data, "|")
	eventID, err := strconv.ParseInt(strings.TrimPrefix(parts[0], qrPrefixes[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad event id", ErrInvalidQRCode)
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimPrefix(parts[3], qrPrefixes[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp", ErrInvalidQRCode)
	}
	return &QRPayload{
		EventID:   eventID,
		UserID:    strings.TrimPrefix(parts[1], qrPrefixes[1]),
		Token:     strings.TrimPrefix(parts[2], qrPrefixes[2]),
		Timestamp: ts,
	}, nil
}

func (p *QRPayload) String() string {
	return BuildQRPayload(p.EventID, p.UserID, p.Token, p.Timestamp)
}

func BuildQRPayload(eventID int64, userID, token string, ts time.Time) string {
	return fmt.Sprintf("EVENT:%d|USER:%s|TOKEN:%s|TIMESTAMP:%s",
		eventID, userID, token, ts.UTC().Format(time.RFC3339))
}

// SignQRToken derives the TOKEN segment from the other three fields.
func SignQRToken(secret string, eventID int64, userID string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d|%s|%s", eventID, userID, ts.UTC().Format(time.RFC3339))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// VerifyQRToken reports whether the payload token was issued with secret.
func VerifyQRToken(secret string, p *QRPayload) bool {
	want := SignQRToken(secret, p.EventID, p.UserID, p.Timestamp)
	return hmac.Equal([]byte(want), []byte(p.Token))
}
