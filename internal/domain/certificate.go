package domain

import (
	"fmt"
	"strings"
	"time"
)

type Certificate struct {
	ID                string    `json:"id"`
	EventID           int64     `json:"eventId"`
	ParticipantID     string    `json:"participantId"`
	ParticipantName   string    `json:"participantName"`
	EventTitle        string    `json:"eventTitle"`
	IssueDate         time.Time `json:"issueDate"`
	CertificateNumber string    `json:"certificateNumber"`
	VerificationCode  string    `json:"verificationCode"`
	IsValid           bool      `json:"isValid"`
}

// CertificateNumber formats EVT<id:03>-<year>-<PPP><ssss>, where PPP is the
// first three characters of the participant id upper-cased and ssss the last
// four digits of the issue time in unix milliseconds.
func CertificateNumber(eventID int64, participantID string, issued time.Time) string {
	code := participantID
	if len(code) > 3 {
		code = code[:3]
	}
	suffix := issued.UnixMilli() % 10000
	return fmt.Sprintf("EVT%03d-%d-%s%04d", eventID, issued.Year(), strings.ToUpper(code), suffix)
}
