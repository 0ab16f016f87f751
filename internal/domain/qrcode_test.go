package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidateQRCode(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{"EVENT:1|USER:u|TOKEN:x|TIMESTAMP:2025-01-01T00:00:00Z", true},
		{"EVENT:|USER:|TOKEN:|TIMESTAMP:", true},
		{"EVENT:1|USER:u|TOKEN:x", false},
		{"USER:u|EVENT:1|TOKEN:x|TIMESTAMP:t", false},
		{"EVENT:1|USER:u|TOKEN:x|TIMESTAMP:t|EXTRA:1", false},
		{"event:1|user:u|token:x|timestamp:t", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateQRCode(tt.data); got != tt.want {
			t.Errorf("ValidateQRCode(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestQRPayloadRoundTrip(t *testing.T) {
	ts := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	tok := SignQRToken("secret", 7, "alice", ts)
	data := BuildQRPayload(7, "alice", tok, ts)
	if !ValidateQRCode(data) {
		t.Fatalf("built payload fails validation: %s", data)
	}
	p, err := ParseQRPayload(data)
	if err != nil {
		t.Fatalf("ParseQRPayload: %v", err)
	}
	if p.EventID != 7 || p.UserID != "alice" || !p.Timestamp.Equal(ts) {
		t.Errorf("unexpected payload: %+v", p)
	}
	if !VerifyQRToken("secret", p) {
		t.Error("token should verify with the signing secret")
	}
	if VerifyQRToken("other", p) {
		t.Error("token should not verify with another secret")
	}
	p.UserID = "mallory"
	if VerifyQRToken("secret", p) {
		t.Error("token should not verify after the user is changed")
	}
}

func TestParseQRPayloadErrors(t *testing.T) {
	for _, data := range []string{
		"garbage",
		"EVENT:abc|USER:u|TOKEN:x|TIMESTAMP:2025-01-01T00:00:00Z",
		"EVENT:1|USER:u|TOKEN:x|TIMESTAMP:yesterday",
	} {
		if _, err := ParseQRPayload(data); !errors.Is(err, ErrInvalidQRCode) {
			t.Errorf("ParseQRPayload(%q) err = %v, want ErrInvalidQRCode", data, err)
		}
	}
}

func TestQRCodeCheckIn(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no expiry", func(t *testing.T) {
		q := &QRCode{CheckInStatus: CheckInPending}
		if !q.CheckIn(now) {
			t.Fatal("expected success")
		}
		if q.CheckInStatus != CheckInCheckedIn || q.CheckInTime == nil || !q.CheckInTime.Equal(now) {
			t.Errorf("unexpected state: %+v", q)
		}
		if !q.Terminal() {
			t.Error("checked-in code should be terminal")
		}
	})

	t.Run("before expiry", func(t *testing.T) {
		exp := now.Add(time.Hour)
		q := &QRCode{CheckInStatus: CheckInPending, ExpiresAt: &exp}
		if !q.CheckIn(now) {
			t.Fatal("expected success")
		}
	})

	t.Run("after expiry", func(t *testing.T) {
		exp := now.Add(-time.Minute)
		q := &QRCode{CheckInStatus: CheckInPending, ExpiresAt: &exp}
		if q.CheckIn(now) {
			t.Fatal("expected failure")
		}
		if q.CheckInStatus != CheckInExpired || q.CheckInTime != nil {
			t.Errorf("unexpected state: %+v", q)
		}
		if !q.Terminal() {
			t.Error("expired code should be terminal")
		}
	})
}
