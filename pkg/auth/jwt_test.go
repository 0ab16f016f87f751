package auth

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("alice", "organizer", "sess-1", "secret", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := Parse(tok, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "alice" || claims.Role != "organizer" || claims.SessionID != "sess-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _ := NewSessionToken("alice", "participant", "sess-1", "secret", time.Minute)
	if _, err := Parse(tok, "other"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tok, _ := NewSessionToken("alice", "participant", "sess-1", "secret", -time.Minute)
	if _, err := Parse(tok, "secret"); err == nil {
		t.Fatal("expected error for expired token")
	}
}
