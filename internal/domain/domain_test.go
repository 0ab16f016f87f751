package domain

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestRoleCanAccess(t *testing.T) {
	tests := []struct {
		role Role
		area Area
		want bool
	}{
		{RoleAdmin, AreaAdmin, true},
		{RoleAdmin, AreaOrganizer, true},
		{RoleAdmin, AreaParticipant, true},
		{RoleOrganizer, AreaOrganizer, true},
		{RoleOrganizer, AreaAdmin, false},
		{RoleOrganizer, AreaParticipant, false},
		{RoleParticipant, AreaParticipant, true},
		{RoleParticipant, AreaOrganizer, false},
		{Role("guest"), AreaParticipant, false},
	}
	for _, tt := range tests {
		if got := tt.role.CanAccess(tt.area); got != tt.want {
			t.Errorf("%s.CanAccess(%s) = %v, want %v", tt.role, tt.area, got, tt.want)
		}
	}
}

func TestCertificateNumber(t *testing.T) {
	issued := time.UnixMilli(1735689601234).UTC() // 2025-01-01T00:00:01.234Z
	got := CertificateNumber(7, "alice", issued)
	if got != "EVT007-2025-ALI1234" {
		t.Errorf("CertificateNumber() = %s", got)
	}
	short := CertificateNumber(1234, "jo", issued)
	if !regexp.MustCompile(`^EVT1234-2025-JO\d{4}$`).MatchString(short) {
		t.Errorf("short participant id: %s", short)
	}
}

func TestUserRegistrations(t *testing.T) {
	u := &User{Username: "alice"}
	if !u.AddRegistration(1) || u.AddRegistration(1) {
		t.Fatal("AddRegistration should add once")
	}
	u.AddRegistration(2)
	if !u.IsRegisteredFor(2) || len(u.RegisteredEvents) != 2 {
		t.Errorf("registrations = %v", u.RegisteredEvents)
	}
	if !u.RemoveRegistration(1) || u.RemoveRegistration(1) {
		t.Error("RemoveRegistration should remove once")
	}
	p := (&User{Username: "bob", PasswordHash: "h"}).ToProfile()
	if p.RegisteredEvents == nil {
		t.Error("profile should carry an empty slice, not nil")
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	ok := RegisterRequest{Username: " alice ", Password: "secret1", Email: " A@Uni.EDU "}
	ok.Normalize()
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid request: %v", err)
	}
	if ok.Role != RoleParticipant || ok.Email != "a@uni.edu" || ok.Username != "alice" {
		t.Errorf("normalized = %+v", ok)
	}

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"short username", RegisterRequest{Username: "ab", Password: "secret1", Role: RoleParticipant}, ErrInvalidInput},
		{"short password", RegisterRequest{Username: "alice", Password: "123", Role: RoleParticipant}, ErrInvalidInput},
		{"bad email", RegisterRequest{Username: "alice", Password: "secret1", Email: "nope", Role: RoleParticipant}, ErrInvalidInput},
		{"admin self signup", RegisterRequest{Username: "alice", Password: "secret1", Role: RoleAdmin}, ErrInvalidRole},
		{"unknown role", RegisterRequest{Username: "alice", Password: "secret1", Role: "dean"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateEventRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateEventRequest
		wantErr bool
	}{
		{"single date", CreateEventRequest{Title: "A", Date: "2025-01-01"}, false},
		{"range", CreateEventRequest{Title: "A", StartDate: "2025-01-01", EndDate: "2025-01-03"}, false},
		{"missing title", CreateEventRequest{Date: "2025-01-01"}, true},
		{"missing dates", CreateEventRequest{Title: "A"}, true},
		{"reversed range", CreateEventRequest{Title: "A", StartDate: "2025-01-03", EndDate: "2025-01-01"}, true},
		{"negative capacity", CreateEventRequest{Title: "A", Date: "2025-01-01", MaxParticipants: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventPatchApply(t *testing.T) {
	e := &Event{Title: "Old", Location: "Hall A", Tags: []string{"x"}}
	title, loc := "New", "Hall A"
	tags := []string{" a ", "a", "", "b"}
	changed := EventPatch{Title: &title, Location: &loc, Tags: &tags}.Apply(e)
	if len(changed) != 2 || changed[0] != "title" || changed[1] != "tags" {
		t.Errorf("changed = %v", changed)
	}
	if e.Title != "New" || len(e.Tags) != 2 || e.Tags[0] != "a" {
		t.Errorf("event = %+v", e)
	}
}

func TestEventHasCapacity(t *testing.T) {
	if !(&Event{MaxParticipants: 0, CurrentParticipants: 100}).HasCapacity() {
		t.Error("zero max should be unlimited")
	}
	if (&Event{MaxParticipants: 2, CurrentParticipants: 2}).HasCapacity() {
		t.Error("full event should have no capacity")
	}
}
