package domain

import (
	"fmt"
	"strings"
	"time"
)

type EventStatus string

const (
	EventPending  EventStatus = "pending"
	EventApproved EventStatus = "approved"
	EventRejected EventStatus = "rejected"
)

func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventPending, EventApproved, EventRejected:
		return EventStatus(s), true
	default:
		return "", false
	}
}

// DateLayout is the calendar-day format used by event schedules.
const DateLayout = "2006-01-02"

type Event struct {
	ID                  int64       `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Location            string      `json:"location"`
	Date                string      `json:"date,omitempty"`
	StartDate           string      `json:"startDate,omitempty"`
	EndDate             string      `json:"endDate,omitempty"`
	StartTime           string      `json:"startTime,omitempty"`
	EndTime             string      `json:"endTime,omitempty"`
	Organizer           string      `json:"organizer"`
	Status              EventStatus `json:"status"`
	Category            string      `json:"category,omitempty"`
	Department          string      `json:"department,omitempty"`
	CurrentParticipants int         `json:"currentParticipants"`
	MaxParticipants     int         `json:"maxParticipants"`
	Tags                []string    `json:"tags"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// Span returns the first and last calendar day of the event. A single Date
// counts as both. ok is false when the schedule is missing or unparsable.
func (e *Event) Span() (start, end time.Time, ok bool) {
	s, en := e.StartDate, e.EndDate
	if s == "" && en == "" {
		s, en = e.Date, e.Date
	}
	if s == "" || en == "" {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(DateLayout, en)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// HasCapacity reports whether one more participant fits. Zero max means unlimited.
func (e *Event) HasCapacity() bool {
	return e.MaxParticipants <= 0 || e.CurrentParticipants < e.MaxParticipants
}

// CreateEventRequest carries everything but the id and organizer, which the
// store assigns.
type CreateEventRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	Date            string   `json:"date,omitempty"`
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
	StartTime       string   `json:"startTime,omitempty"`
	EndTime         string   `json:"endTime,omitempty"`
	Category        string   `json:"category,omitempty"`
	Department      string   `json:"department,omitempty"`
	MaxParticipants int      `json:"maxParticipants"`
	Tags            []string `json:"tags,omitempty"`
}

func (r *CreateEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	r.Category = strings.TrimSpace(r.Category)
	r.Department = strings.TrimSpace(r.Department)
	r.Tags = normalizeTags(r.Tags)
}

func (r *CreateEventRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if r.MaxParticipants < 0 {
		return fmt.Errorf("%w: maxParticipants cannot be negative", ErrInvalidInput)
	}
	draft := Event{Date: r.Date, StartDate: r.StartDate, EndDate: r.EndDate}
	start, end, ok := draft.Span()
	if !ok {
		return fmt.Errorf("%w: a date or a startDate/endDate pair (YYYY-MM-DD) is required", ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}
	return nil
}

// EventPatch holds optional replacements; nil fields are left alone.
type EventPatch struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Date            *string   `json:"date,omitempty"`
	StartDate       *string   `json:"startDate,omitempty"`
	EndDate         *string   `json:"endDate,omitempty"`
	StartTime       *string   `json:"startTime,omitempty"`
	EndTime         *string   `json:"endTime,omitempty"`
	Category        *string   `json:"category,omitempty"`
	Department      *string   `json:"department,omitempty"`
	MaxParticipants *int      `json:"maxParticipants,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

// Apply copies the set fields onto e and returns the names of fields that changed.
func (p EventPatch) Apply(e *Event) []string {
	var changed []string
	setStr := func(name string, dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = append(changed, name)
		}
	}
	setStr("title", &e.Title, p.Title)
	setStr("description", &e.Description, p.Description)
	setStr("location", &e.Location, p.Location)
	setStr("date", &e.Date, p.Date)
	setStr("startDate", &e.StartDate, p.StartDate)
	setStr("endDate", &e.EndDate, p.EndDate)
	setStr("startTime", &e.StartTime, p.StartTime)
	setStr("endTime", &e.EndTime, p.EndTime)
	setStr("category", &e.Category, p.Category)
	setStr("department", &e.Department, p.Department)
	if p.MaxParticipants != nil && e.MaxParticipants != *p.MaxParticipants {
		e.MaxParticipants = *p.MaxParticipants
		changed = append(changed, "maxParticipants")
	}
	if p.Tags != nil {
		e.Tags = normalizeTags(*p.Tags)
		changed = append(changed, "tags")
	}
	return changed
}

func (p EventPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if p.MaxParticipants != nil && *p.MaxParticipants < 0 {
		return fmt.Errorf("%w: maxParticipants cannot be negative", ErrInvalidInput)
	}
	return nil
}

// normalizeTags trims, drops blanks and removes duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
