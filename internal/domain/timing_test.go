package domain

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeriveTiming(t *testing.T) {
	multi := &Event{StartDate: "2025-01-01", EndDate: "2025-01-05"}
	single := &Event{Date: "2025-03-10"}

	tests := []struct {
		name  string
		event *Event
		today time.Time
		want  Timing
	}{
		{"inside range", multi, day("2025-01-03"), TimingOngoing},
		{"first day", multi, day("2025-01-01"), TimingOngoing},
		{"last day", multi, day("2025-01-05"), TimingOngoing},
		{"before start", multi, day("2024-12-30"), TimingUpcoming},
		{"after end", multi, day("2025-02-01"), TimingPast},
		{"single day same day", single, day("2025-03-10"), TimingOngoing},
		{"single day before", single, day("2025-03-09"), TimingUpcoming},
		{"single day after", single, day("2025-03-11"), TimingPast},
		{"time of day ignored", multi, time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC), TimingOngoing},
		{"no dates", &Event{}, day("2025-01-01"), TimingUnknown},
		{"bad date", &Event{Date: "tomorrow"}, day("2025-01-01"), TimingUnknown},
		{"half range", &Event{StartDate: "2025-01-01"}, day("2025-01-01"), TimingUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTiming(tt.event, tt.today); got != tt.want {
				t.Errorf("DeriveTiming() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveTimingIgnoresStatus(t *testing.T) {
	e := &Event{Date: "2025-01-01", Status: EventRejected}
	if got := DeriveTiming(e, day("2025-01-01")); got != TimingOngoing {
		t.Errorf("rejected event timing = %s, want Ongoing", got)
	}
}

func TestEventFilterMatch(t *testing.T) {
	e := &Event{
		Title:      "Go Workshop",
		Category:   "Tech",
		Department: "CS",
		Organizer:  "org1",
		Status:     EventApproved,
		Tags:       []string{"golang"},
		Date:       "2025-01-10",
	}
	v := NewEventView(e, day("2025-01-01"))

	tests := []struct {
		name string
		f    EventFilter
		want bool
	}{
		{"empty filter", EventFilter{}, true},
		{"status match", EventFilter{Status: EventApproved}, true},
		{"status mismatch", EventFilter{Status: EventPending}, false},
		{"timing match", EventFilter{Timing: TimingUpcoming}, true},
		{"timing mismatch", EventFilter{Timing: TimingPast}, false},
		{"category case-insensitive", EventFilter{Category: "tech"}, true},
		{"organizer mismatch", EventFilter{Organizer: "org2"}, false},
		{"search title", EventFilter{Search: "workshop"}, true},
		{"search tag", EventFilter{Search: "GOLANG"}, true},
		{"search miss", EventFilter{Search: "music"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Match(&v); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	if got := Paginate(items, Page{Number: 2, Size: 2}); len(got) != 2 || got[0] != 3 {
		t.Errorf("page 2 = %v", got)
	}
	if got := Paginate(items, Page{Number: 3, Size: 2}); len(got) != 1 || got[0] != 5 {
		t.Errorf("page 3 = %v", got)
	}
	if got := Paginate(items, Page{Number: 9, Size: 2}); len(got) != 0 {
		t.Errorf("out of range page = %v", got)
	}
	if got := Paginate(items, Page{Number: 1_000_000_000_000_000_000, Size: 10}.Normalize()); len(got) != 0 {
		t.Errorf("huge page = %v", got)
	}
	if got := Paginate([]int{}, Page{Number: 1, Size: 10}); len(got) != 0 {
		t.Errorf("empty page = %v", got)
	}

	p := Page{Number: 0, Size: 1000}.Normalize()
	if p.Number != 1 || p.Size != MaxPageSize {
		t.Errorf("Normalize() = %+v", p)
	}
	if p := (Page{}).Normalize(); p.Size != DefaultPageSize {
		t.Errorf("default size = %d", p.Size)
	}
}
