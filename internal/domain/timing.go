package domain

import "time"

// Timing is the date-derived projection of an event, independent of its
// approval status.
type Timing string

const (
	TimingOngoing  Timing = "Ongoing"
	TimingUpcoming Timing = "Upcoming"
	TimingPast     Timing = "Past"
	TimingUnknown  Timing = "Unknown"
)

func ParseTiming(s string) (Timing, bool) {
	switch Timing(s) {
	case TimingOngoing, TimingUpcoming, TimingPast, TimingUnknown:
		return Timing(s), true
	default:
		return "", false
	}
}

// DeriveTiming compares the event's days with the calendar day of today.
// Ongoing is checked first, then Upcoming, then Past.
func DeriveTiming(e *Event, today time.Time) Timing {
	start, end, ok := e.Span()
	if !ok {
		return TimingUnknown
	}
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case !start.After(t) && !t.After(end):
		return TimingOngoing
	case start.After(t):
		return TimingUpcoming
	case end.Before(t):
		return TimingPast
	default:
		return TimingUnknown
	}
}

// EventView is an event as served to clients, with its derived timing.
type EventView struct {
	Event
	Timing Timing `json:"timing"`
}

func NewEventView(e *Event, today time.Time) EventView {
	return EventView{Event: *e, Timing: DeriveTiming(e, today)}
}
