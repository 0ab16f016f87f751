package domain

import "strings"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	Status     EventStatus
	Timing     Timing
	Category   string
	Department string
	Organizer  string
	Search     string
}

// Match is evaluated against a view so the timing filter sees the derived value.
func (f EventFilter) Match(v *EventView) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Timing != "" && v.Timing != f.Timing {
		return false
	}
	if f.Category != "" && !strings.EqualFold(v.Category, f.Category) {
		return false
	}
	if f.Department != "" && !strings.EqualFold(v.Department, f.Department) {
		return false
	}
	if f.Organizer != "" && v.Organizer != f.Organizer {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(v.Title + " " + v.Description + " " + v.Location + " " + strings.Join(v.Tags, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

type Page struct {
	Number int `json:"page"`
	Size   int `json:"pageSize"`
}

// Normalize clamps the page to 1.. and the size to 1..MaxPageSize.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

type EventPage struct {
	Items    []EventView `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// Paginate slices items for page p (already normalized). Pages past the end
// are empty, however large p.Number is.
func Paginate[T any](items []T, p Page) []T {
	if p.Number-1 >= (len(items)+p.Size-1)/p.Size {
		return []T{}
	}
	start := (p.Number - 1) * p.Size
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
