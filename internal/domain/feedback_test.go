package domain

import (
	"errors"
	"strings"
	"testing"
)

func ratings(rs ...int) []Feedback {
	out := make([]Feedback, len(rs))
	for i, r := range rs {
		out[i] = Feedback{Rating: r}
	}
	return out
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name string
		in   []Feedback
		want float64
	}{
		{"empty", nil, 0},
		{"single", ratings(4), 4},
		{"exact", ratings(5, 4, 3), 4.0},
		{"rounds up", ratings(5, 4, 4), 4.3},
		{"rounds to one decimal", ratings(5, 5, 4), 4.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AverageRating(tt.in); got != tt.want {
				t.Errorf("AverageRating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeFeedbackStats(t *testing.T) {
	list := []Feedback{
		{ID: "a", Rating: 5, Helpful: 2},
		{ID: "b", Rating: 3, Helpful: 4},
		{ID: "c", Rating: 5, Helpful: 4},
	}
	s := ComputeFeedbackStats(list)
	if s.Total != 3 {
		t.Errorf("Total = %d", s.Total)
	}
	if s.Average != 4.3 {
		t.Errorf("Average = %v", s.Average)
	}
	if s.Distribution[5] != 2 || s.Distribution[3] != 1 || s.Distribution[1] != 0 {
		t.Errorf("Distribution = %v", s.Distribution)
	}
	if s.MostHelpful == nil || s.MostHelpful.ID != "b" {
		t.Errorf("MostHelpful = %+v, want b", s.MostHelpful)
	}

	empty := ComputeFeedbackStats(nil)
	if empty.Total != 0 || empty.MostHelpful != nil || len(empty.Distribution) != MaxRating {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestSubmitFeedbackRequestValidate(t *testing.T) {
	for _, r := range []int{0, 6, -1} {
		req := SubmitFeedbackRequest{Rating: r}
		if err := req.Validate(); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: err = %v", r, err)
		}
	}
	req := SubmitFeedbackRequest{Rating: 3, Comment: "  fine  "}
	if err := req.Validate(); err != nil || req.Comment != "fine" {
		t.Errorf("valid request: err=%v comment=%q", err, req.Comment)
	}
	long := SubmitFeedbackRequest{Rating: 3, Comment: strings.Repeat("x", 2001)}
	if err := long.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("long comment err = %v", err)
	}
}
