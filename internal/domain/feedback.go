package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	ID        string    `json:"id"`
	EventID   int64     `json:"eventId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Helpful   int       `json:"helpful"`
	HelpfulBy []string  `json:"helpfulBy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AddHelpfulVote counts each username once and reports whether the vote was new.
func (f *Feedback) AddHelpfulVote(username string) bool {
	if slices.Contains(f.HelpfulBy, username) {
		return false
	}
	f.HelpfulBy = append(f.HelpfulBy, username)
	f.Helpful++
	return true
}

type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (r *SubmitFeedbackRequest) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	if len(r.Comment) > 2000 {
		return fmt.Errorf("%w: comment is too long", ErrInvalidInput)
	}
	r.Comment = strings.TrimSpace(r.Comment)
	return nil
}

// AverageRating returns the mean rating rounded to one decimal, or 0 for no feedback.
func AverageRating(list []Feedback) float64 {
	if len(list) == 0 {
		return 0
	}
	sum := 0
	for _, f := range list {
		sum += f.Rating
	}
	avg := float64(sum) / float64(len(list))
	return math.Round(avg*10) / 10
}

type FeedbackStats struct {
	Total        int         `json:"total"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
	MostHelpful  *Feedback   `json:"mostHelpful,omitempty"`
}

// ComputeFeedbackStats aggregates list. On equal helpful counts the earliest
// entry in list wins.
func ComputeFeedbackStats(list []Feedback) FeedbackStats {
	stats := FeedbackStats{
		Total:        len(list),
		Average:      AverageRating(list),
		Distribution: make(map[int]int, MaxRating),
	}
	for r := MinRating; r <= MaxRating; r++ {
		stats.Distribution[r] = 0
	}
	for i := range list {
		f := list[i]
		if f.Rating >= MinRating && f.Rating <= MaxRating {
			stats.Distribution[f.Rating]++
		}
		if stats.MostHelpful == nil || f.Helpful > stats.MostHelpful.Helpful {
			stats.MostHelpful = &f
		}
	}
	return stats
}
