package domain

import (
	"math"
	"time"
)

// Review is a customer review of a perfume. Rating is 1..5; zero means the
// reviewer left a comment without a rating.
type Review struct {
	ID        string    `json:"id"`
	PerfumeID string    `json:"perfume_id"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"author_id,omitempty"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HasRating reports whether the review carries a usable rating.
func (r Review) HasRating() bool {
	return r.Rating > 0
}

// RatingSummary is the aggregate rating for a perfume. Average is the
// unrounded mean over rated reviews only; Count is the total number of
// reviews, rated or not.
type RatingSummary struct {
	Average float64 `json:"-"`
	Count   int     `json:"count"`
}

// DisplayAverage returns the average rounded to one decimal place for
// presentation. Filtering always uses the unrounded Average.
func (s RatingSummary) DisplayAverage() float64 {
	return math.Round(s.Average*10) / 10
}
