// Package rating computes review rating aggregates.
package rating

import "github.com/TuancoderLo/perfumestore/internal/domain"

// Aggregate computes the rating summary for a single perfume's reviews.
// The average is taken over rated reviews only; unrated reviews (rating 0)
// still count toward Count. No reviews, or none with a rating, yields a
// zero summary with Count set to the review total.
func Aggregate(reviews []domain.Review) domain.RatingSummary {
	var sum, rated int
	for _, r := range reviews {
		if r.HasRating() {
			sum += r.Rating
			rated++
		}
	}

	s := domain.RatingSummary{Count: len(reviews)}
	if rated > 0 {
		s.Average = float64(sum) / float64(rated)
	}
	return s
}

// AggregateAll computes summaries for reviews grouped by perfume ID.
func AggregateAll(byPerfume map[string][]domain.Review) map[string]domain.RatingSummary {
	out := make(map[string]domain.RatingSummary, len(byPerfume))
	for id, reviews := range byPerfume {
		out[id] = Aggregate(reviews)
	}
	return out
}
