package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TuancoderLo/perfumestore/internal/domain"
)

func reviews(ratings ...int) []domain.Review {
	out := make([]domain.Review, len(ratings))
	for i, r := range ratings {
		out[i] = domain.Review{ID: string(rune('a' + i)), Rating: r}
	}
	return out
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.Average)
	assert.Zero(t, s.Count)
}

func TestAggregateAllUnrated(t *testing.T) {
	s := Aggregate(reviews(0, 0, 0))
	assert.Zero(t, s.Average)
	assert.Equal(t, 3, s.Count)
}

func TestAggregateMixedRatedAndUnrated(t *testing.T) {
	// Unrated reviews count but do not drag down the mean.
	s := Aggregate(reviews(5, 3, 0, 4, 0))
	assert.InDelta(t, 4.0, s.Average, 1e-9)
	assert.Equal(t, 5, s.Count)
}

func TestAggregateDisplayRounding(t *testing.T) {
	// 4+4+5 over 3 rated = 4.333...; display shows 4.3 but the raw mean
	// stays unrounded for threshold checks.
	s := Aggregate(reviews(4, 4, 5))
	assert.InDelta(t, 13.0/3.0, s.Average, 1e-9)
	assert.InDelta(t, 4.3, s.DisplayAverage(), 1e-9)
	assert.Greater(t, s.Average, 4.3)
}

func TestAggregateAll(t *testing.T) {
	byPerfume := map[string][]domain.Review{
		"p1": reviews(5, 5),
		"p2": reviews(0),
		"p3": nil,
	}

	out := AggregateAll(byPerfume)
	assert.Len(t, out, 3)
	assert.InDelta(t, 5.0, out["p1"].Average, 1e-9)
	assert.Equal(t, 2, out["p1"].Count)
	assert.Zero(t, out["p2"].Average)
	assert.Equal(t, 1, out["p2"].Count)
	assert.Zero(t, out["p3"].Count)
}
