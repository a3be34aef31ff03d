// Package view derives filtered, sorted storefront views from catalog data.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/TuancoderLo/perfumestore/internal/domain"
)

// Item is a perfume combined with its rating aggregate, ready for display.
type Item struct {
	domain.Perfume
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int     `json:"rating_count"`

	// ratingMean is the raw mean behind the rounded RatingAverage. Ordering
	// compares it so two items that display the same rounded value still
	// rank by their true averages.
	ratingMean float64
}

// Derive builds the storefront view for a query: filter, then sort. Inputs
// are never mutated, and the same inputs always produce the same output.
// Filters combine with AND across dimensions and OR within one; a missing
// rating summary is treated as zero reviews.
func Derive(perfumes []domain.Perfume, ratings map[string]domain.RatingSummary, q domain.QueryState) []Item {
	items := make([]Item, 0, len(perfumes))

	searchLower := strings.ToLower(strings.TrimSpace(q.Search))

	for _, p := range perfumes {
		summary := ratings[p.ID]
		if !matches(p, summary, q, searchLower) {
			continue
		}
		items = append(items, Item{
			Perfume:       p,
			RatingAverage: summary.DisplayAverage(),
			RatingCount:   summary.Count,
			ratingMean:    summary.Average,
		})
	}

	sortItems(items, q.Sort)
	return items
}

// matches checks a perfume against every active filter dimension.
func matches(p domain.Perfume, summary domain.RatingSummary, q domain.QueryState, searchLower string) bool {
	if searchLower != "" {
		nameLower := strings.ToLower(p.Name)
		brandLower := strings.ToLower(p.Brand)
		descLower := strings.ToLower(p.Description)
		if !strings.Contains(nameLower, searchLower) &&
			!strings.Contains(brandLower, searchLower) &&
			!strings.Contains(descLower, searchLower) {
			return false
		}
	}

	if len(q.Brands) > 0 && !containsFold(q.Brands, p.Brand) {
		return false
	}

	if len(q.Buckets) > 0 {
		inAny := false
		for _, b := range q.Buckets {
			if domain.PriceInBucket(p.Price, b) {
				inAny = true
				break
			}
		}
		if !inAny {
			return false
		}
	}

	if len(q.Genders) > 0 && !containsFold(q.Genders, p.TargetAudience) {
		return false
	}

	// Threshold checks use the raw mean, not the rounded display value.
	if q.MinRating > 0 && summary.Average < q.MinRating {
		return false
	}

	return true
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// sortItems orders items for display. All sorts are stable so equal keys
// keep their catalog order; name sorting is locale-aware.
func sortItems(items []Item, key domain.SortKey) {
	switch key {
	case domain.SortPriceLow:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Price < items[j].Price
		})
	case domain.SortPriceHigh:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Price > items[j].Price
		})
	case domain.SortRating:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ratingMean > items[j].ratingMean
		})
	default:
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].Name, items[j].Name) < 0
		})
	}
}
