package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBrandName(t *testing.T) {
	assert.Equal(t, "Chanel", NormalizeBrandName("Chanel"))
	assert.Equal(t, "Chanel", NormalizeBrandName("  Chanel  "))
	assert.Equal(t, UnknownBrand, NormalizeBrandName(""))
	assert.Equal(t, UnknownBrand, NormalizeBrandName("   "))

	// Idempotent: a second pass changes nothing.
	assert.Equal(t, UnknownBrand, NormalizeBrandName(NormalizeBrandName("")))
	assert.Equal(t, "Dior", NormalizeBrandName(NormalizeBrandName(" Dior")))
}

func TestNormalizeAudience(t *testing.T) {
	assert.Equal(t, AudienceMale, NormalizeAudience("male"))
	assert.Equal(t, AudienceMale, NormalizeAudience("MALE"))
	assert.Equal(t, AudienceFemale, NormalizeAudience(" female "))
	assert.Equal(t, AudienceUnisex, NormalizeAudience("unisex"))
	assert.Equal(t, AudienceUnisex, NormalizeAudience(""))
	assert.Equal(t, AudienceUnisex, NormalizeAudience("everyone"))
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceLow, ParseSortKey("price-low"))
	assert.Equal(t, SortPriceHigh, ParseSortKey("price-high"))
	assert.Equal(t, SortRating, ParseSortKey("rating"))
	assert.Equal(t, SortName, ParseSortKey("name"))
	assert.Equal(t, SortName, ParseSortKey(""))
	assert.Equal(t, SortName, ParseSortKey("price_low"))
}

func TestPriceInBucket(t *testing.T) {
	// Boundaries belong to the bucket above.
	assert.True(t, PriceInBucket(0, BucketUnder50))
	assert.True(t, PriceInBucket(49.99, BucketUnder50))
	assert.False(t, PriceInBucket(50, BucketUnder50))
	assert.True(t, PriceInBucket(50, Bucket50To100))
	assert.False(t, PriceInBucket(100, Bucket50To100))
	assert.True(t, PriceInBucket(100, Bucket100To200))
	assert.False(t, PriceInBucket(200, Bucket100To200))
	assert.True(t, PriceInBucket(200, BucketOver200))
	assert.True(t, PriceInBucket(999.5, BucketOver200))
}

func TestPriceInBucketUnknownLabelMatchesAll(t *testing.T) {
	for _, price := range []float64{0, 49.99, 150, 500} {
		assert.True(t, PriceInBucket(price, "cheap"))
	}
}

func TestRatingSummaryDisplayAverage(t *testing.T) {
	assert.InDelta(t, 4.3, RatingSummary{Average: 4.25}.DisplayAverage(), 1e-9)
	assert.InDelta(t, 4.0, RatingSummary{Average: 3.96}.DisplayAverage(), 1e-9)
	assert.InDelta(t, 0.0, RatingSummary{}.DisplayAverage(), 1e-9)
}

func TestReviewHasRating(t *testing.T) {
	assert.True(t, Review{Rating: 3}.HasRating())
	assert.False(t, Review{Rating: 0}.HasRating())
}

func TestQueryStateIsZero(t *testing.T) {
	assert.True(t, QueryState{}.IsZero())
	assert.True(t, QueryState{Sort: SortName}.IsZero())
	assert.False(t, QueryState{Search: "rose"}.IsZero())
	assert.False(t, QueryState{MinRating: 4}.IsZero())
	assert.False(t, QueryState{Sort: SortRating}.IsZero())
}
