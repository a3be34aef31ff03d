package domain

// SortKey identifies a catalog sort order.
type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
)

// ParseSortKey maps a raw sort value to a SortKey, falling back to SortName
// for anything unrecognized.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortPriceLow, SortPriceHigh, SortRating:
		return SortKey(raw)
	default:
		return SortName
	}
}

// Price bucket labels. Buckets are half-open: 0-50 covers [0,50), 50-100
// covers [50,100), 100-200 covers [100,200), 200+ covers [200,inf).
const (
	BucketUnder50  = "0-50"
	Bucket50To100  = "50-100"
	Bucket100To200 = "100-200"
	BucketOver200  = "200+"
)

// PriceInBucket reports whether price falls inside the named bucket. An
// unknown bucket label matches every price so a stale client cannot filter
// the catalog down to nothing.
func PriceInBucket(price float64, bucket string) bool {
	switch bucket {
	case BucketUnder50:
		return price >= 0 && price < 50
	case Bucket50To100:
		return price >= 50 && price < 100
	case Bucket100To200:
		return price >= 100 && price < 200
	case BucketOver200:
		return price >= 200
	default:
		return true
	}
}

// QueryState is the full filter and sort state for a catalog view. Zero
// value means no filtering and the default name sort.
type QueryState struct {
	Search    string
	Brands    []string
	Buckets   []string
	Genders   []string
	MinRating float64
	Sort      SortKey
}

// IsZero reports whether the query applies no filtering at all.
func (q QueryState) IsZero() bool {
	return q.Search == "" &&
		len(q.Brands) == 0 &&
		len(q.Buckets) == 0 &&
		len(q.Genders) == 0 &&
		q.MinRating == 0 &&
		(q.Sort == "" || q.Sort == SortName)
}
