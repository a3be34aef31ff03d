package domain

// Overview is the aggregate catalog statistics shown on the dashboard,
// passed through from the upstream API.
type Overview struct {
	TotalPerfumes  int       `json:"total_perfumes"`
	TotalBrands    int       `json:"total_brands"`
	TotalReviews   int       `json:"total_reviews"`
	RecentPerfumes []Perfume `json:"recent_perfumes"`
}
