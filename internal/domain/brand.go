package domain

// Brand is a catalog brand. Soft-deleted brands are filtered out before any
// storefront response is built.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
