package domain

import "strings"

// Target audience values recognized by the catalog.
const (
	AudienceMale   = "male"
	AudienceFemale = "female"
	AudienceUnisex = "unisex"
)

// UnknownBrand is the display name used when a perfume carries no resolvable
// brand reference.
const UnknownBrand = "Unknown"

// Perfume is a catalog item as served to the storefront. Brand is always a
// resolved display name, never a raw reference.
type Perfume struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Brand          string   `json:"brand"`
	Price          float64  `json:"price"`
	ImageURL       string   `json:"image_url,omitempty"`
	Description    string   `json:"description,omitempty"`
	TargetAudience string   `json:"target_audience"`
	Volume         string   `json:"volume"`
	Concentration  string   `json:"concentration"`
	Ingredients    []string `json:"ingredients,omitempty"`
}

// NormalizeBrandName maps a raw brand display value to its storefront form.
// Empty and whitespace-only values become UnknownBrand. The function is
// idempotent: normalizing an already-normalized name returns it unchanged.
func NormalizeBrandName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return UnknownBrand
	}
	return name
}

// NormalizeAudience lowercases the audience value and maps anything
// unrecognized to unisex.
func NormalizeAudience(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case AudienceMale:
		return AudienceMale
	case AudienceFemale:
		return AudienceFemale
	default:
		return AudienceUnisex
	}
}
