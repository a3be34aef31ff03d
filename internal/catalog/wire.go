package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/TuancoderLo/perfumestore/internal/domain"
)

// brandRef decodes the upstream brand field, which is either a plain display
// string or an embedded brand document.
type brandRef struct {
	Name string
}

func (b *brandRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Name = s
		return nil
	}

	var doc struct {
		BrandName string `json:"brandName"`
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		b.Name = doc.BrandName
		return nil
	}

	// null or an unexpected shape: leave empty, normalization fills in the
	// fallback name.
	b.Name = ""
	return nil
}

// flexRating decodes a rating that may arrive as a number, a numeric string,
// or be missing entirely. Anything non-numeric decodes to zero (no rating).
type flexRating int

func (r *flexRating) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*r = flexRating(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*r = flexRating(n)
			return nil
		}
	}

	*r = 0
	return nil
}

type perfumeDoc struct {
	ID             string   `json:"_id"`
	PerfumeName    string   `json:"perfumeName"`
	Brand          brandRef `json:"brand"`
	Price          float64  `json:"price"`
	URI            string   `json:"uri"`
	Description    string   `json:"description"`
	TargetAudience string   `json:"targetAudience"`
	Volume         string   `json:"volume"`
	Concentration  string   `json:"concentration"`
	Ingredients    []string `json:"ingredients"`
}

const (
	defaultVolume        = "100ml"
	defaultConcentration = "Eau de Parfum"
)

// toDomain normalizes an upstream perfume document. Total: every input maps
// to a valid Perfume, missing fields take documented defaults.
func (d perfumeDoc) toDomain() domain.Perfume {
	volume := strings.TrimSpace(d.Volume)
	if volume == "" {
		volume = defaultVolume
	}
	concentration := strings.TrimSpace(d.Concentration)
	if concentration == "" {
		concentration = defaultConcentration
	}

	return domain.Perfume{
		ID:             d.ID,
		Name:           d.PerfumeName,
		Brand:          domain.NormalizeBrandName(d.Brand.Name),
		Price:          d.Price,
		ImageURL:       d.URI,
		Description:    d.Description,
		TargetAudience: domain.NormalizeAudience(d.TargetAudience),
		Volume:         volume,
		Concentration:  concentration,
		Ingredients:    d.Ingredients,
	}
}

type commentDoc struct {
	ID      string     `json:"_id"`
	Content string     `json:"content"`
	Rating  flexRating `json:"rating"`
	User    struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"user"`
	CreatedAt string `json:"createdAt"`
}

func (d commentDoc) toDomain(perfumeID string) domain.Review {
	createdAt, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	return domain.Review{
		ID:        d.ID,
		PerfumeID: perfumeID,
		Author:    d.User.Name,
		AuthorID:  d.User.ID,
		Rating:    int(d.Rating),
		Content:   d.Content,
		CreatedAt: createdAt,
	}
}

type brandDoc struct {
	ID        string `json:"_id"`
	BrandName string `json:"brandName"`
	IsDeleted bool   `json:"isDeleted"`
}

func (d brandDoc) toDomain() domain.Brand {
	return domain.Brand{
		ID:   d.ID,
		Name: domain.NormalizeBrandName(d.BrandName),
	}
}
