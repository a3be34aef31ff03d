// Package service orchestrates catalog fetches into storefront responses.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/TuancoderLo/perfumestore/internal/domain"
	"github.com/TuancoderLo/perfumestore/internal/rating"
	"github.com/TuancoderLo/perfumestore/internal/session"
	"github.com/TuancoderLo/perfumestore/internal/view"
)

// Catalog is the upstream catalog surface the storefront consumes.
type Catalog interface {
	ListPerfumes(ctx context.Context, query, brand string) ([]domain.Perfume, error)
	GetPerfume(ctx context.Context, id string) (domain.Perfume, error)
	ListReviews(ctx context.Context, perfumeID string) ([]domain.Review, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	GetOverview(ctx context.Context) (domain.Overview, error)
}

// maxReviewFetchers bounds the per-page review fan-out.
const maxReviewFetchers = 8

// Storefront builds customer-facing catalog views.
type Storefront struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewStorefront creates the storefront service.
func NewStorefront(c Catalog, logger *slog.Logger) *Storefront {
	return &Storefront{catalog: c, logger: logger}
}

// Browse returns the filtered, sorted catalog view for a query. Review
// fetches fan out concurrently per perfume; a failed fetch degrades that
// perfume to a zero rating summary instead of failing the page.
func (s *Storefront) Browse(ctx context.Context, q domain.QueryState) ([]view.Item, error) {
	perfumes, err := s.catalog.ListPerfumes(ctx, "", "")
	if err != nil {
		return nil, err
	}

	summaries := s.fetchSummaries(ctx, perfumes)
	return view.Derive(perfumes, summaries, q), nil
}

// fetchSummaries fetches and aggregates reviews for each perfume with
// bounded concurrency. Results are keyed by perfume ID.
func (s *Storefront) fetchSummaries(ctx context.Context, perfumes []domain.Perfume) map[string]domain.RatingSummary {
	summaries := make(map[string]domain.RatingSummary, len(perfumes))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxReviewFetchers)
	)

	for _, p := range perfumes {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			reviews, err := s.catalog.ListReviews(ctx, id)
			if err != nil {
				s.logger.WarnContext(ctx, "review fetch failed, using zero summary",
					slog.String("perfume_id", id),
					slog.String("error", err.Error()),
				)
				return
			}

			summary := rating.Aggregate(reviews)

			mu.Lock()
			summaries[id] = summary
			mu.Unlock()
		}(p.ID)
	}

	wg.Wait()
	return summaries
}

// ReviewItem is a review annotated with the caller's permissions on it.
type ReviewItem struct {
	domain.Review
	CanModify bool `json:"can_modify"`
}

// Detail is the full product page payload.
type Detail struct {
	Perfume         domain.Perfume       `json:"perfume"`
	RatingAverage   float64              `json:"rating_average"`
	RatingCount     int                  `json:"rating_count"`
	Reviews         []ReviewItem         `json:"reviews"`
	AlreadyReviewed bool                 `json:"already_reviewed"`
	Summary         domain.RatingSummary `json:"-"`
}

// Detail returns a perfume with its reviews and rating summary. Permission
// flags come from the explicit session: the review's author and admins may
// modify it, and AlreadyReviewed is set when the caller has a review on
// this perfume.
func (s *Storefront) Detail(ctx context.Context, id string, sess session.Session) (Detail, error) {
	perfume, err := s.catalog.GetPerfume(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	reviews, err := s.catalog.ListReviews(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	summary := rating.Aggregate(reviews)

	items := make([]ReviewItem, len(reviews))
	alreadyReviewed := false
	for i, r := range reviews {
		isAuthor := sess.Authenticated && sess.UserID != "" && r.AuthorID == sess.UserID
		if isAuthor {
			alreadyReviewed = true
		}
		items[i] = ReviewItem{
			Review:    r,
			CanModify: isAuthor || (sess.Authenticated && sess.IsAdmin),
		}
	}

	return Detail{
		Perfume:         perfume,
		RatingAverage:   summary.DisplayAverage(),
		RatingCount:     summary.Count,
		Reviews:         items,
		AlreadyReviewed: alreadyReviewed,
		Summary:         summary,
	}, nil
}

// Brands returns the active brand list.
func (s *Storefront) Brands(ctx context.Context) ([]domain.Brand, error) {
	return s.catalog.ListBrands(ctx)
}

// Overview returns the dashboard statistics.
func (s *Storefront) Overview(ctx context.Context) (domain.Overview, error) {
	return s.catalog.GetOverview(ctx)
}
