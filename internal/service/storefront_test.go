package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuancoderLo/perfumestore/internal/domain"
	"github.com/TuancoderLo/perfumestore/internal/session"
	apperrors "github.com/TuancoderLo/perfumestore/pkg/errors"
)

type fakeCatalog struct {
	mu        sync.Mutex
	perfumes  []domain.Perfume
	reviews   map[string][]domain.Review
	reviewErr map[string]error
	brands    []domain.Brand
	overview  domain.Overview
	listErr   error
	getErr    error
	listDelay time.Duration
	listCalls int
}

func (f *fakeCatalog) ListPerfumes(ctx context.Context, query, brand string) ([]domain.Perfume, error) {
	f.mu.Lock()
	f.listCalls++
	delay := f.listDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.perfumes, nil
}

func (f *fakeCatalog) GetPerfume(ctx context.Context, id string) (domain.Perfume, error) {
	if f.getErr != nil {
		return domain.Perfume{}, f.getErr
	}
	for _, p := range f.perfumes {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Perfume{}, apperrors.NotFound("perfume", id)
}

func (f *fakeCatalog) ListReviews(ctx context.Context, perfumeID string) ([]domain.Review, error) {
	if err := f.reviewErr[perfumeID]; err != nil {
		return nil, err
	}
	return f.reviews[perfumeID], nil
}

func (f *fakeCatalog) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return f.brands, nil
}

func (f *fakeCatalog) GetOverview(ctx context.Context) (domain.Overview, error) {
	return f.overview, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		perfumes: []domain.Perfume{
			{ID: "p1", Name: "Noir", Brand: "Chanel", Price: 150},
			{ID: "p2", Name: "Aqua", Brand: "Dior", Price: 80},
			{ID: "p3", Name: "Mist", Brand: "Dior", Price: 60},
		},
		reviews: map[string][]domain.Review{
			"p1": {
				{ID: "c1", PerfumeID: "p1", AuthorID: "u1", Rating: 5},
				{ID: "c2", PerfumeID: "p1", AuthorID: "u2", Rating: 4},
			},
			"p2": {
				{ID: "c3", PerfumeID: "p2", AuthorID: "u3", Rating: 0},
			},
		},
		reviewErr: map[string]error{},
	}
}

func TestBrowseAggregatesRatingsByID(t *testing.T) {
	s := NewStorefront(testCatalog(), testLogger())

	items, err := s.Browse(context.Background(), domain.QueryState{Sort: domain.SortPriceHigh})
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Summaries follow the perfume ID, not its position in the sorted view.
	assert.Equal(t, "p1", items[0].ID)
	assert.InDelta(t, 4.5, items[0].RatingAverage, 1e-9)
	assert.Equal(t, 2, items[0].RatingCount)

	assert.Equal(t, "p2", items[1].ID)
	assert.Zero(t, items[1].RatingAverage)
	assert.Equal(t, 1, items[1].RatingCount)

	assert.Equal(t, "p3", items[2].ID)
	assert.Zero(t, items[2].RatingCount)
}

func TestBrowseDegradesOnReviewFetchFailure(t *testing.T) {
	c := testCatalog()
	c.reviewErr["p1"] = apperrors.UpstreamUnavailable(errors.New("connection refused"))

	s := NewStorefront(c, testLogger())

	items, err := s.Browse(context.Background(), domain.QueryState{Sort: domain.SortPriceHigh})
	require.NoError(t, err)
	require.Len(t, items, 3)

	// p1's reviews failed to load: the page still renders, p1 just shows
	// no rating.
	assert.Equal(t, "p1", items[0].ID)
	assert.Zero(t, items[0].RatingAverage)
	assert.Zero(t, items[0].RatingCount)
}

func TestBrowsePropagatesCatalogFailure(t *testing.T) {
	c := testCatalog()
	c.listErr = apperrors.UpstreamUnavailable(errors.New("connection refused"))

	s := NewStorefront(c, testLogger())

	_, err := s.Browse(context.Background(), domain.QueryState{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamUnavailable))
}

func TestBrowseAppliesFilters(t *testing.T) {
	s := NewStorefront(testCatalog(), testLogger())

	items, err := s.Browse(context.Background(), domain.QueryState{
		Brands:    []string{"Dior"},
		MinRating: 0,
		Sort:      domain.SortPriceLow,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p3", items[0].ID)
	assert.Equal(t, "p2", items[1].ID)
}

func TestDetailPermissionFlags(t *testing.T) {
	s := NewStorefront(testCatalog(), testLogger())

	// Anonymous: nothing is modifiable.
	d, err := s.Detail(context.Background(), "p1", session.Anonymous)
	require.NoError(t, err)
	assert.False(t, d.AlreadyReviewed)
	for _, r := range d.Reviews {
		assert.False(t, r.CanModify)
	}

	// The author can modify their own review only.
	d, err = s.Detail(context.Background(), "p1", session.Session{UserID: "u1", Authenticated: true})
	require.NoError(t, err)
	assert.True(t, d.AlreadyReviewed)
	require.Len(t, d.Reviews, 2)
	assert.True(t, d.Reviews[0].CanModify)
	assert.False(t, d.Reviews[1].CanModify)

	// Admins can modify everything but have not reviewed.
	d, err = s.Detail(context.Background(), "p1", session.Session{UserID: "admin", IsAdmin: true, Authenticated: true})
	require.NoError(t, err)
	assert.False(t, d.AlreadyReviewed)
	for _, r := range d.Reviews {
		assert.True(t, r.CanModify)
	}
}

func TestDetailRatingSummary(t *testing.T) {
	s := NewStorefront(testCatalog(), testLogger())

	d, err := s.Detail(context.Background(), "p1", session.Anonymous)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, d.RatingAverage, 1e-9)
	assert.Equal(t, 2, d.RatingCount)
	assert.InDelta(t, 4.5, d.Summary.Average, 1e-9)
}

func TestDetailNotFound(t *testing.T) {
	s := NewStorefront(testCatalog(), testLogger())

	_, err := s.Detail(context.Background(), "missing", session.Anonymous)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestBrandsAndOverviewPassThrough(t *testing.T) {
	c := testCatalog()
	c.brands = []domain.Brand{{ID: "b1", Name: "Chanel"}}
	c.overview = domain.Overview{TotalPerfumes: 3, TotalBrands: 1, TotalReviews: 3}

	s := NewStorefront(c, testLogger())

	brands, err := s.Brands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.brands, brands)

	ov, err := s.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.overview, ov)
}
