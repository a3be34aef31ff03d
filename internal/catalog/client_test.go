package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuancoderLo/perfumestore/internal/domain"
	apperrors "github.com/TuancoderLo/perfumestore/pkg/errors"
	"github.com/TuancoderLo/perfumestore/pkg/httpclient"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(srv *httptest.Server) *Client {
	hc := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(hc, httpclient.DefaultCircuitBreakerConfig("test-catalog"), discardLogger())
	return New(srv.URL, cb, nil, discardLogger())
}

func jsonHandler(t *testing.T, wantPath, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestListPerfumesNormalizesDocuments(t *testing.T) {
	body := `[
		{"_id":"p1","perfumeName":"Noir","brand":{"_id":"b1","brandName":"Chanel"},"price":120,"uri":"/img/noir.jpg","targetAudience":"MALE","volume":"50ml","concentration":"Extrait"},
		{"_id":"p2","perfumeName":"Aqua","brand":"Dior","price":80},
		{"_id":"p3","perfumeName":"Mist","brand":null,"price":60}
	]`
	srv := httptest.NewServer(jsonHandler(t, "/api/public/perfumes", body))
	defer srv.Close()

	perfumes, err := testClient(srv).ListPerfumes(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, perfumes, 3)

	assert.Equal(t, domain.Perfume{
		ID: "p1", Name: "Noir", Brand: "Chanel", Price: 120,
		ImageURL: "/img/noir.jpg", TargetAudience: "male",
		Volume: "50ml", Concentration: "Extrait",
	}, perfumes[0])

	// Brand given as a bare string; missing volume and concentration take
	// the defaults, missing audience normalizes to unisex.
	assert.Equal(t, "Dior", perfumes[1].Brand)
	assert.Equal(t, "100ml", perfumes[1].Volume)
	assert.Equal(t, "Eau de Parfum", perfumes[1].Concentration)
	assert.Equal(t, "unisex", perfumes[1].TargetAudience)

	assert.Equal(t, "Unknown", perfumes[2].Brand)
}

func TestListPerfumesForwardsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rose", r.URL.Query().Get("q"))
		assert.Equal(t, "Chanel", r.URL.Query().Get("brand"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	perfumes, err := testClient(srv).ListPerfumes(context.Background(), "rose", "Chanel")
	require.NoError(t, err)
	assert.Empty(t, perfumes)
}

func TestGetPerfumeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Perfume not found"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).GetPerfume(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.True(t, IsNotFound(err))
}

func TestListReviewsFlexibleRatings(t *testing.T) {
	body := `[
		{"_id":"c1","content":"great","rating":5,"user":{"_id":"u1","name":"An"},"createdAt":"2025-03-01T10:00:00Z"},
		{"_id":"c2","content":"nice","rating":"4","user":{"_id":"u2","name":"Binh"},"createdAt":"2025-03-02T10:00:00Z"},
		{"_id":"c3","content":"no stars","user":{"_id":"u3","name":"Chi"},"createdAt":"not-a-date"},
		{"_id":"c4","content":"weird","rating":"five","user":{"_id":"u4","name":"Dung"},"createdAt":"2025-03-04T10:00:00Z"}
	]`
	srv := httptest.NewServer(jsonHandler(t, "/api/comments/perfume/p1", body))
	defer srv.Close()

	reviews, err := testClient(srv).ListReviews(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 4)

	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, 4, reviews[1].Rating)
	assert.Equal(t, 0, reviews[2].Rating)
	assert.True(t, reviews[2].CreatedAt.IsZero())
	assert.Equal(t, 0, reviews[3].Rating)

	for _, r := range reviews {
		assert.Equal(t, "p1", r.PerfumeID)
	}
	assert.Equal(t, "An", reviews[0].Author)
	assert.Equal(t, "u1", reviews[0].AuthorID)
}

func TestListBrandsFiltersDeleted(t *testing.T) {
	body := `[
		{"_id":"b1","brandName":"Chanel","isDeleted":false},
		{"_id":"b2","brandName":"Old House","isDeleted":true},
		{"_id":"b3","brandName":"Dior"}
	]`
	srv := httptest.NewServer(jsonHandler(t, "/api/public/brands", body))
	defer srv.Close()

	brands, err := testClient(srv).ListBrands(context.Background())
	require.NoError(t, err)
	require.Len(t, brands, 2)
	assert.Equal(t, "Chanel", brands[0].Name)
	assert.Equal(t, "Dior", brands[1].Name)
}

func TestGetOverview(t *testing.T) {
	body := `{
		"statistics":{"totalPerfumes":42,"totalBrands":7,"totalComments":133},
		"recentPerfumes":[{"_id":"p9","perfumeName":"New One","brand":"Dior","price":95}]
	}`
	srv := httptest.NewServer(jsonHandler(t, "/api/public/overview", body))
	defer srv.Close()

	ov, err := testClient(srv).GetOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, ov.TotalPerfumes)
	assert.Equal(t, 7, ov.TotalBrands)
	assert.Equal(t, 133, ov.TotalReviews)
	require.Len(t, ov.RecentPerfumes, 1)
	assert.Equal(t, "New One", ov.RecentPerfumes[0].Name)
}

func TestListPerfumesUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv).ListPerfumes(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamUnavailable))
}

func TestListPerfumesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv).ListPerfumes(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDecode))
}
