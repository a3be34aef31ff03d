// Package catalog fetches and normalizes data from the upstream catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/TuancoderLo/perfumestore/internal/domain"
	"github.com/TuancoderLo/perfumestore/pkg/cache"
	apperrors "github.com/TuancoderLo/perfumestore/pkg/errors"
	"github.com/TuancoderLo/perfumestore/pkg/httpclient"
)

// Cache keys for raw upstream payloads. Only slow-moving collection
// responses are cached; per-perfume data is always fetched live.
const (
	cacheKeyBrands   = "catalog:brands"
	cacheKeyOverview = "catalog:overview"
)

// InvalidationKeys returns the cache keys cleared when a catalog mutation
// lands.
func InvalidationKeys() []string {
	return []string{cacheKeyBrands, cacheKeyOverview}
}

// Client talks to the upstream catalog API and maps its documents onto
// domain types. All failures surface as typed errors; the client never
// retries beyond the shared transport and never caches failures.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	cache   *cache.Cache
	logger  *slog.Logger
}

// New creates a catalog client. cache may be nil to disable payload caching.
func New(baseURL string, hc *httpclient.CircuitBreakerClient, c *cache.Cache, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		cache:   c,
		logger:  logger,
	}
}

// ListPerfumes fetches the public perfume collection, optionally narrowed by
// a search term and a brand name understood by the upstream.
func (c *Client) ListPerfumes(ctx context.Context, query, brand string) ([]domain.Perfume, error) {
	u := c.baseURL + "/api/public/perfumes"
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if brand != "" {
		params.Set("brand", brand)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var docs []perfumeDoc
	if err := c.getJSON(ctx, u, "list perfumes", &docs); err != nil {
		return nil, err
	}

	perfumes := make([]domain.Perfume, len(docs))
	for i, d := range docs {
		perfumes[i] = d.toDomain()
	}
	return perfumes, nil
}

// GetPerfume fetches a single perfume by ID.
func (c *Client) GetPerfume(ctx context.Context, id string) (domain.Perfume, error) {
	u := c.baseURL + "/api/public/perfumes/" + url.PathEscape(id)

	var doc perfumeDoc
	if err := c.getJSON(ctx, u, "get perfume", &doc); err != nil {
		return domain.Perfume{}, err
	}
	return doc.toDomain(), nil
}

// ListReviews fetches the approved reviews for a perfume. The upstream
// public comments path only ever returns approved reviews.
func (c *Client) ListReviews(ctx context.Context, perfumeID string) ([]domain.Review, error) {
	u := c.baseURL + "/api/comments/perfume/" + url.PathEscape(perfumeID)

	var docs []commentDoc
	if err := c.getJSON(ctx, u, "list reviews", &docs); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, len(docs))
	for i, d := range docs {
		reviews[i] = d.toDomain(perfumeID)
	}
	return reviews, nil
}

// ListBrands fetches the brand list, dropping soft-deleted brands. The raw
// payload is cached under cacheKeyBrands.
func (c *Client) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	u := c.baseURL + "/api/public/brands"

	var docs []brandDoc
	if err := c.getJSONCached(ctx, u, cacheKeyBrands, "list brands", &docs); err != nil {
		return nil, err
	}

	brands := make([]domain.Brand, 0, len(docs))
	for _, d := range docs {
		if d.IsDeleted {
			continue
		}
		brands = append(brands, d.toDomain())
	}
	return brands, nil
}

type overviewDoc struct {
	Statistics struct {
		TotalPerfumes int `json:"totalPerfumes"`
		TotalBrands   int `json:"totalBrands"`
		TotalComments int `json:"totalComments"`
	} `json:"statistics"`
	RecentPerfumes []perfumeDoc `json:"recentPerfumes"`
}

// GetOverview fetches the dashboard statistics. The raw payload is cached
// under cacheKeyOverview.
func (c *Client) GetOverview(ctx context.Context) (domain.Overview, error) {
	u := c.baseURL + "/api/public/overview"

	var doc overviewDoc
	if err := c.getJSONCached(ctx, u, cacheKeyOverview, "get overview", &doc); err != nil {
		return domain.Overview{}, err
	}

	recent := make([]domain.Perfume, len(doc.RecentPerfumes))
	for i, d := range doc.RecentPerfumes {
		recent[i] = d.toDomain()
	}

	return domain.Overview{
		TotalPerfumes:  doc.Statistics.TotalPerfumes,
		TotalBrands:    doc.Statistics.TotalBrands,
		TotalReviews:   doc.Statistics.TotalComments,
		RecentPerfumes: recent,
	}, nil
}

// getJSON fetches a URL and decodes the 2xx body into out.
func (c *Client) getJSON(ctx context.Context, url, operation string, out any) error {
	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return apperrors.UpstreamUnavailable(fmt.Errorf("%s: %w", operation, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, operation)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Decode(fmt.Errorf("%s: %w", operation, err))
	}
	return nil
}

// getJSONCached is getJSON with a raw-payload cache in front. A cached body
// that no longer decodes is dropped and refetched.
func (c *Client) getJSONCached(ctx context.Context, url, key, operation string, out any) error {
	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(raw, out); err == nil {
				return nil
			}
			c.logger.WarnContext(ctx, "dropping undecodable cached payload",
				slog.String("key", key),
			)
			c.cache.Delete(ctx, key)
		}
	}

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return apperrors.UpstreamUnavailable(fmt.Errorf("%s: %w", operation, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, operation)
	}

	raw, err := readAll(resp)
	if err != nil {
		return apperrors.UpstreamUnavailable(fmt.Errorf("%s: %w", operation, err))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Decode(fmt.Errorf("%s: %w", operation, err))
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, raw)
	}
	return nil
}

// maxBodySize bounds cached upstream payloads.
const maxBodySize = 4 << 20

func readAll(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// IsNotFound reports whether the error is the upstream's 404.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
