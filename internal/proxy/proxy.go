// Package proxy passes catalog mutations through to the upstream API and
// fires an explicit invalidation callback when one succeeds.
package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/TuancoderLo/perfumestore/internal/event"
	apperrors "github.com/TuancoderLo/perfumestore/pkg/errors"
	httpx "github.com/TuancoderLo/perfumestore/pkg/httputil"
)

// InvalidateFunc is called after a successful mutation with the affected
// entity. Implementations must not block the response path for long.
type InvalidateFunc func(r *http.Request, inv event.Invalidation)

// Proxy forwards requests verbatim to the upstream catalog API. Auth headers
// and bodies pass through untouched; the upstream keeps authorization
// authority over mutations.
type Proxy struct {
	target     *url.URL
	rp         *httputil.ReverseProxy
	invalidate InvalidateFunc
	logger     *slog.Logger
}

// New creates a pass-through proxy for the given upstream base URL.
// invalidate may be nil when no cache invalidation is wired.
func New(targetURL string, invalidate InvalidateFunc, logger *slog.Logger) (*Proxy, error) {
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, err
	}

	p := &Proxy{
		target:     target,
		invalidate: invalidate,
		logger:     logger,
	}

	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = target.Host
		},
		ModifyResponse: p.afterResponse,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "upstream proxy error",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			httpx.WriteError(w, r, apperrors.UpstreamUnavailable(err), logger)
		},
	}

	return p, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

// afterResponse fires the invalidation callback for successful mutations.
// Reads never invalidate, and neither do failed writes.
func (p *Proxy) afterResponse(resp *http.Response) error {
	r := resp.Request
	if r == nil || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}
	if p.invalidate == nil {
		return nil
	}

	inv, ok := invalidationFor(r.URL.Path)
	if !ok {
		return nil
	}

	p.logger.InfoContext(r.Context(), "catalog mutation succeeded",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("scope", inv.Scope),
		slog.String("entity_id", inv.EntityID),
	)
	p.invalidate(r, inv)
	return nil
}

// invalidationFor maps a mutation path to the invalidation it implies.
// Auth and member paths mutate nothing catalog-visible.
func invalidationFor(path string) (event.Invalidation, bool) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) < 2 || segs[0] != "api" {
		return event.Invalidation{}, false
	}

	switch segs[1] {
	case "perfumes":
		return event.Invalidation{Scope: event.ScopePerfume, EntityID: segAt(segs, 2)}, true
	case "brands":
		return event.Invalidation{Scope: event.ScopeBrand, EntityID: segAt(segs, 2)}, true
	case "comments":
		// /api/comments/perfume/{id} carries the perfume; /api/comments/{id}
		// carries the comment itself.
		if segAt(segs, 2) == "perfume" {
			return event.Invalidation{Scope: event.ScopeReview, EntityID: segAt(segs, 3)}, true
		}
		return event.Invalidation{Scope: event.ScopeReview, EntityID: segAt(segs, 2)}, true
	default:
		return event.Invalidation{}, false
	}
}

func segAt(segs []string, i int) string {
	if i < len(segs) {
		return segs[i]
	}
	return ""
}
