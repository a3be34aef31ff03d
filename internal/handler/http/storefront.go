package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/TuancoderLo/perfumestore/internal/domain"
	"github.com/TuancoderLo/perfumestore/internal/service"
	"github.com/TuancoderLo/perfumestore/internal/session"
	"github.com/TuancoderLo/perfumestore/pkg/httputil"
	"github.com/TuancoderLo/perfumestore/pkg/pagination"
	"github.com/TuancoderLo/perfumestore/pkg/validator"
)

// StorefrontHandler handles the customer-facing catalog endpoints.
type StorefrontHandler struct {
	storefront *service.Storefront
	suggester  *service.Suggester
	logger     *slog.Logger
}

// NewStorefrontHandler creates the storefront HTTP handler.
func NewStorefrontHandler(sf *service.Storefront, sg *service.Suggester, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		storefront: sf,
		suggester:  sg,
		logger:     logger,
	}
}

// Browse handles GET /api/v1/catalog
func (h *StorefrontHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q, err := queryStateFromRequest(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items, err := h.storefront.Browse(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.Paginate(items, pagination.FromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// Detail handles GET /api/v1/catalog/{id}
func (h *StorefrontHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.storefront.Detail(r.Context(), id, session.FromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// Brands handles GET /api/v1/brands
func (h *StorefrontHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.storefront.Brands(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: brands})
}

// Overview handles GET /api/v1/overview
func (h *StorefrontHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.storefront.Overview(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ov})
}

// Suggest handles GET /api/v1/suggest. A superseded request answers 204: the
// client already sent a newer query and will render that response instead.
func (h *StorefrontHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	suggestions, err := h.suggester.Suggest(r.Context(), suggestClientKey(r), query)
	if err != nil {
		if errors.Is(err, service.ErrSuperseded) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: suggestions})
}

// suggestClientKey identifies the typing client: the user when
// authenticated, the remote IP otherwise.
func suggestClientKey(r *http.Request) string {
	if s := session.FromContext(r.Context()); s.Authenticated {
		return "user:" + s.UserID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// browseParams holds the numeric browse parameters that carry range
// constraints.
type browseParams struct {
	MinRating float64 `validate:"gte=0,lte=5"`
}

// queryStateFromRequest parses the browse filter and sort parameters.
// Unknown sort keys silently fall back to the name sort; a malformed or
// out-of-range min_rating is a client error.
func queryStateFromRequest(r *http.Request) (domain.QueryState, error) {
	params := r.URL.Query()

	q := domain.QueryState{
		Search:  strings.TrimSpace(params.Get("q")),
		Brands:  splitParam(params.Get("brands")),
		Buckets: splitParam(params.Get("price_buckets")),
		Genders: splitParam(params.Get("genders")),
		Sort:    domain.ParseSortKey(params.Get("sort")),
	}

	if v := params.Get("min_rating"); v != "" {
		minRating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.QueryState{}, errors.New("min_rating must be a number")
		}
		q.MinRating = minRating
	}

	if err := validator.Validate(browseParams{MinRating: q.MinRating}); err != nil {
		return domain.QueryState{}, err
	}

	return q, nil
}

// splitParam splits a comma-separated parameter, dropping empty entries.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
