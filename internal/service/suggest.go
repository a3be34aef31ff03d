package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/TuancoderLo/perfumestore/internal/domain"
)

// ErrSuperseded is returned when a newer suggestion request for the same
// client arrived while this one was waiting or in flight.
var ErrSuperseded = errors.New("suggestion request superseded")

const (
	// suggestQuiet is how long a request waits for the client to stop
	// typing before hitting the upstream.
	suggestQuiet = 250 * time.Millisecond

	// maxSuggestions caps the returned list.
	maxSuggestions = 8

	// Sequence entries for idle clients are evicted so the map stays
	// bounded by recently active clients.
	seqCleanupInterval = time.Minute
	seqClientTTL       = 10 * time.Minute
)

// Suggestion is a single typeahead result.
type Suggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}

// seqEntry tracks the latest request sequence for one client key.
type seqEntry struct {
	seq      uint64
	lastSeen time.Time
}

// Suggester serves debounced search suggestions. Per client key, only the
// most recent request may produce a result: earlier in-flight requests are
// discarded by sequence number, so a slow response for an old query can
// never overwrite a newer one. Entries for idle clients age out on a
// cleanup loop.
type Suggester struct {
	catalog Catalog
	logger  *slog.Logger
	quiet   time.Duration
	ttl     time.Duration

	mu   sync.Mutex
	seqs map[string]*seqEntry

	done     chan struct{}
	stopOnce sync.Once
}

// NewSuggester creates the suggestion service and starts its cleanup loop.
func NewSuggester(c Catalog, logger *slog.Logger) *Suggester {
	s := &Suggester{
		catalog: c,
		logger:  logger,
		quiet:   suggestQuiet,
		ttl:     seqClientTTL,
		seqs:    make(map[string]*seqEntry),
		done:    make(chan struct{}),
	}
	go s.cleanup(seqCleanupInterval)
	return s
}

func (s *Suggester) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *Suggester) evictIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.seqs {
		if time.Since(e.lastSeen) > s.ttl {
			delete(s.seqs, key)
		}
	}
}

// Stop terminates the cleanup loop.
func (s *Suggester) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// next registers a new request for the client and returns its sequence.
func (s *Suggester) next(clientKey string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.seqs[clientKey]
	if !ok {
		e = &seqEntry{}
		s.seqs[clientKey] = e
	}
	e.seq++
	e.lastSeen = time.Now()
	return e.seq
}

// isCurrent reports whether seq is still the latest request for the client.
func (s *Suggester) isCurrent(clientKey string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.seqs[clientKey]
	return ok && e.seq == seq
}

// Suggest returns up to maxSuggestions matches for the query after the
// debounce window. An empty query short-circuits to an empty list.
func (s *Suggester) Suggest(ctx context.Context, clientKey, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}, nil
	}

	seq := s.next(clientKey)

	select {
	case <-time.After(s.quiet):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !s.isCurrent(clientKey, seq) {
		return nil, ErrSuperseded
	}

	perfumes, err := s.catalog.ListPerfumes(ctx, query, "")
	if err != nil {
		return nil, err
	}

	// The fetch may have raced a newer request; sequence order decides,
	// not network arrival order.
	if !s.isCurrent(clientKey, seq) {
		s.logger.DebugContext(ctx, "discarding superseded suggestion result",
			slog.String("query", query),
		)
		return nil, ErrSuperseded
	}

	matches := filterSuggestions(perfumes, query)
	return matches, nil
}

func filterSuggestions(perfumes []domain.Perfume, query string) []Suggestion {
	queryLower := strings.ToLower(query)
	out := make([]Suggestion, 0, maxSuggestions)

	for _, p := range perfumes {
		if !strings.Contains(strings.ToLower(p.Name), queryLower) &&
			!strings.Contains(strings.ToLower(p.Brand), queryLower) {
			continue
		}
		out = append(out, Suggestion{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			Price:    p.Price,
			ImageURL: p.ImageURL,
		})
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
