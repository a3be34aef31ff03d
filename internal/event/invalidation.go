// Package event publishes and consumes catalog invalidation events. A
// mutation on one instance invalidates the cached upstream payloads on every
// instance through a typed event; there is no process-wide event bus.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/TuancoderLo/perfumestore/pkg/kafka"
	"github.com/TuancoderLo/perfumestore/pkg/logger"
)

const (
	// TopicCatalogInvalidated carries invalidation events between
	// storefront instances.
	TopicCatalogInvalidated = "storefront.catalog.invalidated"

	// EventTypeCatalogInvalidated identifies the invalidation event.
	EventTypeCatalogInvalidated = "catalog.invalidated"

	source = "storefront"
)

// Invalidation scopes, matching the mutated entity.
const (
	ScopePerfume = "perfume"
	ScopeBrand   = "brand"
	ScopeReview  = "review"
	ScopeCatalog = "catalog"
)

// Invalidation names the entity whose cached data is stale.
type Invalidation struct {
	Scope    string `json:"scope"`
	EntityID string `json:"entity_id,omitempty"`
}

// Publisher emits invalidation events after successful catalog mutations.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewPublisher creates an invalidation publisher.
func NewPublisher(producer *kafka.Producer, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: logger}
}

// Publish emits an invalidation for the given scope and entity. The
// aggregate key falls back to the scope so catalog-wide invalidations still
// have a stable partition key.
func (p *Publisher) Publish(ctx context.Context, inv Invalidation) error {
	aggregateID := inv.EntityID
	if aggregateID == "" {
		aggregateID = inv.Scope
	}

	evt, err := kafka.NewEvent(EventTypeCatalogInvalidated, aggregateID, inv.Scope, source, inv)
	if err != nil {
		return fmt.Errorf("build invalidation event: %w", err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	return p.producer.Publish(ctx, TopicCatalogInvalidated, evt)
}

// CacheInvalidator clears cached payloads when an invalidation arrives.
type CacheInvalidator interface {
	Delete(ctx context.Context, keys ...string)
}

// NewInvalidationHandler returns a kafka handler that drops the affected
// cache keys. keys is the full set of payload cache keys; every scope clears
// all of them since the cached payloads are collection-level.
func NewInvalidationHandler(cache CacheInvalidator, keys []string, log *slog.Logger) kafka.Handler {
	return func(ctx context.Context, evt *kafka.Event) error {
		if evt.EventType != EventTypeCatalogInvalidated {
			return nil
		}

		var inv Invalidation
		if err := json.Unmarshal(evt.Data, &inv); err != nil {
			return fmt.Errorf("decode invalidation payload: %w", err)
		}

		log.InfoContext(ctx, "invalidating cached payloads",
			slog.String("scope", inv.Scope),
			slog.String("entity_id", inv.EntityID),
		)
		cache.Delete(ctx, keys...)
		return nil
	}
}
