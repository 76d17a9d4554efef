package consumers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/app"
	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/slug"
)

// ImportEventHandler turns catalog.import.requested events into product rows.
// Import is the one path allowed to auto-suffix slugs instead of rejecting
// collisions, so a whole feed never fails over a name clash.
type ImportEventHandler struct {
	repository app.Repository
	slugs      *slug.Resolver
	logger     *zap.Logger
}

func NewImportEventHandler(repository app.Repository, slugs *slug.Resolver, logger *zap.Logger) *ImportEventHandler {
	return &ImportEventHandler{
		repository: repository,
		slugs:      slugs,
		logger:     logger,
	}
}

func (h *ImportEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	zap.L().Info("Import event received",
		zap.String("event", event.Event),
		zap.String("version", event.Version),
		zap.String("traceId", event.TraceID),
	)

	switch event.Event {
	case events.ImportRequestedEvent:
		return h.handleImportRequested(ctx, event)
	default:
		zap.L().Warn("Unknown import event type", zap.String("event", event.Event))
		return nil
	}
}

func (h *ImportEventHandler) handleImportRequested(ctx context.Context, event *events.Event) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("malformed payload - marshal failed: %w", err)
	}

	var payload events.ImportRequestedPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return fmt.Errorf("malformed payload - unmarshal failed: %w", err)
	}

	if payload.Name == "" {
		return fmt.Errorf("malformed payload - name missing")
	}
	if payload.CategoryID == "" {
		return fmt.Errorf("malformed payload - categoryId missing")
	}
	if !domain.Currency(payload.Currency).Valid() {
		return fmt.Errorf("malformed payload - unknown currency %q", payload.Currency)
	}
	if payload.Price.IsNegative() {
		return fmt.Errorf("malformed payload - negative price")
	}

	if _, err := h.repository.GetCategoryByID(ctx, payload.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("unknown category %s", payload.CategoryID)
		}
		return fmt.Errorf("failed to verify category: %w", err)
	}

	productSlug, err := h.slugs.ResolveUnique(ctx, slug.Products, payload.Name, "")
	if err != nil {
		return fmt.Errorf("failed to resolve slug: %w", err)
	}

	req := &app.CreateProductRequest{
		Name:       payload.Name,
		Slug:       productSlug,
		Price:      payload.Price,
		Currency:   payload.Currency,
		CategoryID: payload.CategoryID,
	}
	if payload.Description != "" {
		req.Description = &payload.Description
	}

	product, err := h.repository.CreateProduct(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	zap.L().Info("Imported product",
		zap.String("productId", product.ID),
		zap.String("slug", product.Slug),
		zap.String("traceId", event.TraceID),
	)

	return nil
}
