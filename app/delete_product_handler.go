package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type DeleteProductHandler struct {
	repository     Repository
	images         *ImageLifecycle
	eventPublisher events.Publisher
}

type DeleteProductRequest struct {
	ID string `params:"id" validate:"required,uuid4"`
}

type DeleteProductResponse struct{}

func NewDeleteProductHandler(repository Repository, images *ImageLifecycle, eventPublisher events.Publisher) *DeleteProductHandler {
	return &DeleteProductHandler{
		repository:     repository,
		images:         images,
		eventPublisher: eventPublisher,
	}
}

func (h DeleteProductHandler) Handle(ctx context.Context, req *DeleteProductRequest) (*DeleteProductResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.delete.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.delete.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	product, err := h.repository.GetProductByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.delete.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.delete.failed",
			"Failed to retrieve product",
			nil,
		)
	}

	// Blobs go first, best effort. The row cascade below is what guarantees
	// the images table holds no orphans.
	imageCount, err := h.images.PurgeProductImages(ctx, product.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.delete.purge_failed",
			"Failed to collect product images for deletion",
			nil,
		)
	}

	if err := h.repository.DeleteProduct(ctx, product.ID); err != nil {
		return nil, httperror.InternalServerError(
			"product.delete.delete_failed",
			"An error occurred while deleting the product",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, product, imageCount)

	return nil, httperror.NoContent(
		"product.delete.success",
		"Product deleted",
		nil,
	)
}

func (h DeleteProductHandler) publishEvent(ctx context.Context, product domain.Product, imageCount int) {
	if h.eventPublisher != nil {
		eventPayload := events.ProductDeletedPayload{
			ID:        product.ID,
			Slug:      product.Slug,
			Images:    imageCount,
			DeletedAt: time.Now().UTC(),
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.ProductDeletedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish product.deleted event",
				zap.String("productId", product.ID),
				zap.Error(err),
			)
		}
	}
}
