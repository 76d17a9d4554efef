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

type DeleteProductImageHandler struct {
	repository     Repository
	images         *ImageLifecycle
	eventPublisher events.Publisher
}

type DeleteProductImageRequest struct {
	ProductID string `params:"id" validate:"required,uuid4"`
	ImageID   string `params:"imageId" validate:"required,uuid4"`
}

type DeleteProductImageResponse struct{}

func NewDeleteProductImageHandler(repository Repository, images *ImageLifecycle, eventPublisher events.Publisher) *DeleteProductImageHandler {
	return &DeleteProductImageHandler{
		repository:     repository,
		images:         images,
		eventPublisher: eventPublisher,
	}
}

func (h DeleteProductImageHandler) Handle(ctx context.Context, req *DeleteProductImageRequest) (*DeleteProductImageResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.delete_image.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.delete_image.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	image, err := h.repository.GetProductImage(ctx, req.ProductID, req.ImageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.delete_image.not_found",
				"Image does not belong to this product",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.delete_image.failed",
			"Failed to retrieve image",
			nil,
		)
	}

	if err := h.images.RemoveProductImage(ctx, image); err != nil {
		return nil, httperror.InternalServerError(
			"product.delete_image.delete_failed",
			"An error occurred while deleting the image",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, image)

	return nil, httperror.NoContent(
		"product.delete_image.success",
		"Image deleted",
		nil,
	)
}

func (h DeleteProductImageHandler) publishEvent(ctx context.Context, image domain.ProductImage) {
	if h.eventPublisher != nil {
		eventPayload := events.ProductImageDeletedPayload{
			ID:        image.ID,
			ProductID: image.ProductID,
			ImageURL:  image.ImageURL,
			DeletedAt: time.Now().UTC(),
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.ProductImageDeletedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish product.image.deleted event",
				zap.String("imageID", image.ID),
				zap.Error(err),
			)
		}
	}
}
