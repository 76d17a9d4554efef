package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type SetPrimaryImageHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type SetPrimaryImageRequest struct {
	ProductID string `params:"id" validate:"required,uuid4"`
	ImageID   string `params:"imageId" validate:"required,uuid4"`
}

type SetPrimaryImageResponse struct {
	ProductID string `json:"productId"`
	ImageID   string `json:"imageId"`
}

func NewSetPrimaryImageHandler(repository Repository, eventPublisher events.Publisher) *SetPrimaryImageHandler {
	return &SetPrimaryImageHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h SetPrimaryImageHandler) Handle(ctx context.Context, req *SetPrimaryImageRequest) (*SetPrimaryImageResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.set_primary.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.set_primary.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if err := h.repository.SetPrimaryImage(ctx, req.ProductID, req.ImageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.set_primary.not_found",
				"Image does not belong to this product",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.set_primary.failed",
			"An error occurred while changing the primary image",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, req.ProductID, req.ImageID)

	return &SetPrimaryImageResponse{
		ProductID: req.ProductID,
		ImageID:   req.ImageID,
	}, nil
}

func (h SetPrimaryImageHandler) publishEvent(ctx context.Context, productID, imageID string) {
	if h.eventPublisher != nil {
		eventPayload := events.PrimaryImageChangedPayload{
			ProductID: productID,
			ImageID:   imageID,
			ChangedAt: time.Now().UTC(),
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.PrimaryImageChangedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish product.image.primary_changed event",
				zap.String("productId", productID),
				zap.Error(err),
			)
		}
	}
}
