package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type ToggleProductHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type ToggleProductRequest struct {
	ID string `params:"id" validate:"required,uuid4"`
}

type ToggleProductResponse struct {
	Product domain.Product `json:"product"`
}

func NewToggleProductHandler(repository Repository, eventPublisher events.Publisher) *ToggleProductHandler {
	return &ToggleProductHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h ToggleProductHandler) Handle(ctx context.Context, req *ToggleProductRequest) (*ToggleProductResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.toggle.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.toggle.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	product, err := h.repository.ToggleProductActive(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.toggle.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.toggle.toggle_failed",
			"An error occurred while toggling the product",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, product)

	return &ToggleProductResponse{
		Product: product,
	}, nil
}

func (h ToggleProductHandler) publishEvent(ctx context.Context, product domain.Product) {
	if h.eventPublisher != nil {
		eventPayload := events.ProductUpdatedPayload{
			ID:         product.ID,
			Name:       product.Name,
			Slug:       product.Slug,
			Price:      product.Price,
			Currency:   string(product.Currency),
			CategoryID: product.CategoryID,
			IsActive:   product.IsActive,
			UpdatedAt:  product.UpdatedAt,
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.ProductUpdatedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish product.updated event",
				zap.String("productId", product.ID),
				zap.Error(err),
			)
		}
	}
}
