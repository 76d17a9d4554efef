package app

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type ReorderCategoriesHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type ReorderCategoriesRequest struct {
	CategoryIDs []string `json:"categoryIds" validate:"required,min=1,unique,dive,uuid4"`
}

type ReorderCategoriesResponse struct {
	CategoryIDs []string `json:"categoryIds"`
}

func NewReorderCategoriesHandler(repository Repository, eventPublisher events.Publisher) *ReorderCategoriesHandler {
	return &ReorderCategoriesHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h ReorderCategoriesHandler) Handle(ctx context.Context, req *ReorderCategoriesRequest) (*ReorderCategoriesResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"category.reorder.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"category.reorder.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if err := h.repository.ReorderCategories(ctx, req.CategoryIDs); err != nil {
		var reorderErr *ReorderError
		if errors.As(err, &reorderErr) {
			return nil, httperror.BadRequest(
				"category.reorder.rejected",
				"Reorder rejected, no ordering was changed",
				map[string]int{"failedIndex": reorderErr.FailedIndex},
			)
		}

		return nil, httperror.InternalServerError(
			"category.reorder.reorder_failed",
			"An error occurred while reordering categories",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, req.CategoryIDs)

	return &ReorderCategoriesResponse{
		CategoryIDs: req.CategoryIDs,
	}, nil
}

func (h ReorderCategoriesHandler) publishEvent(ctx context.Context, ids []string) {
	if h.eventPublisher != nil {
		eventPayload := events.CategoriesReorderedPayload{
			CategoryIDs: ids,
			ReorderedAt: time.Now().UTC(),
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.CategoriesReorderedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish category.reordered event",
				zap.Error(err),
			)
		}
	}
}
