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

type DeleteCategoryHandler struct {
	repository     Repository
	images         *ImageLifecycle
	eventPublisher events.Publisher
}

type DeleteCategoryRequest struct {
	ID string `params:"id" validate:"required,uuid4"`
}

type DeleteCategoryResponse struct{}

func NewDeleteCategoryHandler(repository Repository, images *ImageLifecycle, eventPublisher events.Publisher) *DeleteCategoryHandler {
	return &DeleteCategoryHandler{
		repository:     repository,
		images:         images,
		eventPublisher: eventPublisher,
	}
}

func (h DeleteCategoryHandler) Handle(ctx context.Context, req *DeleteCategoryRequest) (*DeleteCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"category.delete.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"category.delete.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	category, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"category.delete.not_found",
				"Category not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.delete.failed",
			"Failed to retrieve category",
			nil,
		)
	}

	productCount, err := h.repository.CountProductsByCategory(ctx, category.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.delete.count_failed",
			"Failed to count products in the category",
			nil,
		)
	}

	if productCount > 0 {
		return nil, httperror.Conflict(
			"category.delete.not_empty",
			"Cannot delete a category that still contains products",
			map[string]int{"products": productCount},
		)
	}

	if err := h.repository.DeleteCategory(ctx, category.ID); err != nil {
		return nil, httperror.InternalServerError(
			"category.delete.delete_failed",
			"An error occurred while deleting the category",
			[]string{
				err.Error(),
			},
		)
	}

	h.images.DeleteCategoryImage(category)

	h.publishEvent(ctx, category)

	return nil, httperror.NoContent(
		"category.delete.success",
		"Category deleted",
		nil,
	)
}

func (h DeleteCategoryHandler) publishEvent(ctx context.Context, category domain.Category) {
	if h.eventPublisher != nil {
		eventPayload := events.CategoryDeletedPayload{
			ID:        category.ID,
			Slug:      category.Slug,
			DeletedAt: time.Now().UTC(),
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.CategoryDeletedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish category.deleted event",
				zap.String("categoryId", category.ID),
				zap.Error(err),
			)
		}
	}
}
