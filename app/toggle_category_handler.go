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

type ToggleCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type ToggleCategoryRequest struct {
	ID string `params:"id" validate:"required,uuid4"`
}

type ToggleCategoryResponse struct {
	Category domain.Category `json:"category"`
}

func NewToggleCategoryHandler(repository Repository, eventPublisher events.Publisher) *ToggleCategoryHandler {
	return &ToggleCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h ToggleCategoryHandler) Handle(ctx context.Context, req *ToggleCategoryRequest) (*ToggleCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"category.toggle.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"category.toggle.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	category, err := h.repository.ToggleCategoryActive(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"category.toggle.not_found",
				"Category not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.toggle.toggle_failed",
			"An error occurred while toggling the category",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, category)

	return &ToggleCategoryResponse{
		Category: category,
	}, nil
}

func (h ToggleCategoryHandler) publishEvent(ctx context.Context, category domain.Category) {
	if h.eventPublisher != nil {
		eventPayload := events.CategoryUpdatedPayload{
			ID:        category.ID,
			Name:      category.Name,
			Slug:      category.Slug,
			Image:     category.Image,
			IsActive:  category.IsActive,
			UpdatedAt: category.UpdatedAt,
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.CategoryUpdatedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish category.updated event",
				zap.String("categoryId", category.ID),
				zap.Error(err),
			)
		}
	}
}
