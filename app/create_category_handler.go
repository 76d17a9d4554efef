package app

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
	"storefront/pkg/slug"
)

type CreateCategoryHandler struct {
	repository     Repository
	slugs          *slug.Resolver
	eventPublisher events.Publisher
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type CreateCategoryResponse struct {
	Category domain.Category `json:"category"`
}

func NewCreateCategoryHandler(repository Repository, slugs *slug.Resolver, eventPublisher events.Publisher) *CreateCategoryHandler {
	return &CreateCategoryHandler{
		repository:     repository,
		slugs:          slugs,
		eventPublisher: eventPublisher,
	}
}

func (h CreateCategoryHandler) Handle(ctx context.Context, req *CreateCategoryRequest) (*CreateCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"category.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"category.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	categorySlug, err := h.slugs.Resolve(ctx, slug.Categories, req.Name, "")
	if err != nil {
		if errors.Is(err, slug.ErrConflict) {
			return nil, httperror.Conflict(
				"category.create.slug_taken",
				"A category with this name already exists",
				nil,
			)
		}

		return nil, httperror.BadRequest(
			"category.create.invalid_name",
			"The name cannot be turned into a valid slug",
			nil,
		)
	}

	category, err := h.repository.CreateCategory(ctx, req.Name, categorySlug)
	if err != nil {
		if errors.Is(err, ErrSlugConflict) {
			return nil, httperror.Conflict(
				"category.create.slug_taken",
				"A category with this name already exists",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.create.create_failed",
			"An error occurred while creating the category",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, category)

	return &CreateCategoryResponse{
		Category: category,
	}, nil
}

func (h CreateCategoryHandler) publishEvent(ctx context.Context, category domain.Category) {
	if h.eventPublisher != nil {
		eventPayload := events.CategoryCreatedPayload{
			ID:           category.ID,
			Name:         category.Name,
			Slug:         category.Slug,
			IsActive:     category.IsActive,
			DisplayOrder: category.DisplayOrder,
			CreatedAt:    category.CreatedAt,
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.CategoryCreatedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish category.created event",
				zap.String("categoryId", category.ID),
				zap.Error(err),
			)
		}
	}
}
