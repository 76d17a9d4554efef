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
	"storefront/pkg/slug"
)

type UpdateCategoryHandler struct {
	repository     Repository
	slugs          *slug.Resolver
	eventPublisher events.Publisher
}

type UpdateCategoryRequest struct {
	ID   string `params:"id" validate:"required,uuid4"`
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type UpdateCategoryResponse struct {
	Category domain.Category `json:"category"`
}

func NewUpdateCategoryHandler(repository Repository, slugs *slug.Resolver, eventPublisher events.Publisher) *UpdateCategoryHandler {
	return &UpdateCategoryHandler{
		repository:     repository,
		slugs:          slugs,
		eventPublisher: eventPublisher,
	}
}

func (h UpdateCategoryHandler) Handle(ctx context.Context, req *UpdateCategoryRequest) (*UpdateCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"category.update.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"category.update.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	existing, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"category.update.not_found",
				"Category not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.update.failed",
			"Failed to retrieve category",
			nil,
		)
	}

	categorySlug := existing.Slug
	if req.Name != existing.Name {
		categorySlug, err = h.slugs.Resolve(ctx, slug.Categories, req.Name, existing.ID)
		if err != nil {
			if errors.Is(err, slug.ErrConflict) {
				return nil, httperror.Conflict(
					"category.update.slug_taken",
					"A category with this name already exists",
					nil,
				)
			}

			return nil, httperror.BadRequest(
				"category.update.invalid_name",
				"The name cannot be turned into a valid slug",
				nil,
			)
		}
	}

	category, err := h.repository.UpdateCategory(ctx, existing.ID, req.Name, categorySlug, existing.Image)
	if err != nil {
		if errors.Is(err, ErrSlugConflict) {
			return nil, httperror.Conflict(
				"category.update.slug_taken",
				"A category with this name already exists",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.update.update_failed",
			"An error occurred while updating the category",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, category)

	return &UpdateCategoryResponse{
		Category: category,
	}, nil
}

func (h UpdateCategoryHandler) publishEvent(ctx context.Context, category domain.Category) {
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
