package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
	"storefront/pkg/slug"
)

type UpdateProductHandler struct {
	repository     Repository
	slugs          *slug.Resolver
	eventPublisher events.Publisher
}

type UpdateProductRequest struct {
	ID          string          `params:"id" validate:"required,uuid4"`
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Currency    string          `json:"currency" validate:"required,oneof=YER SAR USD"`
	Description *string         `json:"description"`
	CategoryID  string          `json:"categoryId" validate:"required,uuid4"`
}

type UpdateProductResponse struct {
	Product domain.Product `json:"product"`
}

func NewUpdateProductHandler(repository Repository, slugs *slug.Resolver, eventPublisher events.Publisher) *UpdateProductHandler {
	return &UpdateProductHandler{
		repository:     repository,
		slugs:          slugs,
		eventPublisher: eventPublisher,
	}
}

func (h UpdateProductHandler) Handle(ctx context.Context, req *UpdateProductRequest) (*UpdateProductResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.update.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.update.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if req.Price.IsNegative() {
		return nil, httperror.BadRequest(
			"product.update.negative_price",
			"Price must not be negative",
			nil,
		)
	}

	existing, err := h.repository.GetProductByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.update.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.update.failed",
			"Failed to retrieve product",
			nil,
		)
	}

	if req.CategoryID != existing.CategoryID {
		if _, err := h.repository.GetCategoryByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, httperror.BadRequest(
					"product.update.unknown_category",
					"The referenced category does not exist",
					nil,
				)
			}

			return nil, httperror.InternalServerError(
				"product.update.failed",
				"Failed to verify the category",
				nil,
			)
		}
	}

	productSlug := existing.Slug
	if req.Name != existing.Name {
		productSlug, err = h.slugs.Resolve(ctx, slug.Products, req.Name, existing.ID)
		if err != nil {
			if errors.Is(err, slug.ErrConflict) {
				return nil, httperror.Conflict(
					"product.update.slug_taken",
					"A product with this name already exists",
					nil,
				)
			}

			return nil, httperror.BadRequest(
				"product.update.invalid_name",
				"The name cannot be turned into a valid slug",
				nil,
			)
		}
	}

	product := existing
	product.Name = req.Name
	product.Slug = productSlug
	product.Price = req.Price
	product.Currency = domain.Currency(req.Currency)
	product.Description = req.Description
	product.CategoryID = req.CategoryID

	if err := h.repository.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, ErrSlugConflict) {
			return nil, httperror.Conflict(
				"product.update.slug_taken",
				"A product with this name already exists",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.update.update_failed",
			"An error occurred while updating the product",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, product)

	return &UpdateProductResponse{
		Product: product,
	}, nil
}

func (h UpdateProductHandler) publishEvent(ctx context.Context, product domain.Product) {
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
