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

type CreateProductHandler struct {
	repository     Repository
	slugs          *slug.Resolver
	eventPublisher events.Publisher
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=200" db:"name"`
	Slug        string          `json:"-" db:"slug"`
	Price       decimal.Decimal `json:"price" validate:"required" db:"price"`
	Currency    string          `json:"currency" validate:"required,oneof=YER SAR USD" db:"currency"`
	Description *string         `json:"description" db:"description"`
	CategoryID  string          `json:"categoryId" validate:"required,uuid4" db:"category_id"`
}

type CreateProductResponse struct {
	Product domain.Product `json:"product"`
}

func NewCreateProductHandler(repository Repository, slugs *slug.Resolver, eventPublisher events.Publisher) *CreateProductHandler {
	return &CreateProductHandler{
		repository:     repository,
		slugs:          slugs,
		eventPublisher: eventPublisher,
	}
}

func (h CreateProductHandler) Handle(ctx context.Context, req *CreateProductRequest) (*CreateProductResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if req.Price.IsNegative() {
		return nil, httperror.BadRequest(
			"product.create.negative_price",
			"Price must not be negative",
			nil,
		)
	}

	if _, err := h.repository.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.BadRequest(
				"product.create.unknown_category",
				"The referenced category does not exist",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.create.failed",
			"Failed to verify the category",
			nil,
		)
	}

	productSlug, err := h.slugs.Resolve(ctx, slug.Products, req.Name, "")
	if err != nil {
		if errors.Is(err, slug.ErrConflict) {
			return nil, httperror.Conflict(
				"product.create.slug_taken",
				"A product with this name already exists",
				nil,
			)
		}

		return nil, httperror.BadRequest(
			"product.create.invalid_name",
			"The name cannot be turned into a valid slug",
			nil,
		)
	}
	req.Slug = productSlug

	product, err := h.repository.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, ErrSlugConflict) {
			return nil, httperror.Conflict(
				"product.create.slug_taken",
				"A product with this name already exists",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.create.create_failed",
			"An error occurred while creating the product",
			[]string{
				err.Error(),
			},
		)
	}

	h.publishEvent(ctx, product)

	return &CreateProductResponse{
		Product: product,
	}, nil
}

func (h CreateProductHandler) publishEvent(ctx context.Context, product domain.Product) {
	if h.eventPublisher != nil {
		eventPayload := events.ProductCreatedPayload{
			ID:         product.ID,
			Name:       product.Name,
			Slug:       product.Slug,
			Price:      product.Price,
			Currency:   string(product.Currency),
			CategoryID: product.CategoryID,
			IsActive:   product.IsActive,
			CreatedAt:  product.CreatedAt,
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.ProductCreatedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish product.created event",
				zap.String("productId", product.ID),
				zap.Error(err),
			)
		}
	}
}
