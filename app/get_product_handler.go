package app

import (
	"context"
	"database/sql"
	"errors"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetProductHandler struct {
	repository Repository
}

func NewGetProductHandler(repository Repository) *GetProductHandler {
	return &GetProductHandler{
		repository: repository,
	}
}

type GetProductRequest struct {
	ID string `params:"id" validate:"required,uuid4"`
}

type GetProductResponse struct {
	Product domain.Product        `json:"product"`
	Images  []domain.ProductImage `json:"images"`
}

func (h GetProductHandler) Handle(ctx context.Context, req *GetProductRequest) (*GetProductResponse, error) {
	product, err := h.repository.GetProductByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.get_product.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.get_product.failed",
			"Failed to retrieve product",
			nil,
		)
	}

	images, err := h.repository.GetProductImages(ctx, product.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.get_product.images_failed",
			"Failed to retrieve product images",
			nil,
		)
	}

	return &GetProductResponse{
		Product: product,
		Images:  images,
	}, nil
}
