package app

import (
	"context"
	"database/sql"
	"errors"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetProductImagesHandler struct {
	repository Repository
}

func NewGetProductImagesHandler(repository Repository) *GetProductImagesHandler {
	return &GetProductImagesHandler{
		repository: repository,
	}
}

type GetProductImagesRequest struct {
	ProductID string `params:"id" validate:"required,uuid4"`
}

type GetProductImagesResponse struct {
	ProductID string                `json:"productId"`
	Images    []domain.ProductImage `json:"images"`
}

func (h GetProductImagesHandler) Handle(ctx context.Context, req *GetProductImagesRequest) (*GetProductImagesResponse, error) {
	if _, err := h.repository.GetProductByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.images.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.images.failed",
			"Failed to retrieve product",
			nil,
		)
	}

	images, err := h.repository.GetProductImages(ctx, req.ProductID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.images.list_failed",
			"Failed to retrieve product images",
			nil,
		)
	}

	return &GetProductImagesResponse{
		ProductID: req.ProductID,
		Images:    images,
	}, nil
}
