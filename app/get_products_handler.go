package app

import (
	"context"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetProductsHandler struct {
	repository Repository
}

func NewGetProductsHandler(repository Repository) *GetProductsHandler {
	return &GetProductsHandler{
		repository: repository,
	}
}

type GetProductsRequest struct {
	Page            int    `query:"page"`
	PageSize        int    `query:"pageSize"`
	Search          string `query:"search"`
	CategoryID      string `query:"categoryId"`
	IncludeInactive bool   `query:"includeInactive"`
}

type GetProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

func (h GetProductsHandler) Handle(ctx context.Context, req *GetProductsRequest) (*GetProductsResponse, error) {
	page := max(req.Page, 1)
	pageSize := max(req.PageSize, 10)

	offset := (page - 1) * pageSize
	onlyActive := !(req.IncludeInactive && adminCaller(ctx))

	products, err := h.repository.GetProducts(ctx, req.Search, req.CategoryID, onlyActive, pageSize, offset)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.index.failed",
			"Failed to retrieve products",
			nil,
		)
	}

	totalItems, err := h.repository.CountProducts(ctx, req.Search, req.CategoryID, onlyActive)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.count_products.failed",
			"Failed to count products",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetProductsResponse{
		Products:   products,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
