package app

import (
	"context"
	"database/sql"
	"errors"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type GetCategoryHandler struct {
	repository Repository
}

func NewGetCategoryHandler(repository Repository) *GetCategoryHandler {
	return &GetCategoryHandler{
		repository: repository,
	}
}

type GetCategoryRequest struct {
	ID string `params:"id" validate:"required,uuid4"`
}

type GetCategoryResponse struct {
	Category domain.Category `json:"category"`
}

func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*GetCategoryResponse, error) {
	category, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"category.get_category.not_found",
				"Category not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.get_category.failed",
			"Failed to retrieve category",
			nil,
		)
	}

	return &GetCategoryResponse{Category: category}, nil
}
