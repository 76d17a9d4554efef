package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type ReplaceCategoryImageHandler struct {
	repository Repository
	images     *ImageLifecycle
}

func NewReplaceCategoryImageHandler(repository Repository, images *ImageLifecycle) *ReplaceCategoryImageHandler {
	return &ReplaceCategoryImageHandler{
		repository: repository,
		images:     images,
	}
}

type ReplaceCategoryImageRequest struct {
	ID string `params:"id"`
}

type ReplaceCategoryImageResponse struct {
	Category domain.Category `json:"category"`
}

func (h *ReplaceCategoryImageHandler) Handle(ctx context.Context, req *ReplaceCategoryImageRequest) (*ReplaceCategoryImageResponse, error) {
	fiberCtx := ctx.Value("fiber")
	if fiberCtx == nil {
		return nil, httperror.InternalServerError("upload.no_context", "Fiber context not found", nil)
	}

	c, ok := fiberCtx.(*fiber.Ctx)
	if !ok {
		return nil, httperror.InternalServerError("upload.invalid_context", "Invalid Fiber context", nil)
	}

	category, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("category.replace_image.not_found", "Category not found", nil)
		}
		return nil, httperror.InternalServerError("category.replace_image.failed", "Failed to retrieve category", nil)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return nil, httperror.BadRequest("upload.missing_file", "Image file is required (use 'image' field)", fiber.Map{"error": err.Error()})
	}

	if httpErr := validateImageFile(file); httpErr != nil {
		return nil, httpErr
	}

	data, httpErr := readImageFile(file)
	if httpErr != nil {
		return nil, httpErr
	}

	updated, err := h.images.ReplaceCategoryImage(ctx, category, data, file.Filename)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.replace_image.upload_failed",
			"Failed to replace the category image",
			[]string{
				err.Error(),
			},
		)
	}

	return &ReplaceCategoryImageResponse{
		Category: updated,
	}, nil
}
