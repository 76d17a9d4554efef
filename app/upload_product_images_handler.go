package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type UploadProductImagesHandler struct {
	repository     Repository
	images         *ImageLifecycle
	eventPublisher events.Publisher
}

func NewUploadProductImagesHandler(repository Repository, images *ImageLifecycle, eventPublisher events.Publisher) *UploadProductImagesHandler {
	return &UploadProductImagesHandler{
		repository:     repository,
		images:         images,
		eventPublisher: eventPublisher,
	}
}

type UploadProductImagesRequest struct {
	ProductID string `params:"id"`
}

type UploadProductImagesResponse struct {
	ProductID string                `json:"productId"`
	Images    []domain.ProductImage `json:"images"`
}

func (h *UploadProductImagesHandler) Handle(ctx context.Context, req *UploadProductImagesRequest) (*UploadProductImagesResponse, error) {
	fiberCtx := ctx.Value("fiber")
	if fiberCtx == nil {
		return nil, httperror.InternalServerError("upload.no_context", "Fiber context not found", nil)
	}

	c, ok := fiberCtx.(*fiber.Ctx)
	if !ok {
		return nil, httperror.InternalServerError("upload.invalid_context", "Invalid Fiber context", nil)
	}

	if _, err := h.repository.GetProductByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("product.upload_images.not_found", "Product not found", nil)
		}
		return nil, httperror.InternalServerError("product.upload_images.failed", "Failed to retrieve product", nil)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, httperror.BadRequest("upload.missing_form", "Multipart form is required", fiber.Map{"error": err.Error()})
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, httperror.BadRequest("upload.missing_file", "At least one image file is required (use 'images' field)", nil)
	}

	for _, file := range files {
		if httpErr := validateImageFile(file); httpErr != nil {
			return nil, httpErr
		}
	}

	existing, err := h.repository.CountProductImages(ctx, req.ProductID)
	if err != nil {
		return nil, httperror.InternalServerError("product.upload_images.count_failed", "Failed to count existing images", nil)
	}

	uploaded := make([]domain.ProductImage, 0, len(files))

	for i, file := range files {
		data, httpErr := readImageFile(file)
		if httpErr != nil {
			return nil, httpErr
		}

		sortOrder := existing + i
		isPrimary := existing == 0 && i == 0

		image, err := h.images.UploadProductImage(ctx, req.ProductID, data, file.Filename, sortOrder, isPrimary)
		if err != nil {
			// Earlier files in the batch are already stored and linked.
			return nil, httperror.InternalServerError(
				"product.upload_images.upload_failed",
				"Failed to upload image",
				fiber.Map{"uploaded": i, "failed": file.Filename},
			)
		}

		h.publishEvent(ctx, image)
		uploaded = append(uploaded, image)
	}

	return &UploadProductImagesResponse{
		ProductID: req.ProductID,
		Images:    uploaded,
	}, nil
}

func (h *UploadProductImagesHandler) publishEvent(ctx context.Context, image domain.ProductImage) {
	if h.eventPublisher != nil {
		eventPayload := events.ProductImageUploadedPayload{
			ID:        image.ID,
			ProductID: image.ProductID,
			ImageURL:  image.ImageURL,
			IsPrimary: image.IsPrimary,
			CreatedAt: time.Now(),
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.ProductImageUploadedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish product.image.uploaded event",
				zap.String("imageID", image.ID),
				zap.Error(err),
			)
		}
	}
}

func validateImageFile(file *multipart.FileHeader) *httperror.Error {
	const maxFileSize = 5 * 1024 * 1024
	if file.Size > maxFileSize {
		return httperror.BadRequest("upload.file_too_large", "File size must not exceed 5MB",
			fiber.Map{
				"file":    file.Filename,
				"size_mb": float64(file.Size) / 1024 / 1024,
				"max_mb":  5,
			})
	}

	contentType := file.Header.Get("Content-Type")

	allowedTypes := map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
		"image/jpg":  true,
		"image/webp": true,
	}
	if !allowedTypes[contentType] {
		return httperror.BadRequest("upload.invalid_content_type", "Only PNG, JPEG/JPG and WebP images are allowed",
			fiber.Map{
				"received": contentType,
				"allowed":  []string{"image/png", "image/jpeg", "image/jpg", "image/webp"},
			})
	}

	return nil
}

func readImageFile(file *multipart.FileHeader) ([]byte, *httperror.Error) {
	fileReader, err := file.Open()
	if err != nil {
		return nil, httperror.InternalServerError("upload.file_open_error", "Failed to open uploaded file", err.Error())
	}
	defer fileReader.Close()

	fileBytes, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, httperror.InternalServerError("upload.file_read_error", "Failed to read file content", err.Error())
	}

	return fileBytes, nil
}
