package app

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/domain"
)

// Bucket is the object-store seam used by the image lifecycle.
type Bucket interface {
	Upload(key string, data []byte) error
	Delete(key string) error
	Remove(keys []string) error
	PublicURL(key string) string
}

// ImageLifecycle keeps blobs and their referencing rows in step: a blob never
// outlives its row, a row never points at a missing blob.
type ImageLifecycle struct {
	repository Repository
	categories Bucket
	products   Bucket
}

func NewImageLifecycle(repository Repository, categories, products Bucket) *ImageLifecycle {
	return &ImageLifecycle{
		repository: repository,
		categories: categories,
		products:   products,
	}
}

// StorageKey builds a collision-safe object key from the original filename.
func StorageKey(filename string) string {
	base := strings.ReplaceAll(path.Base(filename), " ", "-")
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)
}

// KeyFromURL recovers the object key from a stored public URL.
func KeyFromURL(imageURL string) string {
	if idx := strings.LastIndex(imageURL, "/"); idx >= 0 {
		return imageURL[idx+1:]
	}
	return imageURL
}

// UploadProductImage stores the blob, then links it as a ProductImage row.
// A failed row insert deletes the fresh blob so storage holds no orphan.
// isPrimary is honored atomically: any previous primary is unset in the same
// store operation.
func (l *ImageLifecycle) UploadProductImage(ctx context.Context, productID string, data []byte, filename string, sortOrder int, isPrimary bool) (domain.ProductImage, error) {
	key := StorageKey(filename)

	if err := l.products.Upload(key, data); err != nil {
		return domain.ProductImage{}, fmt.Errorf("upload product image: %w", err)
	}

	imageURL := l.products.PublicURL(key)

	image, err := l.repository.SaveProductImage(ctx, productID, imageURL, sortOrder, isPrimary)
	if err != nil {
		if delErr := l.products.Delete(key); delErr != nil {
			zap.L().Error("Failed to remove orphaned blob after row insert failure",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return domain.ProductImage{}, fmt.Errorf("link product image: %w", err)
	}

	return image, nil
}

// RemoveProductImage deletes the blob first (best effort), then the row.
func (l *ImageLifecycle) RemoveProductImage(ctx context.Context, image domain.ProductImage) error {
	if err := l.products.Delete(KeyFromURL(image.ImageURL)); err != nil {
		zap.L().Warn("Failed to delete product image blob, removing row anyway",
			zap.String("imageID", image.ID),
			zap.Error(err),
		)
	}

	return l.repository.DeleteProductImage(ctx, image.ProductID, image.ID)
}

// PurgeProductImages removes every blob belonging to a product ahead of the
// row cascade. Blob deletion is best effort; the explicit row delete in the
// repository is what guarantees no dangling references.
func (l *ImageLifecycle) PurgeProductImages(ctx context.Context, productID string) (int, error) {
	images, err := l.repository.GetProductImages(ctx, productID)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, KeyFromURL(img.ImageURL))
	}

	if len(keys) > 0 {
		if err := l.products.Remove(keys); err != nil {
			zap.L().Warn("Failed to delete some product image blobs",
				zap.String("productID", productID),
				zap.Error(err),
			)
		}
	}

	return len(images), nil
}

// ReplaceCategoryImage uploads the new blob before touching the old one, so a
// failed upload leaves the category image intact. The old blob is deleted only
// after the row points at the new URL.
func (l *ImageLifecycle) ReplaceCategoryImage(ctx context.Context, category domain.Category, data []byte, filename string) (domain.Category, error) {
	key := fmt.Sprintf("cat-%s", StorageKey(filename))

	if err := l.categories.Upload(key, data); err != nil {
		return domain.Category{}, fmt.Errorf("upload category image: %w", err)
	}

	imageURL := l.categories.PublicURL(key)

	updated, err := l.repository.UpdateCategory(ctx, category.ID, category.Name, category.Slug, &imageURL)
	if err != nil {
		if delErr := l.categories.Delete(key); delErr != nil {
			zap.L().Error("Failed to remove orphaned blob after category update failure",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return domain.Category{}, err
	}

	if category.Image != nil {
		if err := l.categories.Delete(KeyFromURL(*category.Image)); err != nil {
			zap.L().Warn("Failed to delete replaced category image blob",
				zap.String("categoryID", category.ID),
				zap.Error(err),
			)
		}
	}

	return updated, nil
}

// DeleteCategoryImage removes the category blob ahead of a permitted category
// delete. Best effort: a missing blob must not block the delete.
func (l *ImageLifecycle) DeleteCategoryImage(category domain.Category) {
	if category.Image == nil {
		return
	}
	if err := l.categories.Delete(KeyFromURL(*category.Image)); err != nil {
		zap.L().Warn("Failed to delete category image blob",
			zap.String("categoryID", category.ID),
			zap.Error(err),
		)
	}
}
