package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/domain"
)

func TestStorageKey(t *testing.T) {
	key := StorageKey("my photo.png")

	assert.True(t, strings.HasSuffix(key, "-my-photo.png"), "spaces become hyphens: %s", key)
	assert.NotEqual(t, "-my-photo.png", key, "prefix carries a timestamp")
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "123-a.png", KeyFromURL("https://cdn.example.com/products/123-a.png"))
	assert.Equal(t, "plain-key.png", KeyFromURL("plain-key.png"))
}

func TestUploadProductImage_RowFailureDeletesBlob(t *testing.T) {
	repo := new(MockRepository)
	products := new(MockBucket)

	var uploadedKey string
	products.On("Upload", mock.Anything, []byte("data")).Run(func(args mock.Arguments) {
		uploadedKey = args.String(0)
	}).Return(nil)
	products.On("PublicURL", mock.Anything).Return("https://cdn/products/key.png")
	repo.On("SaveProductImage", mock.Anything, "prod-1", "https://cdn/products/key.png", 0, true).
		Return(domain.ProductImage{}, errors.New("insert failed"))
	products.On("Delete", mock.Anything).Return(nil)

	lifecycle := NewImageLifecycle(repo, new(MockBucket), products)

	_, err := lifecycle.UploadProductImage(context.Background(), "prod-1", []byte("data"), "photo.png", 0, true)

	require.Error(t, err)
	products.AssertCalled(t, "Delete", uploadedKey)
}

func TestUploadProductImage_Success(t *testing.T) {
	repo := new(MockRepository)
	products := new(MockBucket)

	saved := domain.ProductImage{ID: "img-1", ProductID: "prod-1", ImageURL: "https://cdn/products/key.png", IsPrimary: false}

	products.On("Upload", mock.Anything, []byte("data")).Return(nil)
	products.On("PublicURL", mock.Anything).Return("https://cdn/products/key.png")
	repo.On("SaveProductImage", mock.Anything, "prod-1", "https://cdn/products/key.png", 2, false).
		Return(saved, nil)

	lifecycle := NewImageLifecycle(repo, new(MockBucket), products)

	image, err := lifecycle.UploadProductImage(context.Background(), "prod-1", []byte("data"), "photo.png", 2, false)

	require.NoError(t, err)
	assert.Equal(t, "img-1", image.ID)
	products.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestUploadProductImage_UploadFailureTouchesNoRows(t *testing.T) {
	repo := new(MockRepository)
	products := new(MockBucket)

	products.On("Upload", mock.Anything, mock.Anything).Return(errors.New("storage down"))

	lifecycle := NewImageLifecycle(repo, new(MockBucket), products)

	_, err := lifecycle.UploadProductImage(context.Background(), "prod-1", []byte("data"), "photo.png", 0, true)

	require.Error(t, err)
	repo.AssertNotCalled(t, "SaveProductImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveProductImage_BlobFailureStillRemovesRow(t *testing.T) {
	repo := new(MockRepository)
	products := new(MockBucket)

	image := domain.ProductImage{ID: "img-1", ProductID: "prod-1", ImageURL: "https://cdn/products/key.png"}

	products.On("Delete", "key.png").Return(errors.New("blob already gone"))
	repo.On("DeleteProductImage", mock.Anything, "prod-1", "img-1").Return(nil)

	lifecycle := NewImageLifecycle(repo, new(MockBucket), products)

	err := lifecycle.RemoveProductImage(context.Background(), image)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestReplaceCategoryImage_UploadsBeforeDeletingOld(t *testing.T) {
	repo := new(MockRepository)
	categories := new(MockBucket)

	oldURL := "https://cdn/categories/cat-old.png"
	category := domain.Category{ID: "cat-1", Name: "Laptops", Slug: "laptops", Image: &oldURL}

	categories.On("Upload", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "cat-")
	}), []byte("data")).Return(nil)
	categories.On("PublicURL", mock.Anything).Return("https://cdn/categories/cat-new.png")
	repo.On("UpdateCategory", mock.Anything, "cat-1", "Laptops", "laptops", mock.Anything).
		Return(domain.Category{ID: "cat-1", Image: ptrTo("https://cdn/categories/cat-new.png")}, nil)
	categories.On("Delete", "cat-old.png").Return(nil)

	lifecycle := NewImageLifecycle(repo, categories, new(MockBucket))

	updated, err := lifecycle.ReplaceCategoryImage(context.Background(), category, []byte("data"), "new.png")

	require.NoError(t, err)
	require.NotNil(t, updated.Image)
	assert.Equal(t, "https://cdn/categories/cat-new.png", *updated.Image)
	categories.AssertExpectations(t)
}

func TestReplaceCategoryImage_UpdateFailureDeletesFreshBlob(t *testing.T) {
	repo := new(MockRepository)
	categories := new(MockBucket)

	category := domain.Category{ID: "cat-1", Name: "Laptops", Slug: "laptops"}

	var freshKey string
	categories.On("Upload", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		freshKey = args.String(0)
	}).Return(nil)
	categories.On("PublicURL", mock.Anything).Return("https://cdn/categories/cat-new.png")
	repo.On("UpdateCategory", mock.Anything, "cat-1", "Laptops", "laptops", mock.Anything).
		Return(domain.Category{}, errors.New("update failed"))
	categories.On("Delete", mock.Anything).Return(nil)

	lifecycle := NewImageLifecycle(repo, categories, new(MockBucket))

	_, err := lifecycle.ReplaceCategoryImage(context.Background(), category, []byte("data"), "new.png")

	require.Error(t, err)
	categories.AssertCalled(t, "Delete", freshKey)
}

func TestPurgeProductImages(t *testing.T) {
	repo := new(MockRepository)
	products := new(MockBucket)

	images := []domain.ProductImage{
		{ID: "img-1", ImageURL: "https://cdn/products/a.png"},
		{ID: "img-2", ImageURL: "https://cdn/products/b.png"},
	}

	repo.On("GetProductImages", mock.Anything, "prod-1").Return(images, nil)
	products.On("Remove", []string{"a.png", "b.png"}).Return(nil)

	lifecycle := NewImageLifecycle(repo, new(MockBucket), products)

	count, err := lifecycle.PurgeProductImages(context.Background(), "prod-1")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPurgeProductImages_NoImages(t *testing.T) {
	repo := new(MockRepository)
	products := new(MockBucket)

	repo.On("GetProductImages", mock.Anything, "prod-1").Return([]domain.ProductImage{}, nil)

	lifecycle := NewImageLifecycle(repo, new(MockBucket), products)

	count, err := lifecycle.PurgeProductImages(context.Background(), "prod-1")

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	products.AssertNotCalled(t, "Remove", mock.Anything)
}

func ptrTo[T any](v T) *T {
	return &v
}
