package app

import (
	"context"
	"errors"
	"fmt"

	"storefront/domain"
	"storefront/pkg/slug"
)

// ErrSlugConflict is returned by creates/updates when a unique index on slug
// rejects the write. The resolver checks first, this is the backstop.
var ErrSlugConflict = errors.New("slug already exists")

// ReorderError reports a rejected reorder batch. The transaction guarantees
// no partial order was persisted; FailedIndex tells the caller which position
// in the requested order broke.
type ReorderError struct {
	FailedIndex int
	Err         error
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("reorder failed at index %d: %v", e.FailedIndex, e.Err)
}

func (e *ReorderError) Unwrap() error {
	return e.Err
}

// Repository is the single seam over the relational store. It is the only
// component holding database handles; everything else depends on it.
type Repository interface {
	Close() error

	GetCategories(ctx context.Context, search string, onlyActive bool, limit, offset int) ([]domain.Category, error)
	CountCategories(ctx context.Context, search string, onlyActive bool) (int, error)
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)
	CreateCategory(ctx context.Context, name, slug string) (domain.Category, error)
	UpdateCategory(ctx context.Context, id, name, slug string, image *string) (domain.Category, error)
	ToggleCategoryActive(ctx context.Context, id string) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ReorderCategories(ctx context.Context, ids []string) error
	CountProductsByCategory(ctx context.Context, categoryID string) (int, error)

	GetProducts(ctx context.Context, search, categoryID string, onlyActive bool, limit, offset int) ([]domain.Product, error)
	CountProducts(ctx context.Context, search, categoryID string, onlyActive bool) (int, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductRequest) (domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	ToggleProductActive(ctx context.Context, id string) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error)
	GetProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error)
	CountProductImages(ctx context.Context, productID string) (int, error)
	SaveProductImage(ctx context.Context, productID, imageURL string, sortOrder int, isPrimary bool) (domain.ProductImage, error)
	SetPrimaryImage(ctx context.Context, productID, imageID string) error
	DeleteProductImage(ctx context.Context, productID, imageID string) error

	GetProfiles(ctx context.Context) ([]domain.AdminProfile, error)
	GetProfile(ctx context.Context, id string) (domain.AdminProfile, error)
	CreateProfile(ctx context.Context, id, email string, role domain.Role) (domain.AdminProfile, error)
	SetProfileActive(ctx context.Context, id string, active bool) error
	DeleteProfile(ctx context.Context, id string) error

	SlugTaken(ctx context.Context, table slug.Table, slug string, excludeID string) (bool, error)
}
