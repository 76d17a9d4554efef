package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain constants
const (
	CatalogDomain   = "catalog"
	CatalogExchange = "storefront.catalog"
	ImportExchange  = "storefront.import"
)

// Event names
const (
	CategoryCreatedEvent      = "category.created"
	CategoryUpdatedEvent      = "category.updated"
	CategoryDeletedEvent      = "category.deleted"
	CategoriesReorderedEvent  = "category.reordered"
	ProductCreatedEvent       = "product.created"
	ProductUpdatedEvent       = "product.updated"
	ProductDeletedEvent       = "product.deleted"
	ProductImageUploadedEvent = "product.image.uploaded"
	ProductImageDeletedEvent  = "product.image.deleted"
	PrimaryImageChangedEvent  = "product.image.primary_changed"
	AdminCreatedEvent         = "admin.created"
	AdminUpdatedEvent         = "admin.updated"
	ImportRequestedEvent      = "catalog.import.requested"
)

// Event versions
const (
	EventVersionV1 = "v1"
)

type CategoryCreatedPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	IsActive     bool      `json:"isActive"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CategoryUpdatedPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Image     *string   `json:"image"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryDeletedPayload struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	DeletedAt time.Time `json:"deletedAt"`
}

type CategoriesReorderedPayload struct {
	CategoryIDs []string  `json:"categoryIds"`
	ReorderedAt time.Time `json:"reorderedAt"`
}

type ProductCreatedPayload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	CategoryID string          `json:"categoryId"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ProductUpdatedPayload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	CategoryID string          `json:"categoryId"`
	IsActive   bool            `json:"isActive"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type ProductDeletedPayload struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Images    int       `json:"images"`
	DeletedAt time.Time `json:"deletedAt"`
}

type ProductImageUploadedPayload struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	ImageURL  string    `json:"imageUrl"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductImageDeletedPayload struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	ImageURL  string    `json:"imageUrl"`
	DeletedAt time.Time `json:"deletedAt"`
}

type PrimaryImageChangedPayload struct {
	ProductID string    `json:"productId"`
	ImageID   string    `json:"imageId"`
	ChangedAt time.Time `json:"changedAt"`
}

type AdminCreatedPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type AdminUpdatedPayload struct {
	ID        string    `json:"id"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ImportRequestedPayload is consumed by the import worker; products created
// this way take the auto-suffix slug policy instead of hard rejection.
type ImportRequestedPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	CategoryID  string          `json:"categoryId"`
}
