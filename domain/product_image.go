package domain

import "time"

type ProductImage struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	IsPrimary bool      `json:"isPrimary" db:"is_primary"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
