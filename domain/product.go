package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Slug        string          `db:"slug" json:"slug"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Currency    Currency        `db:"currency" json:"currency"`
	Description *string         `db:"description" json:"description"`
	CategoryID  string          `db:"category_id" json:"categoryId"`
	IsActive    bool            `db:"is_active" json:"isActive"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}
