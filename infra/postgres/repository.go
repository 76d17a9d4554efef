package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storefront/app"
	"storefront/domain"
	"storefront/pkg/slug"
)

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(host, database, user, password, port, sslMode string) *PgRepository {
	db := sqlx.MustConnect("postgres", DSN(host, database, user, password, port, sslMode))

	// Connection pool configuration
	// With 3 replicas × 15 conns = 45 total connections (safer for default PG max_connections=100)
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PgRepository{db: db}
}

// DSN builds the lib/pq connection string. An empty sslMode falls back to
// disable, matching the config default.
func DSN(host, database, user, password, port, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslMode,
	)
}

// NewPgRepositoryWithDB wraps an existing connection; used by tests.
func NewPgRepositoryWithDB(db *sqlx.DB) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

// GetPoolStats returns connection pool statistics for monitoring.
func (r *PgRepository) GetPoolStats() map[string]any {
	stats := r.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// --- categories ---

func (r *PgRepository) GetCategories(ctx context.Context, search string, onlyActive bool, limit, offset int) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)

	query := `SELECT * FROM categories WHERE 1=1`
	args := []interface{}{}

	if onlyActive {
		query += ` AND is_active = true`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY display_order ASC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *PgRepository) CountCategories(ctx context.Context, search string, onlyActive bool) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM categories WHERE 1=1`
	args := []interface{}{}

	if onlyActive {
		query += ` AND is_active = true`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}

	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *PgRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	query := `SELECT * FROM categories WHERE id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	return c, err
}

func (r *PgRepository) CreateCategory(ctx context.Context, name, categorySlug string) (domain.Category, error) {
	var c domain.Category

	// New categories append at the end of the display order.
	query := `
		INSERT INTO categories (name, slug, is_active, display_order)
		VALUES ($1, $2, true, (SELECT COALESCE(MAX(display_order), 0) + 1 FROM categories))
		RETURNING *`

	err := r.db.GetContext(ctx, &c, query, name, categorySlug)
	if err != nil {
		if isUniqueViolation(err) {
			return c, app.ErrSlugConflict
		}
		return c, err
	}

	return c, nil
}

func (r *PgRepository) UpdateCategory(ctx context.Context, id, name, categorySlug string, image *string) (domain.Category, error) {
	var c domain.Category

	query := `
		UPDATE categories
		SET name = $2, slug = $3, image = $4, updated_at = now()
		WHERE id = $1
		RETURNING *`

	err := r.db.GetContext(ctx, &c, query, id, name, categorySlug, image)
	if err != nil {
		if isUniqueViolation(err) {
			return c, app.ErrSlugConflict
		}
		return c, err
	}

	return c, nil
}

func (r *PgRepository) ToggleCategoryActive(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category

	query := `
		UPDATE categories
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING *`

	err := r.db.GetContext(ctx, &c, query, id)
	return c, err
}

func (r *PgRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ReorderCategories assigns display_order = index + 1 for the requested order
// inside one transaction, so a mid-sequence failure leaves the old order
// fully intact.
func (r *PgRepository) ReorderCategories(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if total != len(ids) {
		return &app.ReorderError{
			FailedIndex: 0,
			Err:         fmt.Errorf("got %d ids for %d categories", len(ids), total),
		}
	}

	for i, id := range ids {
		res, err := tx.ExecContext(ctx,
			`UPDATE categories SET display_order = $1, updated_at = now() WHERE id = $2`,
			i+1, id,
		)
		if err != nil {
			return &app.ReorderError{FailedIndex: i, Err: err}
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return &app.ReorderError{FailedIndex: i, Err: err}
		}
		if affected != 1 {
			return &app.ReorderError{FailedIndex: i, Err: sql.ErrNoRows}
		}
	}

	return tx.Commit()
}

func (r *PgRepository) CountProductsByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products WHERE category_id = $1`

	err := r.db.GetContext(ctx, &count, query, categoryID)
	return count, err
}

// --- products ---

func (r *PgRepository) GetProducts(ctx context.Context, search, categoryID string, onlyActive bool, limit, offset int) ([]domain.Product, error) {
	products := make([]domain.Product, 0)

	query := `SELECT * FROM products WHERE 1=1`
	args := []interface{}{}

	if onlyActive {
		query += ` AND is_active = true`
	}
	if categoryID != "" {
		args = append(args, categoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *PgRepository) CountProducts(ctx context.Context, search, categoryID string, onlyActive bool) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []interface{}{}

	if onlyActive {
		query += ` AND is_active = true`
	}
	if categoryID != "" {
		args = append(args, categoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}

	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *PgRepository) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	query := `SELECT * FROM products WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	return p, err
}

func (r *PgRepository) CreateProduct(ctx context.Context, req *app.CreateProductRequest) (domain.Product, error) {
	var p domain.Product
	query := `
		INSERT INTO products (
			name, slug, price, currency, description, category_id, is_active
		) VALUES (
			:name, :slug, :price, :currency, :description, :category_id, true
		) RETURNING *`

	rows, err := r.db.NamedQueryContext(ctx, query, req)
	if err != nil {
		if isUniqueViolation(err) {
			return p, app.ErrSlugConflict
		}
		return p, err
	}
	defer rows.Close()

	if rows.Next() {
		err = rows.StructScan(&p)
	}
	return p, err
}

func (r *PgRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	query := `
        UPDATE products SET
            name = :name,
            slug = :slug,
            price = :price,
            currency = :currency,
            description = :description,
            category_id = :category_id,
            updated_at = now()
        WHERE id = :id
    `

	params := map[string]interface{}{
		"id":          product.ID,
		"name":        product.Name,
		"slug":        product.Slug,
		"price":       product.Price,
		"currency":    product.Currency,
		"description": product.Description,
		"category_id": product.CategoryID,
	}

	_, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil && isUniqueViolation(err) {
		return app.ErrSlugConflict
	}
	return err
}

func (r *PgRepository) ToggleProductActive(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product

	query := `
		UPDATE products
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING *`

	err := r.db.GetContext(ctx, &p, query, id)
	return p, err
}

// DeleteProduct removes the image rows explicitly before the product row, so
// the cascade holds even if the store-side FK configuration drifts.
func (r *PgRepository) DeleteProduct(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// --- product images ---

func (r *PgRepository) GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	images := make([]domain.ProductImage, 0)
	query := `SELECT * FROM product_images WHERE product_id = $1 ORDER BY sort_order ASC, created_at ASC`

	if err := r.db.SelectContext(ctx, &images, query, productID); err != nil {
		return nil, err
	}

	return images, nil
}

func (r *PgRepository) GetProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error) {
	var img domain.ProductImage
	query := `SELECT * FROM product_images WHERE id = $1 AND product_id = $2`

	err := r.db.GetContext(ctx, &img, query, imageID, productID)
	return img, err
}

func (r *PgRepository) CountProductImages(ctx context.Context, productID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM product_images WHERE product_id = $1`

	err := r.db.GetContext(ctx, &count, query, productID)
	return count, err
}

// SaveProductImage inserts the row; when the new image is primary the old
// primary is unset inside the same transaction, so no reader observes two
// primaries.
func (r *PgRepository) SaveProductImage(ctx context.Context, productID, imageURL string, sortOrder int, isPrimary bool) (domain.ProductImage, error) {
	var img domain.ProductImage

	insert := `
		INSERT INTO product_images (product_id, image_url, sort_order, is_primary)
		VALUES ($1, $2, $3, $4)
		RETURNING *`

	if !isPrimary {
		err := r.db.GetContext(ctx, &img, insert, productID, imageURL, sortOrder, isPrimary)
		return img, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return img, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE product_images SET is_primary = false, updated_at = now() WHERE product_id = $1 AND is_primary`,
		productID,
	); err != nil {
		return img, err
	}

	if err := tx.GetContext(ctx, &img, insert, productID, imageURL, sortOrder, isPrimary); err != nil {
		return img, err
	}

	return img, tx.Commit()
}

// SetPrimaryImage flips the primary flag for the whole image set in a single
// guarded statement: the EXISTS clause stops the update entirely when imageID
// does not belong to the product, so the set is never left without a primary.
func (r *PgRepository) SetPrimaryImage(ctx context.Context, productID, imageID string) error {
	query := `
		UPDATE product_images
		SET is_primary = (id = $2), updated_at = now()
		WHERE product_id = $1
		  AND EXISTS (
			SELECT 1 FROM product_images WHERE id = $2 AND product_id = $1
		  )`

	res, err := r.db.ExecContext(ctx, query, productID, imageID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *PgRepository) DeleteProductImage(ctx context.Context, productID, imageID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM product_images WHERE id = $1 AND product_id = $2`,
		imageID, productID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// --- profiles ---

func (r *PgRepository) GetProfiles(ctx context.Context) ([]domain.AdminProfile, error) {
	profiles := make([]domain.AdminProfile, 0)
	query := `SELECT * FROM profiles ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *PgRepository) GetProfile(ctx context.Context, id string) (domain.AdminProfile, error) {
	var p domain.AdminProfile
	query := `SELECT * FROM profiles WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	return p, err
}

func (r *PgRepository) CreateProfile(ctx context.Context, id, email string, role domain.Role) (domain.AdminProfile, error) {
	var p domain.AdminProfile
	query := `
		INSERT INTO profiles (id, email, role, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING *`

	err := r.db.GetContext(ctx, &p, query, id, email, role)
	return p, err
}

func (r *PgRepository) SetProfileActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET is_active = $2 WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *PgRepository) DeleteProfile(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// --- slugs ---

func (r *PgRepository) SlugTaken(ctx context.Context, table slug.Table, s string, excludeID string) (bool, error) {
	if table != slug.Categories && table != slug.Products {
		return false, fmt.Errorf("slug lookup on unknown table %q", table)
	}

	var taken bool
	if excludeID == "" {
		query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)`, table)
		err := r.db.GetContext(ctx, &taken, query, s)
		return taken, err
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND id <> $2)`, table)
	err := r.db.GetContext(ctx, &taken, query, s, excludeID)
	return taken, err
}
