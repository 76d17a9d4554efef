package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/app"
	"storefront/pkg/slug"
)

func newMockRepository(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PgRepository) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	repo := NewPgRepositoryWithDB(sqlx.NewDb(db, "sqlmock"))
	require.NotNil(t, repo)

	return db, mock, repo
}

var categoryColumns = []string{"id", "name", "slug", "image", "is_active", "display_order", "created_at", "updated_at"}

func TestCreateCategory(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)

	query := regexp.QuoteMeta(`
		INSERT INTO categories (name, slug, is_active, display_order)
		VALUES ($1, $2, true, (SELECT COALESCE(MAX(display_order), 0) + 1 FROM categories))
		RETURNING *`)

	rows := sqlmock.NewRows(categoryColumns).
		AddRow("cat-1", "Laptops", "laptops", nil, true, 3, now, now)

	mock.ExpectQuery(query).WithArgs("Laptops", "laptops").WillReturnRows(rows)

	category, err := repo.CreateCategory(context.Background(), "Laptops", "laptops")

	require.NoError(t, err)
	assert.Equal(t, "cat-1", category.ID)
	assert.Equal(t, "laptops", category.Slug)
	assert.Equal(t, 3, category.DisplayOrder)
	assert.True(t, category.IsActive)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategory_SlugConflict(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	pqErr := &pq.Error{Code: "23505", Constraint: "categories_slug_key"}
	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Laptops", "laptops").
		WillReturnError(pqErr)

	_, err := repo.CreateCategory(context.Background(), "Laptops", "laptops")

	require.Error(t, err)
	assert.True(t, errors.Is(err, app.ErrSlugConflict), "unique violations must map to ErrSlugConflict")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderCategories(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	updateQuery := regexp.QuoteMeta(`UPDATE categories SET display_order = $1, updated_at = now() WHERE id = $2`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(updateQuery).WithArgs(1, "cat-b").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateQuery).WithArgs(2, "cat-a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReorderCategories(context.Background(), []string{"cat-b", "cat-a"})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderCategories_CountMismatch(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.ReorderCategories(context.Background(), []string{"cat-b", "cat-a"})

	require.Error(t, err)
	var reorderErr *app.ReorderError
	require.True(t, errors.As(err, &reorderErr))
	assert.Equal(t, 0, reorderErr.FailedIndex)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderCategories_UnknownID(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	updateQuery := regexp.QuoteMeta(`UPDATE categories SET display_order = $1, updated_at = now() WHERE id = $2`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(updateQuery).WithArgs(1, "cat-b").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateQuery).WithArgs(2, "cat-missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ReorderCategories(context.Background(), []string{"cat-b", "cat-missing"})

	require.Error(t, err)
	var reorderErr *app.ReorderError
	require.True(t, errors.As(err, &reorderErr))
	assert.Equal(t, 1, reorderErr.FailedIndex)
	assert.True(t, errors.Is(reorderErr.Err, sql.ErrNoRows))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountProductsByCategory(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE category_id = $1`)).
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountProductsByCategory(context.Background(), "cat-1")

	require.NoError(t, err)
	assert.Equal(t, 4, count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_CascadesImages(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM product_images WHERE product_id = $1`)).
		WithArgs("prod-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs("prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteProduct(context.Background(), "prod-1")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_NotFound(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM product_images WHERE product_id = $1`)).
		WithArgs("prod-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs("prod-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteProduct(context.Background(), "prod-missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPrimaryImage(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE product_images`).
		WithArgs("prod-1", "img-2").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.SetPrimaryImage(context.Background(), "prod-1", "img-2")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPrimaryImage_NotOwned(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	// The EXISTS guard stops the statement entirely for a foreign image id.
	mock.ExpectExec(`UPDATE product_images`).
		WithArgs("prod-1", "img-of-other-product").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetPrimaryImage(context.Background(), "prod-1", "img-of-other-product")

	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProductImage_PrimarySwapsInTransaction(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	imageColumns := []string{"id", "product_id", "image_url", "sort_order", "is_primary", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE product_images SET is_primary = false, updated_at = now() WHERE product_id = $1 AND is_primary`)).
		WithArgs("prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO product_images`).
		WithArgs("prod-1", "https://cdn/x.png", 2, true).
		WillReturnRows(sqlmock.NewRows(imageColumns).
			AddRow("img-3", "prod-1", "https://cdn/x.png", 2, true, now, now))
	mock.ExpectCommit()

	image, err := repo.SaveProductImage(context.Background(), "prod-1", "https://cdn/x.png", 2, true)

	require.NoError(t, err)
	assert.Equal(t, "img-3", image.ID)
	assert.True(t, image.IsPrimary)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProductImage_NonPrimarySkipsTransaction(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	imageColumns := []string{"id", "product_id", "image_url", "sort_order", "is_primary", "created_at", "updated_at"}

	mock.ExpectQuery(`INSERT INTO product_images`).
		WithArgs("prod-1", "https://cdn/y.png", 3, false).
		WillReturnRows(sqlmock.NewRows(imageColumns).
			AddRow("img-4", "prod-1", "https://cdn/y.png", 3, false, now, now))

	image, err := repo.SaveProductImage(context.Background(), "prod-1", "https://cdn/y.png", 3, false)

	require.NoError(t, err)
	assert.False(t, image.IsPrimary)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugTaken(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`)).
		WithArgs("laptops").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.SlugTaken(context.Background(), slug.Categories, "laptops", "")

	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugTaken_ExcludesOwnRow(t *testing.T) {
	db, mock, repo := newMockRepository(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`)).
		WithArgs("gaming-mouse", "prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.SlugTaken(context.Background(), slug.Products, "gaming-mouse", "prod-1")

	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugTaken_UnknownTable(t *testing.T) {
	db, _, repo := newMockRepository(t)
	defer db.Close()

	_, err := repo.SlugTaken(context.Background(), slug.Table("users"), "x", "")

	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	dsn := DSN("db.internal", "catalog", "svc", "secret", "5432", "require")
	assert.Equal(t, "host=db.internal port=5432 user=svc password=secret dbname=catalog sslmode=require", dsn)
}

func TestDSN_DefaultsToDisable(t *testing.T) {
	dsn := DSN("localhost", "catalog", "svc", "secret", "5432", "")
	assert.Contains(t, dsn, "sslmode=disable")
}
