package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/slug"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Close() error {
	return m.Called().Error(0)
}

func (m *MockRepository) GetCategories(ctx context.Context, search string, onlyActive bool, limit, offset int) ([]domain.Category, error) {
	args := m.Called(ctx, search, onlyActive, limit, offset)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockRepository) CountCategories(ctx context.Context, search string, onlyActive bool) (int, error) {
	args := m.Called(ctx, search, onlyActive)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockRepository) CreateCategory(ctx context.Context, name, categorySlug string) (domain.Category, error) {
	args := m.Called(ctx, name, categorySlug)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockRepository) UpdateCategory(ctx context.Context, id, name, categorySlug string, image *string) (domain.Category, error) {
	args := m.Called(ctx, id, name, categorySlug, image)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockRepository) ToggleCategoryActive(ctx context.Context, id string) (domain.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockRepository) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ReorderCategories(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockRepository) CountProductsByCategory(ctx context.Context, categoryID string) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetProducts(ctx context.Context, search, categoryID string, onlyActive bool, limit, offset int) ([]domain.Product, error) {
	args := m.Called(ctx, search, categoryID, onlyActive, limit, offset)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockRepository) CountProducts(ctx context.Context, search, categoryID string, onlyActive bool) (int, error) {
	args := m.Called(ctx, search, categoryID, onlyActive)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockRepository) CreateProduct(ctx context.Context, req *CreateProductRequest) (domain.Product, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockRepository) ToggleProductActive(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockRepository) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.ProductImage), args.Error(1)
}

func (m *MockRepository) GetProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error) {
	args := m.Called(ctx, productID, imageID)
	return args.Get(0).(domain.ProductImage), args.Error(1)
}

func (m *MockRepository) CountProductImages(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SaveProductImage(ctx context.Context, productID, imageURL string, sortOrder int, isPrimary bool) (domain.ProductImage, error) {
	args := m.Called(ctx, productID, imageURL, sortOrder, isPrimary)
	return args.Get(0).(domain.ProductImage), args.Error(1)
}

func (m *MockRepository) SetPrimaryImage(ctx context.Context, productID, imageID string) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

func (m *MockRepository) DeleteProductImage(ctx context.Context, productID, imageID string) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

func (m *MockRepository) GetProfiles(ctx context.Context) ([]domain.AdminProfile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AdminProfile), args.Error(1)
}

func (m *MockRepository) GetProfile(ctx context.Context, id string) (domain.AdminProfile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AdminProfile), args.Error(1)
}

func (m *MockRepository) CreateProfile(ctx context.Context, id, email string, role domain.Role) (domain.AdminProfile, error) {
	args := m.Called(ctx, id, email, role)
	return args.Get(0).(domain.AdminProfile), args.Error(1)
}

func (m *MockRepository) SetProfileActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockRepository) DeleteProfile(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) SlugTaken(ctx context.Context, table slug.Table, s string, excludeID string) (bool, error) {
	args := m.Called(ctx, table, s, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) SignIn(ctx context.Context, email, password string) (Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(Session), args.Error(1)
}

func (m *MockIdentity) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *MockIdentity) GetUser(ctx context.Context, accessToken string) (IdentityUser, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(IdentityUser), args.Error(1)
}

func (m *MockIdentity) AdminCreateUser(ctx context.Context, email, password string) (IdentityUser, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(IdentityUser), args.Error(1)
}

type MockBucket struct {
	mock.Mock
}

func (m *MockBucket) Upload(key string, data []byte) error {
	return m.Called(key, data).Error(0)
}

func (m *MockBucket) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockBucket) Remove(keys []string) error {
	return m.Called(keys).Error(0)
}

func (m *MockBucket) PublicURL(key string) string {
	return m.Called(key).String(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	return m.Called(ctx, exchange, event, headers).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}
