package consumers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/app"
	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/slug"
)

type stubRepository struct {
	app.Repository
	takenSlugs map[string]bool
	created    []*app.CreateProductRequest
}

func (s *stubRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	return domain.Category{ID: id}, nil
}

func (s *stubRepository) SlugTaken(ctx context.Context, table slug.Table, slugValue string, excludeID string) (bool, error) {
	return s.takenSlugs[slugValue], nil
}

func (s *stubRepository) CreateProduct(ctx context.Context, req *app.CreateProductRequest) (domain.Product, error) {
	s.created = append(s.created, req)
	return domain.Product{ID: "prod-1", Name: req.Name, Slug: req.Slug}, nil
}

func newImportEvent(payload any) *events.Event {
	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "feeder",
	}
	return events.NewEvent(events.ImportRequestedEvent, events.EventVersionV1, payload, headers)
}

func TestHandleImportRequested_CreatesProduct(t *testing.T) {
	repo := &stubRepository{takenSlugs: map[string]bool{}}
	handler := NewImportEventHandler(repo, slug.NewResolver(repo), zap.NewNop())

	event := newImportEvent(events.ImportRequestedPayload{
		Name:       "Gaming Mouse",
		Price:      decimal.NewFromInt(150),
		Currency:   "SAR",
		CategoryID: "cat-1",
	})

	err := handler.HandleEvent(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "gaming-mouse", repo.created[0].Slug)
}

func TestHandleImportRequested_SuffixesTakenSlug(t *testing.T) {
	repo := &stubRepository{takenSlugs: map[string]bool{
		"gaming-mouse":   true,
		"gaming-mouse-1": true,
	}}
	handler := NewImportEventHandler(repo, slug.NewResolver(repo), zap.NewNop())

	event := newImportEvent(events.ImportRequestedPayload{
		Name:       "Gaming Mouse",
		Price:      decimal.NewFromInt(150),
		Currency:   "SAR",
		CategoryID: "cat-1",
	})

	err := handler.HandleEvent(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "gaming-mouse-2", repo.created[0].Slug)
}

func TestHandleImportRequested_RejectsUnknownCurrency(t *testing.T) {
	repo := &stubRepository{takenSlugs: map[string]bool{}}
	handler := NewImportEventHandler(repo, slug.NewResolver(repo), zap.NewNop())

	event := newImportEvent(events.ImportRequestedPayload{
		Name:       "Gaming Mouse",
		Price:      decimal.NewFromInt(150),
		Currency:   "EUR",
		CategoryID: "cat-1",
	})

	err := handler.HandleEvent(context.Background(), event)

	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestHandleEvent_IgnoresUnknownEvents(t *testing.T) {
	repo := &stubRepository{takenSlugs: map[string]bool{}}
	handler := NewImportEventHandler(repo, slug.NewResolver(repo), zap.NewNop())

	headers := events.Headers{Service: "feeder"}
	event := events.NewEvent("catalog.import.cancelled", events.EventVersionV1, nil, headers)

	err := handler.HandleEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Empty(t, repo.created)
}
