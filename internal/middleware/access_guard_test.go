package middleware

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/app"
	"storefront/domain"
)

type stubIdentity struct {
	app.IdentityProvider
	user       app.IdentityUser
	getUserErr error
	signedOut  []string
}

func (s *stubIdentity) GetUser(ctx context.Context, accessToken string) (app.IdentityUser, error) {
	if s.getUserErr != nil {
		return app.IdentityUser{}, s.getUserErr
	}
	return s.user, nil
}

func (s *stubIdentity) SignOut(ctx context.Context, accessToken string) error {
	s.signedOut = append(s.signedOut, accessToken)
	return nil
}

type stubRepository struct {
	app.Repository
	profile    domain.AdminProfile
	profileErr error
}

func (s *stubRepository) GetProfile(ctx context.Context, id string) (domain.AdminProfile, error) {
	if s.profileErr != nil {
		return domain.AdminProfile{}, s.profileErr
	}
	return s.profile, nil
}

func newGuardedApp(identity *stubIdentity, repository *stubRepository, extra ...fiber.Handler) *fiber.App {
	fiberApp := fiber.New()

	handlers := []fiber.Handler{NewAccessGuard(identity, repository)}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		role, _ := c.UserContext().Value("UserRole").(domain.Role)
		return c.JSON(fiber.Map{
			"userId": c.UserContext().Value("UserID"),
			"role":   string(role),
		})
	})

	fiberApp.Get("/protected", handlers...)
	return fiberApp
}

func TestAccessGuard_MissingToken(t *testing.T) {
	fiberApp := newGuardedApp(&stubIdentity{}, &stubRepository{})

	req := httptest.NewRequest("GET", "/protected", nil)
	res, err := fiberApp.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestAccessGuard_InvalidSession(t *testing.T) {
	identity := &stubIdentity{getUserErr: app.ErrInvalidSession}
	fiberApp := newGuardedApp(identity, &stubRepository{})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	res, err := fiberApp.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestAccessGuard_NoProfile(t *testing.T) {
	identity := &stubIdentity{user: app.IdentityUser{ID: "user-1"}}
	repository := &stubRepository{profileErr: sql.ErrNoRows}
	fiberApp := newGuardedApp(identity, repository)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	res, err := fiberApp.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
}

func TestAccessGuard_InactiveProfileIsSignedOut(t *testing.T) {
	identity := &stubIdentity{user: app.IdentityUser{ID: "user-1"}}
	repository := &stubRepository{profile: domain.AdminProfile{ID: "user-1", Role: domain.RoleAdmin, IsActive: false}}
	fiberApp := newGuardedApp(identity, repository)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	res, err := fiberApp.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	assert.Equal(t, []string{"stale-token"}, identity.signedOut, "the stale session must be revoked")
}

func TestAccessGuard_ActiveProfilePasses(t *testing.T) {
	identity := &stubIdentity{user: app.IdentityUser{ID: "user-1"}}
	repository := &stubRepository{profile: domain.AdminProfile{ID: "user-1", Email: "admin@shop.test", Role: domain.RoleAdmin, IsActive: true}}
	fiberApp := newGuardedApp(identity, repository)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	res, err := fiberApp.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Empty(t, identity.signedOut)
}

func TestRequireSuperAdmin_BlocksAdmin(t *testing.T) {
	identity := &stubIdentity{user: app.IdentityUser{ID: "user-1"}}
	repository := &stubRepository{profile: domain.AdminProfile{ID: "user-1", Role: domain.RoleAdmin, IsActive: true}}
	fiberApp := newGuardedApp(identity, repository, RequireSuperAdmin())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	res, err := fiberApp.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
}

func TestRequireSuperAdmin_AllowsSuperAdmin(t *testing.T) {
	identity := &stubIdentity{user: app.IdentityUser{ID: "user-1"}}
	repository := &stubRepository{profile: domain.AdminProfile{ID: "user-1", Role: domain.RoleSuperAdmin, IsActive: true}}
	fiberApp := newGuardedApp(identity, repository, RequireSuperAdmin())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	res, err := fiberApp.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "", bearerToken("Bearer "))
}
