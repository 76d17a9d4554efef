package middleware

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/app"
	"storefront/domain"
	"storefront/pkg/httperror"
)

// NewAccessGuard authenticates each request against the identity provider and
// the caller's admin profile. It runs on every admin route: the session and
// the profile can both change between requests. An inactive profile is signed
// out immediately and never reaches a handler.
func NewAccessGuard(identity app.IdentityProvider, repository app.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return unauthorized(c, "access_guard.missing_token", "Missing bearer token")
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		user, err := identity.GetUser(userCtx, token)
		if err != nil {
			return unauthorized(c, "access_guard.invalid_session", "Session is invalid or expired")
		}

		profile, err := repository.GetProfile(userCtx, user.ID)
		if err != nil {
			if err == sql.ErrNoRows {
				return forbidden(c, "access_guard.no_profile", "No admin profile for this account")
			}
			return writeGuardError(c, httperror.InternalServerError(
				"access_guard.profile_lookup_failed",
				"Failed to load admin profile",
				nil,
			))
		}

		if !profile.IsActive {
			if err := identity.SignOut(userCtx, token); err != nil {
				zap.L().Warn("Failed to revoke session of inactive admin",
					zap.String("userID", profile.ID),
					zap.Error(err),
				)
			}
			return forbidden(c, "access_guard.account_disabled", "Account is disabled")
		}

		userCtx = context.WithValue(userCtx, "UserID", profile.ID)
		userCtx = context.WithValue(userCtx, "UserEmail", profile.Email)
		userCtx = context.WithValue(userCtx, "UserRole", profile.Role)
		userCtx = context.WithValue(userCtx, "Jwt", token)

		c.SetUserContext(userCtx)
		return c.Next()
	}
}

// RequireSuperAdmin gates admin-account management; it assumes the access
// guard already ran.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.UserContext().Value("UserRole").(domain.Role)
		if !ok || role != domain.RoleSuperAdmin {
			return forbidden(c, "access_guard.super_admin_required", "Super admin role required")
		}
		return c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return writeGuardError(c, httperror.Unauthorized(code, message, nil))
}

func forbidden(c *fiber.Ctx, code, message string) error {
	return writeGuardError(c, httperror.Forbidden(code, message, nil))
}

func writeGuardError(c *fiber.Ctx, err *httperror.Error) error {
	return c.Status(err.Status).JSON(fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	})
}
