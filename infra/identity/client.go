package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/app"
)

const requestTimeout = 10 * time.Second

// Client talks to the hosted identity provider's REST surface. Admin calls
// run with the service key; everything else uses the publishable anon key
// plus the caller's bearer token.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
}

func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (app.Session, error) {
	agent := fiber.Post(c.baseURL + "/auth/v1/token?grant_type=password")
	agent.Timeout(requestTimeout)
	agent.Set("apikey", c.anonKey)
	agent.JSON(fiber.Map{
		"email":    email,
		"password": password,
	})

	var session app.Session
	code, body, errs := agent.Struct(&session)
	if len(errs) > 0 {
		return app.Session{}, fmt.Errorf("identity sign-in request: %w", errs[0])
	}
	if code == fiber.StatusBadRequest || code == fiber.StatusUnauthorized {
		return app.Session{}, app.ErrInvalidCredentials
	}
	if code != fiber.StatusOK {
		return app.Session{}, fmt.Errorf("identity sign-in rejected (%d): %s", code, body)
	}

	return session, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	agent := fiber.Post(c.baseURL + "/auth/v1/logout")
	agent.Timeout(requestTimeout)
	agent.Set("apikey", c.anonKey)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+accessToken)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("identity sign-out request: %w", errs[0])
	}
	if code != fiber.StatusNoContent && code != fiber.StatusOK {
		return fmt.Errorf("identity sign-out rejected (%d): %s", code, body)
	}

	return nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (app.IdentityUser, error) {
	agent := fiber.Get(c.baseURL + "/auth/v1/user")
	agent.Timeout(requestTimeout)
	agent.Set("apikey", c.anonKey)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+accessToken)

	var user app.IdentityUser
	code, body, errs := agent.Struct(&user)
	if len(errs) > 0 {
		return app.IdentityUser{}, fmt.Errorf("identity user lookup request: %w", errs[0])
	}
	if code == fiber.StatusUnauthorized || code == fiber.StatusForbidden {
		return app.IdentityUser{}, app.ErrInvalidSession
	}
	if code != fiber.StatusOK {
		return app.IdentityUser{}, fmt.Errorf("identity user lookup rejected (%d): %s", code, body)
	}

	return user, nil
}

func (c *Client) AdminCreateUser(ctx context.Context, email, password string) (app.IdentityUser, error) {
	agent := fiber.Post(c.baseURL + "/auth/v1/admin/users")
	agent.Timeout(requestTimeout)
	agent.Set("apikey", c.serviceKey)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.serviceKey)
	agent.JSON(fiber.Map{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	})

	var user app.IdentityUser
	code, body, errs := agent.Struct(&user)
	if len(errs) > 0 {
		return app.IdentityUser{}, fmt.Errorf("identity create-user request: %w", errs[0])
	}
	if code != fiber.StatusOK && code != fiber.StatusCreated {
		return app.IdentityUser{}, fmt.Errorf("identity create-user rejected (%d): %s", code, body)
	}

	return user, nil
}
