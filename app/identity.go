package app

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned by SignIn when the identity provider
// rejects the email/password pair.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// ErrInvalidSession is returned by GetUser for missing/expired tokens.
var ErrInvalidSession = errors.New("identity: invalid session")

type IdentityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        IdentityUser `json:"user"`
}

// IdentityProvider is the seam over the hosted auth service. AdminCreateUser
// runs with service credentials and must never be reachable from the browser.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (IdentityUser, error)
	AdminCreateUser(ctx context.Context, email, password string) (IdentityUser, error)
}
