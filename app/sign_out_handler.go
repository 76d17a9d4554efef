package app

import (
	"context"
	"strings"

	"storefront/pkg/httperror"
)

type SignOutHandler struct {
	identity IdentityProvider
}

type SignOutRequest struct {
	Authorization string `reqHeader:"Authorization"`
}

type SignOutResponse struct {
	SignedOut bool `json:"signedOut"`
}

func NewSignOutHandler(identity IdentityProvider) *SignOutHandler {
	return &SignOutHandler{
		identity: identity,
	}
}

func (h SignOutHandler) Handle(ctx context.Context, req *SignOutRequest) (*SignOutResponse, error) {
	token := strings.TrimSpace(strings.TrimPrefix(req.Authorization, "Bearer "))
	if token == "" {
		return nil, httperror.Unauthorized(
			"auth.sign_out.missing_token",
			"Authorization header with a bearer token is required",
			nil,
		)
	}

	if err := h.identity.SignOut(ctx, token); err != nil {
		return nil, httperror.InternalServerError(
			"auth.sign_out.failed",
			"An error occurred while signing out",
			nil,
		)
	}

	return &SignOutResponse{SignedOut: true}, nil
}
