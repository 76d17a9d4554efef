package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type SignInHandler struct {
	repository Repository
	identity   IdentityProvider
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignInResponse struct {
	AccessToken string              `json:"accessToken"`
	TokenType   string              `json:"tokenType"`
	ExpiresIn   int                 `json:"expiresIn"`
	Profile     domain.AdminProfile `json:"profile"`
}

func NewSignInHandler(repository Repository, identity IdentityProvider) *SignInHandler {
	return &SignInHandler{
		repository: repository,
		identity:   identity,
	}
}

func (h SignInHandler) Handle(ctx context.Context, req *SignInRequest) (*SignInResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"auth.sign_in.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"auth.sign_in.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	session, err := h.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, httperror.Unauthorized(
				"auth.sign_in.invalid_credentials",
				"Invalid email or password",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"auth.sign_in.failed",
			"An error occurred while signing in",
			nil,
		)
	}

	profile, err := h.repository.GetProfile(ctx, session.User.ID)
	if err != nil {
		h.revoke(ctx, session.AccessToken)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.Forbidden(
				"auth.sign_in.not_admin",
				"This account has no admin profile",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"auth.sign_in.profile_failed",
			"Failed to load the admin profile",
			nil,
		)
	}

	if !profile.IsActive {
		h.revoke(ctx, session.AccessToken)

		return nil, httperror.Forbidden(
			"auth.sign_in.account_disabled",
			"This admin account is disabled",
			nil,
		)
	}

	return &SignInResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresIn:   session.ExpiresIn,
		Profile:     profile,
	}, nil
}

func (h SignInHandler) revoke(ctx context.Context, accessToken string) {
	if err := h.identity.SignOut(ctx, accessToken); err != nil {
		zap.L().Warn("Failed to revoke rejected session",
			zap.Error(err),
		)
	}
}
