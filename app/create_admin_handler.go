package app

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type CreateAdminHandler struct {
	repository     Repository
	identity       IdentityProvider
	eventPublisher events.Publisher
}

type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin super_admin"`
}

type CreateAdminResponse struct {
	Profile domain.AdminProfile `json:"profile"`
}

func NewCreateAdminHandler(repository Repository, identity IdentityProvider, eventPublisher events.Publisher) *CreateAdminHandler {
	return &CreateAdminHandler{
		repository:     repository,
		identity:       identity,
		eventPublisher: eventPublisher,
	}
}

func (h CreateAdminHandler) Handle(ctx context.Context, req *CreateAdminRequest) (*CreateAdminResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"admin.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"admin.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	user, err := h.identity.AdminCreateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.create.identity_failed",
			"Failed to create the identity account",
			[]string{
				err.Error(),
			},
		)
	}

	profile, err := h.repository.CreateProfile(ctx, user.ID, user.Email, domain.Role(req.Role))
	if err != nil {
		// The identity account exists but the profile insert failed. The
		// account cannot sign in without a profile; surface the id so an
		// operator can retry or clean it up.
		return nil, httperror.InternalServerError(
			"admin.create.profile_failed",
			"Identity account was created but the admin profile was not",
			map[string]string{"identityUserId": user.ID},
		)
	}

	h.publishEvent(ctx, profile)

	return &CreateAdminResponse{
		Profile: profile,
	}, nil
}

func (h CreateAdminHandler) publishEvent(ctx context.Context, profile domain.AdminProfile) {
	if h.eventPublisher != nil {
		eventPayload := events.AdminCreatedPayload{
			ID:        profile.ID,
			Email:     profile.Email,
			Role:      string(profile.Role),
			CreatedAt: profile.CreatedAt,
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.AdminCreatedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish admin.created event",
				zap.String("adminId", profile.ID),
				zap.Error(err),
			)
		}
	}
}
