package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/domain"
	"storefront/pkg/events"
	"storefront/pkg/httperror"
)

type SetAdminActiveHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type SetAdminActiveRequest struct {
	ID       string `params:"id" validate:"required,uuid4"`
	IsActive *bool  `json:"isActive" validate:"required"`
}

type SetAdminActiveResponse struct {
	Profile domain.AdminProfile `json:"profile"`
}

func NewSetAdminActiveHandler(repository Repository, eventPublisher events.Publisher) *SetAdminActiveHandler {
	return &SetAdminActiveHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (h SetAdminActiveHandler) Handle(ctx context.Context, req *SetAdminActiveRequest) (*SetAdminActiveResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"admin.set_active.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"admin.set_active.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	callerID, _ := ctx.Value("UserID").(string)
	if callerID == req.ID {
		return nil, httperror.Forbidden(
			"admin.set_active.self_target",
			"You cannot change your own active status",
			nil,
		)
	}

	target, err := h.repository.GetProfile(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"admin.set_active.not_found",
				"Admin profile not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"admin.set_active.failed",
			"An error occurred while loading the admin profile",
			nil,
		)
	}

	// Super admin accounts cannot be locked out; mirrors the delete guard.
	// Re-enabling one is still allowed.
	if target.Role == domain.RoleSuperAdmin && !*req.IsActive {
		return nil, httperror.Forbidden(
			"admin.set_active.super_admin",
			"Super admin accounts cannot be disabled",
			nil,
		)
	}

	if err := h.repository.SetProfileActive(ctx, req.ID, *req.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"admin.set_active.not_found",
				"Admin profile not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"admin.set_active.failed",
			"An error occurred while updating the admin profile",
			[]string{
				err.Error(),
			},
		)
	}

	profile, err := h.repository.GetProfile(ctx, req.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.set_active.reload_failed",
			"Profile was updated but could not be reloaded",
			nil,
		)
	}

	h.publishEvent(ctx, profile)

	return &SetAdminActiveResponse{
		Profile: profile,
	}, nil
}

func (h SetAdminActiveHandler) publishEvent(ctx context.Context, profile domain.AdminProfile) {
	if h.eventPublisher != nil {
		eventPayload := events.AdminUpdatedPayload{
			ID:        profile.ID,
			IsActive:  profile.IsActive,
			UpdatedAt: time.Now().UTC(),
		}

		headers := events.Headers{
			TraceID:       events.GenerateTraceID(),
			CorrelationID: events.GenerateCorrelationID(),
			Service:       "storefront",
		}

		event := events.NewEvent(
			events.AdminUpdatedEvent,
			events.EventVersionV1,
			eventPayload,
			headers,
		)

		if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
			zap.L().Error("Failed to publish admin.updated event",
				zap.String("adminId", profile.ID),
				zap.Error(err),
			)
		}
	}
}
