package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type DeleteAdminHandler struct {
	repository Repository
}

type DeleteAdminRequest struct {
	ID string `params:"id" validate:"required,uuid4"`
}

type DeleteAdminResponse struct{}

func NewDeleteAdminHandler(repository Repository) *DeleteAdminHandler {
	return &DeleteAdminHandler{
		repository: repository,
	}
}

func (h DeleteAdminHandler) Handle(ctx context.Context, req *DeleteAdminRequest) (*DeleteAdminResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"admin.delete.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"admin.delete.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	callerID, _ := ctx.Value("UserID").(string)
	if callerID == req.ID {
		return nil, httperror.Forbidden(
			"admin.delete.self_target",
			"You cannot delete your own account",
			nil,
		)
	}

	profile, err := h.repository.GetProfile(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"admin.delete.not_found",
				"Admin profile not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"admin.delete.failed",
			"Failed to retrieve admin profile",
			nil,
		)
	}

	if profile.Role == domain.RoleSuperAdmin {
		return nil, httperror.Forbidden(
			"admin.delete.super_admin",
			"Super admin accounts cannot be deleted",
			nil,
		)
	}

	if err := h.repository.DeleteProfile(ctx, profile.ID); err != nil {
		return nil, httperror.InternalServerError(
			"admin.delete.delete_failed",
			"An error occurred while deleting the admin profile",
			[]string{
				err.Error(),
			},
		)
	}

	return nil, httperror.NoContent(
		"admin.delete.success",
		"Admin profile deleted",
		nil,
	)
}
