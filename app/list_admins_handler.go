package app

import (
	"context"

	"storefront/domain"
	"storefront/pkg/httperror"
)

type ListAdminsHandler struct {
	repository Repository
}

func NewListAdminsHandler(repository Repository) *ListAdminsHandler {
	return &ListAdminsHandler{
		repository: repository,
	}
}

type ListAdminsRequest struct{}

type ListAdminsResponse struct {
	Admins []domain.AdminProfile `json:"admins"`
}

func (h ListAdminsHandler) Handle(ctx context.Context, req *ListAdminsRequest) (*ListAdminsResponse, error) {
	admins, err := h.repository.GetProfiles(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"admin.index.failed",
			"Failed to retrieve admin profiles",
			nil,
		)
	}

	return &ListAdminsResponse{Admins: admins}, nil
}
