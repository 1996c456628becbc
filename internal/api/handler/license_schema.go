package handler

import "github.com/unitynodes/unity-nodes-api/internal/core/domain"

type generateLicenseRequest struct {
	UserID   string `json:"userId" validate:"required"`
	NodeType string `json:"nodeType,omitempty" validate:"omitempty,oneof=switch validation"`
}

type listLicensesQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=available generated used"`
	NodeType string `query:"nodeType" validate:"omitempty,oneof=switch validation"`
	UserID   string `query:"userId"`
}

type provisionRequest struct {
	NodeType string `json:"nodeType" validate:"required,oneof=switch validation"`
	Count    int    `json:"count" validate:"required,min=1,max=1000"`
}

// licenseResponse documents the license shape for swagger.
type licenseResponse struct {
	Success bool            `json:"success"`
	Data    *domain.License `json:"data"`
	Message string          `json:"message,omitempty"`
}

type licenseListResponse struct {
	Success bool              `json:"success"`
	Data    []*domain.License `json:"data"`
	Count   int               `json:"count"`
}
