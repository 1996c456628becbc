package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

// LicenseHandler handles HTTP requests for license allocation and listing.
type LicenseHandler struct {
	service ports.LicenseService
}

func NewLicenseHandler(service ports.LicenseService) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// Generate allocates the oldest available license to the requester.
//
// @Summary      Allocate a license
// @Description  Assigns the oldest available license, optionally of one node type. A requester holds at most one generated license.
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Param        body  body      generateLicenseRequest  true  "Requester and optional node type"
// @Success      200   {object}  licenseResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse  "no available license"
// @Failure      409   {object}  ErrorResponse  "requester already holds a generated license"
// @Failure      429   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse  "claim contention, retry"
// @Failure      500   {object}  ErrorResponse
// @Router       /api/licenses/generate [post]
func (h *LicenseHandler) Generate(c echo.Context) error {
	failWith(c, "Failed to generate license")

	var req generateLicenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	lic, err := h.service.Allocate(c.Request().Context(), ports.AllocateInput{
		UserID:   req.UserID,
		NodeType: req.NodeType,
	})
	if err != nil {
		return err
	}
	return respondOK(c, lic, "License generated successfully")
}

// List returns licenses, newest first.
//
// @Summary      List licenses
// @Tags         licenses
// @Produce      json
// @Param        status    query     string  false  "available | generated | used"
// @Param        nodeType  query     string  false  "switch | validation"
// @Param        userId    query     string  false  "holder"
// @Success      200       {object}  licenseListResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /api/licenses [get]
func (h *LicenseHandler) List(c echo.Context) error {
	failWith(c, "Failed to fetch licenses")

	var q listLicensesQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	licenses, err := h.service.List(c.Request().Context(), ports.ListLicensesInput{
		Status:   q.Status,
		NodeType: q.NodeType,
		UserID:   q.UserID,
	})
	if err != nil {
		return err
	}
	return respondList(c, licenses, len(licenses))
}
