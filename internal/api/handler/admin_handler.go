package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

// AdminHandler exposes inventory maintenance to operators.
type AdminHandler struct {
	service ports.LicenseService
}

func NewAdminHandler(service ports.LicenseService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Provision adds fresh available licenses to the inventory.
//
// @Summary      Provision licenses
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      provisionRequest  true  "node type and count (1..1000)"
// @Success      201   {object}  licenseListResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /admin/licenses [post]
func (h *AdminHandler) Provision(c echo.Context) error {
	failWith(c, "Failed to provision licenses")

	var req provisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.service.Provision(c.Request().Context(), ports.ProvisionInput{
		NodeType: req.NodeType,
		Count:    req.Count,
	})
	if err != nil {
		return err
	}
	count := len(created)
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: created, Count: &count})
}

// Activate marks a generated license as used.
//
// @Summary      Activate a license
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "license id"
// @Success      200  {object}  licenseResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "license is not in generated status"
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/licenses/{id}/activate [post]
func (h *AdminHandler) Activate(c echo.Context) error {
	failWith(c, "Failed to activate license")

	lic, err := h.service.Activate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondOK(c, lic, "License activated")
}
