package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

type statsResponse struct {
	Success bool         `json:"success"`
	Data    domain.Stats `json:"data"`
}

type StatsHandler struct {
	service ports.StatsService
}

func NewStatsHandler(service ports.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Snapshot returns inventory counts and network figures.
//
// @Summary      Statistics
// @Description  Network figures other than activeNodes are simulated.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  statsResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/stats [get]
func (h *StatsHandler) Snapshot(c echo.Context) error {
	failWith(c, "Failed to fetch statistics")

	stats, err := h.service.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, stats, "")
}
