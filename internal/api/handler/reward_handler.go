package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

type recordRewardRequest struct {
	UserID        string  `json:"userId" validate:"required"`
	MinutesFarmed float64 `json:"minutesFarmed" validate:"required,gt=0"`
	MntEarned     float64 `json:"mntEarned" validate:"required,gt=0"`
	Period        string  `json:"period,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
}

type rewardSummaryQuery struct {
	UserID string `query:"userId" validate:"required"`
	Period string `query:"period" validate:"omitempty,oneof=daily weekly monthly"`
}

type rewardResponse struct {
	Success bool           `json:"success"`
	Data    *domain.Reward `json:"data"`
	Message string         `json:"message"`
}

type rewardSummaryResponse struct {
	Success bool                `json:"success"`
	Data    ports.RewardSummary `json:"data"`
}

type RewardHandler struct {
	service ports.RewardService
}

func NewRewardHandler(service ports.RewardService) *RewardHandler {
	return &RewardHandler{service: service}
}

// Summary returns a user's rewards for a period with totals.
//
// @Summary      Reward summary
// @Tags         rewards
// @Produce      json
// @Param        userId  query     string  true   "user"
// @Param        period  query     string  false  "daily | weekly | monthly (default)"
// @Success      200     {object}  rewardSummaryResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /api/rewards [get]
func (h *RewardHandler) Summary(c echo.Context) error {
	failWith(c, "Failed to fetch rewards")

	var q rewardSummaryQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	summary, err := h.service.Summary(c.Request().Context(), q.UserID, q.Period)
	if err != nil {
		return err
	}
	return respondOK(c, summary, "")
}

// Record stores a reward. A repeated Idempotency-Key returns the first result.
//
// @Summary      Record a reward
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string               false  "replay protection key"
// @Param        body             body      recordRewardRequest  true   "reward"
// @Success      200              {object}  rewardResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      409              {object}  ErrorResponse
// @Failure      500              {object}  ErrorResponse
// @Router       /api/rewards [post]
func (h *RewardHandler) Record(c echo.Context) error {
	failWith(c, "Failed to create reward")

	var req recordRewardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Record(c.Request().Context(), ports.RecordRewardInput{
		UserID:         req.UserID,
		MinutesFarmed:  req.MinutesFarmed,
		MntEarned:      req.MntEarned,
		Period:         req.Period,
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}
	if res.Replayed {
		c.Response().Header().Set(headerReplayed, "true")
	}
	return respondOK(c, res.Reward, "Reward recorded successfully")
}
