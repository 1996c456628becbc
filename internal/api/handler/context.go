package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// CtxFailureMessage holds the client-facing message the error handler uses
// when a request fails for an unexpected reason.
const CtxFailureMessage = "failure_message"

// failWith records the generic message shown if the request ends in a 500.
func failWith(c echo.Context, msg string) {
	c.Set(CtxFailureMessage, msg)
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidRequest)
	}
	return c.Validate(req)
}
