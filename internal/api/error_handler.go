package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unitynodes/unity-nodes-api/internal/api/handler"
	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Attaches the existing license to 409 and the category to 404 allocation failures.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if code == http.StatusServiceUnavailable {
			c.Response().Header().Set("Retry-After", "1")
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	fail := func(code int, msg string) (int, handler.ErrorResponse) {
		return code, handler.ErrorResponse{Error: msg}
	}

	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fail(he.Code, fmt.Sprintf("%v", he.Message))
	}

	var already *domain.AlreadyAllocatedError
	if errors.As(err, &already) {
		return http.StatusConflict, handler.ErrorResponse{
			Error: "User already has a generated license",
			Data:  already.Existing,
		}
	}
	var none *domain.NoInventoryError
	if errors.As(err, &none) {
		return http.StatusNotFound, handler.ErrorResponse{
			Error:    "No available licenses found",
			NodeType: none.NodeType.Label(),
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return fail(http.StatusBadRequest, invalidRequestMessage(err))
	case errors.Is(err, domain.ErrContention):
		return fail(http.StatusServiceUnavailable, "License allocation is busy, please retry")
	case errors.Is(err, domain.ErrLicenseNotFound):
		return fail(http.StatusNotFound, "license not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return fail(http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fail(http.StatusForbidden, "access forbidden")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrOperatorExists):
		return fail(http.StatusConflict, "operator already exists")
	case errors.Is(err, domain.ErrIdempotencyInFlight):
		return fail(http.StatusConflict, domain.ErrIdempotencyInFlight.Error())
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Bool("storage", errors.Is(err, domain.ErrStorageFailure)).
		Msg("unhandled error")

	msg, _ := c.Get(handler.CtxFailureMessage).(string)
	if msg == "" {
		msg = "internal server error"
	}
	return fail(http.StatusInternalServerError, msg)
}

// invalidRequestMessage drops the operation prefix services add, keeping
// what the client got wrong.
func invalidRequestMessage(err error) string {
	msg := err.Error()
	marker := domain.ErrInvalidRequest.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return domain.ErrInvalidRequest.Error()
}
