package http

import (
	"errors"
	"net/http"

	"tableorder/internal/core/ports"
	"tableorder/internal/pkg/errs"
	"tableorder/internal/pkg/logging"

	"github.com/labstack/echo/v4"
)

// statusFor maps a use case error to an HTTP status code.
// Timeout is checked before persistence because a timed out store call matches both.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrIdempotencyKeyInFlight):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errs.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errs.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c echo.Context, err error) error {
	code := statusFor(err)

	message := err.Error()
	if code >= http.StatusInternalServerError {
		logging.FromCtx(c.Request().Context(), s.logger).ErrorContext(c.Request().Context(),
			"request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", code,
			"error", err,
		)
		if code == http.StatusInternalServerError {
			message = http.StatusText(code)
		}
	}

	return c.JSON(code, Error{Code: code, Message: message})
}
