package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/service"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	if reason, ok := domain.AuthFailure(err); ok {
		return http.StatusUnauthorized, errorResponse{
			Error:  service.AuthFailureMessage(err),
			Reason: string(reason),
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidLoginRequest):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, errorResponse{Error: service.AuthFailureMessage(err)}
	case errors.Is(err, domain.ErrRegistrationConflict):
		return http.StatusConflict, errorResponse{Error: "Registration Failed: An account with this email already exists."}
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, errorResponse{Error: "permission denied"}
	case errors.Is(err, domain.ErrSessionBlocked):
		return http.StatusLocked, errorResponse{Error: "session is blocked pending moderation"}
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, errorResponse{Error: "no active session"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrCaseNotFound):
		return http.StatusNotFound, errorResponse{Error: "moderation case not found"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
