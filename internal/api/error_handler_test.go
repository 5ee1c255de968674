package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   int
		reason string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad body"), http.StatusBadRequest, ""},
		{"wrong password", &domain.AuthError{Reason: domain.ReasonWrongPassword}, http.StatusUnauthorized, "wrong_password"},
		{"invalid request", fmt.Errorf("%w: no role", domain.ErrInvalidLoginRequest), http.StatusBadRequest, ""},
		{"conflict", domain.ErrRegistrationConflict, http.StatusConflict, ""},
		{"denied", domain.ErrPermissionDenied, http.StatusForbidden, ""},
		{"blocked", domain.ErrSessionBlocked, http.StatusLocked, ""},
		{"no session", domain.ErrNoSession, http.StatusUnauthorized, ""},
		{"user", domain.ErrUserNotFound, http.StatusNotFound, ""},
		{"case", fmt.Errorf("get: %w", domain.ErrCaseNotFound), http.StatusNotFound, ""},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		handle(tc.err, c)

		if rec.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
			continue
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid json: %v", tc.name, err)
		}
		if resp.Error == "" {
			t.Errorf("%s: empty error message", tc.name)
		}
		if resp.Reason != tc.reason {
			t.Errorf("%s: expected reason %q, got %q", tc.name, tc.reason, resp.Reason)
		}
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("dial tcp 10.0.0.3:5432: refused"), c)

	if got := rec.Body.String(); got != "{\"error\":\"internal server error\"}\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusNoContent)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrPermissionDenied, c)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("committed response was rewritten: %d %q", rec.Code, rec.Body.String())
	}
}
