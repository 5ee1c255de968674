package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/api/metrics"
	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
	"github.com/kalakrut/portal/internal/core/service"
)

type AuthHandler struct {
	newPortal PortalFactory
	sessions  SessionStore
	tokens    TokenIssuer
	inbox     NotificationInbox
	log       zerolog.Logger
}

func NewAuthHandler(newPortal PortalFactory, sessions SessionStore, tokens TokenIssuer, inbox NotificationInbox, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		newPortal: newPortal,
		sessions:  sessions,
		tokens:    tokens,
		inbox:     inbox,
		log:       log,
	}
}

// Login resolves a session and returns a bearer token bound to it.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login attempt"
// @Success      200   {object}  loginResponse
// @Success      201   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown role"})
	}

	in := ports.LoginRequest{
		Role:     role,
		Method:   domain.LoginMethod(req.Method),
		Mode:     domain.LoginMode(req.Mode),
		Email:    req.Email,
		Password: req.Password,
	}

	p := h.newPortal(req.WalletAddress)
	h.inbox.Open(p.ID())
	var (
		session domain.Session
		created bool
		err     error
	)
	if req.Register {
		session, created, err = p.LoginOrRegister(c.Request().Context(), in)
	} else {
		session, err = p.Login(c.Request().Context(), in)
	}
	if created {
		metrics.RegistrationsTotal.WithLabelValues(string(role), "auto").Inc()
	}
	if err != nil {
		result := "invalid"
		if reason, ok := domain.AuthFailure(err); ok {
			result = string(reason)
		}
		metrics.LoginAttemptsTotal.WithLabelValues(req.Method, req.Mode, result).Inc()
		h.inbox.Forget(p.ID())
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues(req.Method, req.Mode, "success").Inc()

	return h.open(c, p, session, created)
}

// open signs a token for a freshly started session and registers its portal.
func (h *AuthHandler) open(c echo.Context, p *service.Portal, session domain.Session, created bool) error {
	token, exp, err := h.tokens.Issue(&session)
	if err != nil {
		h.inbox.Forget(p.ID())
		return err
	}
	h.sessions.Put(p)
	h.log.Info().
		Str("session_id", p.ID()).
		Str("user_id", session.User.ID).
		Bool("created", created).
		Msg("session opened")

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, loginResponse{
		Token:           token,
		ExpiresAt:       exp.UTC().Format(time.RFC3339),
		Created:         created,
		sessionResponse: snapshot(p),
	})
}

// Signup registers a live account and logs it in.
//
// @Summary      Register a live account and log it in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown role"})
	}

	p := h.newPortal(req.WalletAddress)
	h.inbox.Open(p.ID())
	session, err := p.Signup(c.Request().Context(), ports.RegistrationInput{
		Email:         req.Email,
		Password:      req.Password,
		Role:          role,
		Name:          req.Name,
		Location:      req.Location,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		h.inbox.Forget(p.ID())
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues(string(role), "signup").Inc()

	return h.open(c, p, session, true)
}

// Logout ends the session behind the token.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}

	p.Logout(c.Request().Context())
	h.sessions.Delete(p.ID())
	h.inbox.Forget(p.ID())
	return c.NoContent(http.StatusNoContent)
}
