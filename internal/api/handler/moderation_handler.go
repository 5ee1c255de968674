package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/api/metrics"
	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// ModerationHandler serves the administrator side of moderation.
type ModerationHandler struct {
	sessions   SessionStore
	moderation ports.ModerationService
	log        zerolog.Logger
}

func NewModerationHandler(sessions SessionStore, moderation ports.ModerationService, log zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{sessions: sessions, moderation: moderation, log: log}
}

// List handles GET /moderation/cases.
//
// @Summary      List moderation cases
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ModerationCase
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      423  {object}  errorResponse
// @Router       /moderation/cases [get]
func (h *ModerationHandler) List(c echo.Context) error {
	if _, err := ctxActivePortal(c, h.sessions); err != nil {
		return err
	}
	cases := h.moderation.List()
	if cases == nil {
		cases = []domain.ModerationCase{}
	}
	return c.JSON(http.StatusOK, cases)
}

// Get handles GET /moderation/cases/:id.
//
// @Summary      Get a moderation case
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case id (e.g. MOD-1A2B3C4D)"
// @Success      200  {object}  domain.ModerationCase
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      423  {object}  errorResponse
// @Router       /moderation/cases/{id} [get]
func (h *ModerationHandler) Get(c echo.Context) error {
	if _, err := ctxActivePortal(c, h.sessions); err != nil {
		return err
	}
	mc, ok := h.moderation.Get(c.Param("id"))
	if !ok {
		return domain.ErrCaseNotFound
	}
	return c.JSON(http.StatusOK, mc)
}

// Resolve handles POST /moderation/cases/:id/resolve. Every live session of
// the case's user picks up an unblock immediately.
//
// @Summary      Rule on an appealed case
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Case id"
// @Param        body  body      resolveCaseRequest  true  "Decision"
// @Success      200   {object}  resolveCaseResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      423   {object}  errorResponse
// @Router       /moderation/cases/{id}/resolve [post]
func (h *ModerationHandler) Resolve(c echo.Context) error {
	var req resolveCaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}

	mc, changed, err := p.ResolveCase(c.Param("id"), domain.ModerationDecision(req.Decision))
	if err != nil {
		return err
	}

	resp := resolveCaseResponse{Changed: changed, Case: mc}
	if !changed {
		return c.JSON(http.StatusOK, resp)
	}
	metrics.ModerationTransitionsTotal.WithLabelValues(string(mc.Status)).Inc()

	for _, owner := range h.sessions.ForUser(mc.UserID) {
		if owner.ApplyResolution(mc) {
			resp.Unblocked++
		}
	}
	h.log.Info().
		Str("case_id", mc.ID).
		Str("status", string(mc.Status)).
		Int("unblocked_sessions", resp.Unblocked).
		Msg("moderation case resolved")
	return c.JSON(http.StatusOK, resp)
}
