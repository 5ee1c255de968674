package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kalakrut/portal/internal/api/metrics"
	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// SessionHandler serves the state of the caller's own session.
type SessionHandler struct {
	sessions   SessionStore
	inbox      NotificationInbox
	moderation ports.ModerationService
}

func NewSessionHandler(sessions SessionStore, inbox NotificationInbox, moderation ports.ModerationService) *SessionHandler {
	return &SessionHandler{sessions: sessions, inbox: inbox, moderation: moderation}
}

// Get handles GET /session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot(p))
}

// Route handles GET /session/view.
//
// @Summary      Resolve the current view
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Route
// @Failure      401  {object}  errorResponse
// @Router       /session/view [get]
func (h *SessionHandler) Route(c echo.Context) error {
	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Route())
}

// Navigate handles POST /session/view. Unknown and denied views are not
// errors: the returned route says what renders instead.
//
// @Summary      Navigate to a view
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      navigateRequest  true  "Requested view"
// @Success      200   {object}  domain.Route
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /session/view [post]
func (h *SessionHandler) Navigate(c echo.Context) error {
	var req navigateRequest
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

	route := p.Navigate(domain.View(req.View))
	metrics.ViewResolutionsTotal.WithLabelValues(string(route.Outcome)).Inc()
	return c.JSON(http.StatusOK, route)
}

// ViewProfile handles POST /session/profiles/:id/view.
//
// @Summary      Show another user's profile
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.Route
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /session/profiles/{id}/view [post]
func (h *SessionHandler) ViewProfile(c echo.Context) error {
	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}

	route, err := p.ViewProfile(c.Param("id"))
	if err != nil {
		return err
	}
	metrics.ViewResolutionsTotal.WithLabelValues(string(route.Outcome)).Inc()
	return c.JSON(http.StatusOK, route)
}

// UpdateProfile handles PATCH /session/profile.
//
// @Summary      Update the caller's profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profilePatchRequest  true  "Fields to change"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      423   {object}  errorResponse
// @Router       /session/profile [patch]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req profilePatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	patch := toPatch(req)
	if patch.Empty() {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "nothing to update"})
	}

	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}
	if s, _ := p.Session(); s.IsBlocked {
		return domain.ErrSessionBlocked
	}

	profile, err := p.UpdateProfile(c.Request().Context(), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// FlagViolation handles POST /session/violations. It blocks the caller's
// session and opens a moderation case.
//
// @Summary      Report a policy violation on the caller's content
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      violationRequest  false  "Violation details"
// @Success      201   {object}  domain.ModerationCase
// @Failure      401   {object}  errorResponse
// @Router       /session/violations [post]
func (h *SessionHandler) FlagViolation(c echo.Context) error {
	var req violationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}

	mc, err := p.FlagViolation(req.ViolationType, req.ContentSnippet)
	if err != nil {
		return err
	}
	metrics.ModerationTransitionsTotal.WithLabelValues(string(mc.Status)).Inc()
	return c.JSON(http.StatusCreated, mc)
}

// Appeal handles POST /session/appeal. A request that cannot be accepted in
// the current state answers 200 with accepted=false.
//
// @Summary      Appeal the caller's block
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      appealRequest  true  "Appeal reason"
// @Success      200   {object}  appealResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /session/appeal [post]
func (h *SessionHandler) Appeal(c echo.Context) error {
	var req appealRequest
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

	if !p.Appeal(req.Reason) {
		return c.JSON(http.StatusOK, appealResponse{Accepted: false})
	}
	metrics.ModerationTransitionsTotal.WithLabelValues(string(domain.StatusAppealPending)).Inc()

	resp := appealResponse{Accepted: true}
	if s, ok := p.Session(); ok {
		if mc, ok := h.moderation.Get(s.BlockCaseID); ok {
			resp.Case = &mc
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Notifications handles GET /session/notifications and drains the queue.
//
// @Summary      Pending notifications
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  notificationsResponse
// @Failure      401  {object}  errorResponse
// @Router       /session/notifications [get]
func (h *SessionHandler) Notifications(c echo.Context) error {
	p, err := ctxPortal(c, h.sessions)
	if err != nil {
		return err
	}

	items := h.inbox.Drain(p.ID())
	if items == nil {
		items = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, notificationsResponse{Notifications: items})
}
