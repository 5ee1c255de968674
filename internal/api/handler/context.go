package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/service"
)

// SessionStore holds the portals behind issued tokens.
type SessionStore interface {
	Put(p *service.Portal)
	Get(id string) (*service.Portal, bool)
	Delete(id string)
	ForUser(userID string) []*service.Portal
}

// PortalFactory builds a logged-out portal bound to the wallet address the
// client supplied, which may be empty.
type PortalFactory func(walletAddress string) *service.Portal

// TokenIssuer signs the token returned by login.
type TokenIssuer interface {
	Issue(s *domain.Session) (string, time.Time, error)
}

// NotificationInbox collects notifications for sessions opened on it and is
// drained by GET /session/notifications.
type NotificationInbox interface {
	Open(sessionID string)
	Drain(sessionID string) []domain.Notification
	Forget(sessionID string)
}

// ctxPortal resolves the portal for the session id injected by the Auth
// middleware and checks it still belongs to the token's user:
//   - sid must be non-empty (presence proves the middleware ran).
//   - a portal that was logged out or swept answers 401, as does one whose
//     session now belongs to someone else.
func ctxPortal(c echo.Context, store SessionStore) (*service.Portal, error) {
	sid, _ := c.Get("sid").(string)
	if sid == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	p, ok := store.Get(sid)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}

	userID, _ := c.Get("user_id").(string)
	s, ok := p.Session()
	if !ok || s.User.ID != userID {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}
	return p, nil
}

// ctxActivePortal is ctxPortal for administrative reads: a session blocked
// pending moderation sees nothing but its own case.
func ctxActivePortal(c echo.Context, store SessionStore) (*service.Portal, error) {
	p, err := ctxPortal(c, store)
	if err != nil {
		return nil, err
	}
	if s, _ := p.Session(); s.IsBlocked {
		return nil, domain.ErrSessionBlocked
	}
	return p, nil
}

func snapshot(p *service.Portal) sessionResponse {
	s, _ := p.Session()
	return sessionResponse{
		Session:      s,
		Route:        p.Route(),
		Capabilities: p.Capabilities().Flags(),
	}
}
