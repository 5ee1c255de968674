package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
	"github.com/kalakrut/portal/internal/core/service"
	"github.com/kalakrut/portal/internal/infrastructure/sessions"
	"github.com/kalakrut/portal/internal/infrastructure/wallet"
)

type testSeeds struct{}

func (testSeeds) Users() ([]ports.SeedUser, error) {
	return []ports.SeedUser{
		{Record: domain.UserRecord{ID: "u_owner", Name: "Kala Owner", Role: domain.RoleSystemAdminLive, Email: "owner@kalakrut.test"}, Password: "live"},
		{Record: domain.UserRecord{ID: "a1", Name: "Luna", Role: domain.RoleArtist, Email: "x@y.com", WalletAddress: "0xabc"}, Password: "p"},
		{Record: domain.UserRecord{ID: "demo_artist", Name: "Demo Artist", Role: domain.RoleArtist, IsMock: true}},
		{Record: domain.UserRecord{ID: "demo_admin", Name: "Demo Admin", Role: domain.RoleAdmin, IsMock: true}},
		{Record: domain.UserRecord{ID: "demo_member", Name: "Leo", Role: domain.RoleDaoMember, IsMock: true}},
	}, nil
}

func (testSeeds) Templates() (map[domain.Role]domain.Profile, error) {
	return map[domain.Role]domain.Profile{domain.RoleReveller: {Name: "Alex Fan"}}, nil
}

// syncNotifier delivers straight into the inbox so tests need not wait on
// the dispatcher.
type syncNotifier struct {
	inbox *sessions.Inbox
}

func (n syncNotifier) Notify(msg domain.Notification) {
	_ = n.inbox.Deliver(context.Background(), msg)
}

type fixture struct {
	e          *echo.Echo
	dir        *service.Directory
	moderation *service.ModerationService
	registry   *sessions.Registry
	inbox      *sessions.Inbox
	tokens     *service.TokenIssuer
	newPortal  PortalFactory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hasher := service.NewBcryptHasher(4)
	dir := service.NewDirectory(nil, zerolog.Nop())
	if err := dir.Bootstrap(context.Background(), testSeeds{}, hasher); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	templates, _ := testSeeds{}.Templates()

	f := &fixture{
		e:          echo.New(),
		dir:        dir,
		moderation: service.NewModerationService(zerolog.Nop()),
		registry:   sessions.NewRegistry(),
		inbox:      sessions.NewInbox(10),
		tokens:     service.NewTokenIssuer("test-secret", time.Hour),
	}
	f.e.Validator = NewValidator()

	deps := service.PortalDeps{
		Resolver:   service.NewResolver(dir, hasher, templates, true, zerolog.Nop()),
		Directory:  dir,
		Moderation: f.moderation,
		Notifier:   syncNotifier{inbox: f.inbox},
		Log:        zerolog.Nop(),
	}
	f.newPortal = func(address string) *service.Portal {
		return service.NewPortal(deps, wallet.NewProvided(address))
	}
	return f
}

// session logs a fresh portal in and registers it the way the login handler
// does.
func (f *fixture) session(t *testing.T, req ports.LoginRequest) *service.Portal {
	t.Helper()
	p := f.newPortal("")
	f.inbox.Open(p.ID())
	if _, err := p.Login(context.Background(), req); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	f.registry.Put(p)
	return p
}

func demo(role domain.Role) ports.LoginRequest {
	return ports.LoginRequest{Role: role, Method: domain.MethodWeb2, Mode: domain.ModeDemo}
}

// request builds an echo context. A non-nil portal is attached as the
// authenticated caller.
func (f *fixture) request(method, target, body string, p *service.Portal) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if p != nil {
		s, _ := p.Session()
		c.Set("sid", p.ID())
		c.Set("user_id", s.User.ID)
		c.Set("role", string(s.User.Role))
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Errorf("expected %d, got %d", code, he.Code)
	}
}
