package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
)

func newAuthHandler(f *fixture) *AuthHandler {
	return NewAuthHandler(f.newPortal, f.registry, f.tokens, f.inbox, zerolog.Nop())
}

func TestAuthHandler_Login_Demo(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, rec := f.request(http.MethodPost, "/auth/login", `{"role":"DAO Member","method":"web2","mode":"demo"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	decode(t, rec, &resp)
	if resp.Token == "" || resp.ExpiresAt == "" {
		t.Error("expected a token and expiry")
	}
	if resp.Session.User.ID != "demo_member" || resp.Route.View != domain.ViewDashboard {
		t.Errorf("unexpected session: %+v", resp.sessionResponse)
	}
	if !resp.Capabilities["canOnlyManageOwnContracts"] || resp.Capabilities["canManageAllContracts"] {
		t.Errorf("unexpected capabilities: %v", resp.Capabilities)
	}
	if _, ok := f.registry.Get(resp.Session.ID); !ok {
		t.Error("session not registered")
	}
	if got := f.inbox.Drain(resp.Session.ID); len(got) != 1 || got[0].Severity != domain.SeveritySuccess {
		t.Errorf("expected welcome notification in inbox, got %v", got)
	}
}

func TestAuthHandler_Login_LiveWrongPassword(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, _ := f.request(http.MethodPost, "/auth/login", `{"role":"artist","method":"web2","mode":"live","email":"x@y.com","password":"nope"}`, nil)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if reason, _ := domain.AuthFailure(err); reason != domain.ReasonWrongPassword {
		t.Errorf("expected wrong_password, got %q", reason)
	}
	if f.registry.Len() != 0 {
		t.Error("failed login must not register a session")
	}
}

func TestAuthHandler_Login_RegisterUnknownEmail(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, rec := f.request(http.MethodPost, "/auth/login",
		`{"role":"reveller","method":"web2","mode":"live","email":"new@y.com","password":"anything","register":true}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp loginResponse
	decode(t, rec, &resp)
	if !resp.Created {
		t.Error("expected created=true")
	}
	if _, ok := f.dir.FindByEmail("new@y.com"); !ok {
		t.Error("record not registered")
	}
}

func TestAuthHandler_Login_UnknownEmailWithoutRegisterFails(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, _ := f.request(http.MethodPost, "/auth/login",
		`{"role":"reveller","method":"web2","mode":"live","email":"new@y.com","password":"anything"}`, nil)
	if err := h.Login(c); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if _, ok := f.dir.FindByEmail("new@y.com"); ok {
		t.Error("plain login must never register")
	}
}

func TestAuthHandler_Login_Web3UsesWalletAddress(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, rec := f.request(http.MethodPost, "/auth/login", `{"role":"artist","method":"web3","mode":"live","wallet_address":"0xABC"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp loginResponse
	decode(t, rec, &resp)
	if resp.Session.User.ID != "a1" {
		t.Errorf("expected a1, got %q", resp.Session.User.ID)
	}
}

func TestAuthHandler_Login_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	cases := []struct {
		name string
		body string
	}{
		{"missing mode", `{"role":"artist","method":"web2"}`},
		{"bad method", `{"role":"artist","method":"carrier","mode":"demo"}`},
		{"unknown role", `{"role":"wizard","method":"web2","mode":"demo"}`},
		{"bad email", `{"role":"artist","method":"web2","mode":"live","email":"nope","password":"x"}`},
	}
	for _, tc := range cases {
		c, rec := f.request(http.MethodPost, "/auth/login", tc.body, nil)
		if err := h.Login(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, rec := f.request(http.MethodPost, "/auth/signup", `{"email":"jane@y.com","password":"secret1","role":"venue","name":"Jane's Bar"}`, nil)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp loginResponse
	decode(t, rec, &resp)
	u := resp.Session.User
	if !resp.Created || resp.Token == "" {
		t.Errorf("expected a created session with a token, got %+v", resp)
	}
	if u.Name != "Jane's Bar" || u.Role != domain.RoleVenue || u.IsMock || u.OnboardingComplete {
		t.Errorf("unexpected user: %+v", u)
	}
	if resp.Session.Mode != domain.ModeLive || resp.Route.View != domain.ViewDashboard {
		t.Errorf("unexpected session: %+v", resp.sessionResponse)
	}
	if _, ok := f.registry.Get(resp.Session.ID); !ok {
		t.Error("signup must register the new session")
	}
	got := f.inbox.Drain(resp.Session.ID)
	if len(got) != 1 || got[0].Message != "Account created for Jane's Bar! Please complete your profile." {
		t.Errorf("unexpected notifications: %v", got)
	}
}

func TestAuthHandler_Signup_Conflict(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, _ := f.request(http.MethodPost, "/auth/signup", `{"email":"X@y.com","password":"secret1","role":"venue"}`, nil)
	if err := h.Signup(c); !errors.Is(err, domain.ErrRegistrationConflict) {
		t.Errorf("expected ErrRegistrationConflict, got %v", err)
	}
	if f.registry.Len() != 0 {
		t.Error("failed signup must not open a session")
	}
}

func TestAuthHandler_Signup_ShortPassword(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)

	c, rec := f.request(http.MethodPost, "/auth/signup", `{"email":"jane@y.com","password":"abc","role":"venue"}`, nil)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newFixture(t)
	h := newAuthHandler(f)
	p := f.session(t, demo(domain.RoleArtist))

	c, rec := f.request(http.MethodPost, "/auth/logout", "", p)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if _, ok := f.registry.Get(p.ID()); ok {
		t.Error("session still registered")
	}

	// The token is now dead.
	c, _ = f.request(http.MethodPost, "/auth/logout", "", nil)
	c.Set("sid", p.ID())
	assertHTTPError(t, h.Logout(c), http.StatusUnauthorized)
}
