package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// PortalDeps are the collaborators shared by every Portal.
type PortalDeps struct {
	Resolver   ports.SessionResolver
	Directory  ports.UserDirectory
	Moderation ports.ModerationService
	Router     *ViewRouter
	Notifier   ports.Notifier
	Log        zerolog.Logger
}

// Portal owns a single logical user session: who is logged in, which view is
// current and whether moderation has blocked the session. At most one session
// is current at a time; logging in replaces it.
//
// Authentication and registration failures are reported to the Notifier as
// well as returned.
type Portal struct {
	id     string
	deps   PortalDeps
	wallet ports.WalletConnector
	nav    *Navigator
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	session *domain.Session
}

// NewPortal creates a logged-out portal. wallet may be nil when only web2
// logins are expected.
func NewPortal(deps PortalDeps, wallet ports.WalletConnector) *Portal {
	if deps.Router == nil {
		deps.Router = NewViewRouter()
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	id := uuid.NewString()
	return &Portal{
		id:     id,
		deps:   deps,
		wallet: wallet,
		nav:    NewNavigator(domain.ViewHome),
		log:    deps.Log.With().Str("portal_id", id).Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ID identifies the portal instance; it doubles as the session id.
func (p *Portal) ID() string { return p.id }

// Login resolves req and starts a new session. It never registers.
func (p *Portal) Login(ctx context.Context, req ports.LoginRequest) (domain.Session, error) {
	profile, err := p.deps.Resolver.Resolve(ctx, req, p.wallet)
	if err != nil {
		p.notify(AuthFailureMessage(err), domain.SeverityError)
		return domain.Session{}, err
	}

	s := p.start(profile, req.Mode, req.Method)
	p.notify(fmt.Sprintf("Welcome back, %s!", profile.Name), domain.SeveritySuccess)
	return s, nil
}

// LoginOrRegister is Login that registers unknown live web2 emails first.
func (p *Portal) LoginOrRegister(ctx context.Context, req ports.LoginRequest) (domain.Session, bool, error) {
	profile, created, err := p.deps.Resolver.LoginOrRegister(ctx, req, p.wallet)
	if err != nil {
		p.notify(AuthFailureMessage(err), domain.SeverityError)
		return domain.Session{}, created, err
	}

	s := p.start(profile, req.Mode, req.Method)
	if created {
		p.notify(fmt.Sprintf("Account created for %s!", profile.Name), domain.SeveritySuccess)
	} else {
		p.notify(fmt.Sprintf("Welcome back, %s!", profile.Name), domain.SeveritySuccess)
	}
	return s, created, nil
}

// Signup registers a live identity and logs it in with a web2 session.
func (p *Portal) Signup(ctx context.Context, in ports.RegistrationInput) (domain.Session, error) {
	rec, err := p.deps.Resolver.Register(ctx, in)
	switch {
	case errors.Is(err, domain.ErrRegistrationConflict):
		p.notify("Registration Failed: An account with this email already exists.", domain.SeverityError)
		return domain.Session{}, err
	case errors.Is(err, domain.ErrInvalidLoginRequest):
		p.notify("Registration Failed: Please check the details you entered.", domain.SeverityError)
		return domain.Session{}, err
	case err != nil:
		p.notify("Error creating account.", domain.SeverityError)
		return domain.Session{}, err
	}

	profile := p.deps.Resolver.Hydrate(rec)
	s := p.start(profile, domain.ModeLive, domain.MethodWeb2)
	p.notify(fmt.Sprintf("Account created for %s! Please complete your profile.", profile.Name), domain.SeveritySuccess)
	return s, nil
}

// Restore re-opens a session for a user id that is still in the directory.
func (p *Portal) Restore(userID string) (domain.Session, error) {
	profile, err := p.deps.Resolver.Restore(userID)
	if err != nil {
		return domain.Session{}, err
	}
	mode := domain.ModeLive
	if profile.IsMock {
		mode = domain.ModeDemo
	}
	return p.start(profile, mode, domain.MethodWeb2), nil
}

// Logout discards the session and all of its ephemeral state.
func (p *Portal) Logout(ctx context.Context) {
	p.mu.Lock()
	had := p.session != nil
	p.session = nil
	p.mu.Unlock()

	p.nav.Reset(domain.ViewHome)
	if p.wallet != nil {
		p.wallet.Disconnect(ctx)
	}
	if had {
		p.notify("You have been logged out.", domain.SeveritySuccess)
	}
}

// Session returns a copy of the current session.
func (p *Portal) Session() (domain.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return domain.Session{}, false
	}
	s := *p.session
	s.CurrentView = p.nav.Current()
	return s, true
}

// Capabilities evaluates the current user's role; logged out is the empty set.
func (p *Portal) Capabilities() domain.CapabilitySet {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.session.Capabilities()
}

// Navigate replaces the current view and returns what will render.
func (p *Portal) Navigate(view domain.View) domain.Route {
	p.nav.Go(view)
	return p.Route()
}

// BeginNavigation starts a transition that may be superseded before it settles.
func (p *Portal) BeginNavigation(view domain.View) Transition {
	return p.nav.Begin(view)
}

// Route resolves the current view against the session.
func (p *Portal) Route() domain.Route {
	p.mu.Lock()
	var s *domain.Session
	if p.session != nil {
		cp := *p.session
		s = &cp
	}
	p.mu.Unlock()

	return p.deps.Router.Resolve(s, p.nav.Current())
}

// ViewProfile selects another user's profile and shows it.
func (p *Portal) ViewProfile(userID string) (domain.Route, error) {
	if _, ok := p.deps.Directory.FindByID(userID); !ok {
		return domain.Route{}, domain.ErrUserNotFound
	}

	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return domain.Route{}, domain.ErrNoSession
	}
	p.session.SelectedProfileID = userID
	p.mu.Unlock()

	return p.Navigate(domain.ViewProfile), nil
}

// UpdateProfile merges patch into the session user's directory record and
// refreshes the session profile.
func (p *Portal) UpdateProfile(ctx context.Context, patch domain.UserPatch) (domain.Profile, error) {
	userID, err := p.currentUserID()
	if err != nil {
		return domain.Profile{}, err
	}

	rec, found, err := p.deps.Directory.Update(ctx, userID, patch)
	if err != nil {
		return domain.Profile{}, err
	}
	if !found {
		return domain.Profile{}, domain.ErrUserNotFound
	}

	profile := p.deps.Resolver.Hydrate(rec)
	p.mu.Lock()
	if p.session != nil && p.session.User.ID == userID {
		p.session.User = profile
	}
	p.mu.Unlock()
	return profile, nil
}

// FlagViolation blocks the session and opens a moderation case. Empty
// arguments fall back to the automated zero-tolerance flag.
func (p *Portal) FlagViolation(violationType, snippet string) (domain.ModerationCase, error) {
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return domain.ModerationCase{}, domain.ErrNoSession
	}
	user := p.session.User
	p.mu.Unlock()

	c, _ := p.deps.Moderation.Open(ports.ModerationSubject{
		UserID:         user.ID,
		UserName:       user.Name,
		UserRole:       user.Role,
		ViolationType:  violationType,
		ContentSnippet: snippet,
	})

	p.mu.Lock()
	if p.session != nil && p.session.User.ID == user.ID {
		p.session.IsBlocked = true
		p.session.BlockCaseID = c.ID
	}
	p.mu.Unlock()

	p.notify("Account suspended due to policy violation.", domain.SeverityError)
	return c, nil
}

// Appeal files reason against the session's blocking case. It reports false
// when the session is not blocked, the reason is blank, or the case has moved
// past Blocked.
func (p *Portal) Appeal(reason string) bool {
	p.mu.Lock()
	if p.session == nil || !p.session.IsBlocked || p.session.BlockCaseID == "" {
		p.mu.Unlock()
		return false
	}
	caseID, userID := p.session.BlockCaseID, p.session.User.ID
	p.mu.Unlock()

	if _, ok := p.deps.Moderation.Appeal(caseID, userID, reason); !ok {
		return false
	}
	p.notify("Appeal submitted to moderation team.", domain.SeveritySuccess)
	return true
}

// ResolveCase rules on an appealed case. The session must hold the
// administrative capability and must not itself be blocked. The bool is false
// when the case was not in a resolvable state.
func (p *Portal) ResolveCase(caseID string, decision domain.ModerationDecision) (domain.ModerationCase, bool, error) {
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return domain.ModerationCase{}, false, domain.ErrNoSession
	}
	if p.session.IsBlocked {
		p.mu.Unlock()
		return domain.ModerationCase{}, false, domain.ErrSessionBlocked
	}
	caps := p.session.Capabilities()
	p.mu.Unlock()

	c, changed, err := p.deps.Moderation.Resolve(caps, caseID, decision)
	if err != nil || !changed {
		return c, changed, err
	}

	p.ApplyResolution(c)
	label := "Unblock"
	if decision == domain.DecisionReject {
		label = "Reject"
	}
	p.notify(fmt.Sprintf("Case %s updated: %s", c.ID, label), domain.SeverityInfo)
	return c, true, nil
}

// ApplyResolution clears the block when c unblocks this session's own user.
// Cases for any other user leave the session untouched.
func (p *Portal) ApplyResolution(c domain.ModerationCase) bool {
	if c.Status != domain.StatusResolvedUnblocked {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil || !p.session.IsBlocked || p.session.User.ID != c.UserID {
		return false
	}
	p.session.IsBlocked = false
	p.session.BlockCaseID = ""
	p.log.Info().Str("case_id", c.ID).Msg("session unblocked")
	return true
}

// PurgeDemoUsers removes every seeded demo identity from the directory.
func (p *Portal) PurgeDemoUsers(ctx context.Context) (int, error) {
	if !p.Capabilities().Has(domain.CapAccessSystemConfig) {
		return 0, domain.ErrPermissionDenied
	}
	n, err := p.deps.Directory.Remove(ctx, func(u domain.UserRecord) bool { return u.IsMock })
	if err != nil {
		return 0, err
	}
	p.notify(fmt.Sprintf("Removed %d demo accounts.", n), domain.SeverityInfo)
	return n, nil
}

func (p *Portal) start(profile domain.Profile, mode domain.LoginMode, method domain.LoginMethod) domain.Session {
	s := &domain.Session{
		ID:        p.id,
		User:      profile,
		Mode:      mode,
		Method:    method,
		StartedAt: p.now(),
	}
	p.nav.Reset(domain.ViewDashboard)

	p.mu.Lock()
	p.session = s
	cp := *s
	p.mu.Unlock()

	cp.CurrentView = domain.ViewDashboard
	return cp
}

func (p *Portal) currentUserID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return "", domain.ErrNoSession
	}
	return p.session.User.ID, nil
}

func (p *Portal) notify(msg string, sev domain.Severity) {
	p.deps.Notifier.Notify(domain.Notification{
		SessionID: p.id,
		Message:   msg,
		Severity:  sev,
		At:        p.now(),
	})
}

// AuthFailureMessage renders a login error for end users.
func AuthFailureMessage(err error) string {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		switch ae.Reason {
		case domain.ReasonWrongPassword:
			return "Invalid Credentials: The password you entered is incorrect."
		case domain.ReasonRoleMismatch:
			return fmt.Sprintf("Role Mismatch: Your account is a %s, not a %s.", ae.Actual.Label(), ae.Requested.Label())
		case domain.ReasonMissingCredentials:
			return "Login Failed: Email and password are required."
		case domain.ReasonWalletUnavailable:
			return "Wallet Connection Failed: No wallet address is available."
		}
	}
	if errors.Is(err, domain.ErrInvalidLoginRequest) {
		return "Login Failed: The login request is incomplete."
	}
	return "Login Failed: No account matches those credentials."
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notification) {}
