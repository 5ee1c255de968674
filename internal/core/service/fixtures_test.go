package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub collaborators
// ---------------------------------------------------------------------------

type stubSeeds struct {
	users     []ports.SeedUser
	templates map[domain.Role]domain.Profile
	err       error
}

func (s *stubSeeds) Users() ([]ports.SeedUser, error) { return s.users, s.err }

func (s *stubSeeds) Templates() (map[domain.Role]domain.Profile, error) { return s.templates, nil }

type stubWallet struct {
	address      string
	err          error
	connects     int
	disconnected bool
}

func (w *stubWallet) Connect(context.Context) (string, error) {
	w.connects++
	return w.address, w.err
}

func (w *stubWallet) Disconnect(context.Context) { w.disconnected = true }

type recordingNotifier struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (n *recordingNotifier) Notify(msg domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, msg)
}

func (n *recordingNotifier) last() domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.got) == 0 {
		return domain.Notification{}
	}
	return n.got[len(n.got)-1]
}

type memStore struct {
	mu      sync.Mutex
	loaded  []domain.UserRecord
	saves   [][]domain.UserRecord
	saveErr error
}

func (s *memStore) Load(context.Context) ([]domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.UserRecord(nil), s.loaded...), nil
}

func (s *memStore) Save(_ context.Context, recs []domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, recs)
	return nil
}

func (s *memStore) lastSave() []domain.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const (
	artistWallet = "0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa"
	venueWallet  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

var testHasher = NewBcryptHasher(bcrypt.MinCost)

func testSeeds() *stubSeeds {
	return &stubSeeds{
		users: []ports.SeedUser{
			{Record: domain.UserRecord{ID: "u_owner", Name: "Kala Owner", Role: domain.RoleSystemAdminLive, Email: "owner@kalakrut.test"}, Password: "live"},
			{Record: domain.UserRecord{ID: "a1", Name: "Luna", Role: domain.RoleArtist, Email: "x@y.com", WalletAddress: artistWallet}, Password: "p"},
			{Record: domain.UserRecord{ID: "u_venue", Name: "The Warehouse", Role: domain.RoleVenue, Email: "venue@live.test", WalletAddress: venueWallet}, Password: "live"},
			{Record: domain.UserRecord{ID: "u_admin_tag", Name: "Tagged Admin", Role: domain.RoleAdmin, Email: "tagged@live.test"}, Password: "live"},
			{Record: domain.UserRecord{ID: "demo_artist", Name: "Demo Artist", Role: domain.RoleArtist, Email: "artist@demo.com", IsMock: true}, Password: "demo"},
			{Record: domain.UserRecord{ID: "demo_admin", Name: "Demo Admin", Role: domain.RoleAdmin, Email: "admin@demo.com", IsMock: true}, Password: "demo"},
			{Record: domain.UserRecord{ID: "demo_governor", Name: "Governor Alice", Role: domain.RoleDaoGovernor, IsMock: true}},
			{Record: domain.UserRecord{ID: "demo_member", Name: "Leo Valdez", Role: domain.RoleDaoMember, IsMock: true}},
			{Record: domain.UserRecord{ID: "demo_reveller", Name: "Alex Fan", Role: domain.RoleReveller, IsMock: true}},
		},
		templates: map[domain.Role]domain.Profile{
			domain.RoleArtist:   {Name: "Luna Eclipse", Bio: "Ambient techno.", Level: 2, Stats: domain.Stats{Rating: 4.9}},
			domain.RoleReveller: {Name: "Alex Fan", Bio: "Here for the music.", Level: 2},
		},
	}
}

func newTestDirectory(t *testing.T, store ports.DirectoryStore) *Directory {
	t.Helper()
	d := NewDirectory(store, zerolog.Nop())
	if err := d.Bootstrap(context.Background(), testSeeds(), testHasher); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	return d
}

func newTestResolver(t *testing.T, autoRegister bool) (*Resolver, *Directory) {
	t.Helper()
	dir := newTestDirectory(t, nil)
	templates, _ := testSeeds().Templates()
	return NewResolver(dir, testHasher, templates, autoRegister, zerolog.Nop()), dir
}

type portalFixture struct {
	deps       PortalDeps
	dir        *Directory
	moderation *ModerationService
	notes      *recordingNotifier
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	resolver, dir := newTestResolver(t, true)
	mod := NewModerationService(zerolog.Nop())
	notes := &recordingNotifier{}
	return &portalFixture{
		deps: PortalDeps{
			Resolver:   resolver,
			Directory:  dir,
			Moderation: mod,
			Router:     NewViewRouter(),
			Notifier:   notes,
			Log:        zerolog.Nop(),
		},
		dir:        dir,
		moderation: mod,
		notes:      notes,
	}
}

func (f *portalFixture) login(t *testing.T, req ports.LoginRequest) *Portal {
	t.Helper()
	p := NewPortal(f.deps, nil)
	if _, err := p.Login(context.Background(), req); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return p
}

func demoLogin(role domain.Role) ports.LoginRequest {
	return ports.LoginRequest{Role: role, Method: domain.MethodWeb2, Mode: domain.ModeDemo}
}

func liveLogin(role domain.Role, email, password string) ports.LoginRequest {
	return ports.LoginRequest{Role: role, Method: domain.MethodWeb2, Mode: domain.ModeLive, Email: email, Password: password}
}
