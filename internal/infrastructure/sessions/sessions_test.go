package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
	"github.com/kalakrut/portal/internal/core/service"
)

type seeds struct{}

func (seeds) Users() ([]ports.SeedUser, error) {
	return []ports.SeedUser{
		{Record: domain.UserRecord{ID: "demo_artist", Name: "Luna", Role: domain.RoleArtist, IsMock: true}},
		{Record: domain.UserRecord{ID: "demo_venue", Name: "Warehouse", Role: domain.RoleVenue, IsMock: true}},
	}, nil
}

func (seeds) Templates() (map[domain.Role]domain.Profile, error) { return nil, nil }

func newPortal(t *testing.T, role domain.Role) *service.Portal {
	t.Helper()
	dir := service.NewDirectory(nil, zerolog.Nop())
	hasher := service.NewBcryptHasher(4)
	if err := dir.Bootstrap(context.Background(), seeds{}, hasher); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	p := service.NewPortal(service.PortalDeps{
		Resolver:   service.NewResolver(dir, hasher, nil, false, zerolog.Nop()),
		Directory:  dir,
		Moderation: service.NewModerationService(zerolog.Nop()),
		Log:        zerolog.Nop(),
	}, nil)
	if role != "" {
		req := ports.LoginRequest{Role: role, Method: domain.MethodWeb2, Mode: domain.ModeDemo}
		if _, err := p.Login(context.Background(), req); err != nil {
			t.Fatalf("login failed: %v", err)
		}
	}
	return p
}

func TestRegistry_PutGetDelete(t *testing.T) {
	r := NewRegistry()
	p := newPortal(t, domain.RoleArtist)

	r.Put(p)
	if got, ok := r.Get(p.ID()); !ok || got != p {
		t.Fatal("stored portal not returned")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}

	r.Delete(p.ID())
	if _, ok := r.Get(p.ID()); ok {
		t.Error("deleted portal still returned")
	}
}

func TestRegistry_ForUser(t *testing.T) {
	r := NewRegistry()
	a, b := newPortal(t, domain.RoleArtist), newPortal(t, domain.RoleArtist)
	v := newPortal(t, domain.RoleVenue)
	out := newPortal(t, "")
	for _, p := range []*service.Portal{a, b, v, out} {
		r.Put(p)
	}

	got := r.ForUser("demo_artist")
	if len(got) != 2 {
		t.Fatalf("expected 2 artist portals, got %d", len(got))
	}
	for _, p := range got {
		if p != a && p != b {
			t.Errorf("unexpected portal %s", p.ID())
		}
	}
}

func TestRegistry_SweepDropsIdle(t *testing.T) {
	r := NewRegistry()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	stale, fresh := newPortal(t, domain.RoleArtist), newPortal(t, domain.RoleVenue)
	r.Put(stale)
	clock = clock.Add(20 * time.Minute)
	r.Put(fresh)
	clock = clock.Add(15 * time.Minute)

	removed := r.Sweep(30 * time.Minute)
	if len(removed) != 1 || removed[0] != stale.ID() {
		t.Fatalf("expected only the stale portal removed, got %v", removed)
	}
	if _, ok := r.Get(fresh.ID()); !ok {
		t.Error("fresh portal swept")
	}
}

func TestRegistry_GetRefreshesLastSeen(t *testing.T) {
	r := NewRegistry()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	p := newPortal(t, domain.RoleArtist)
	r.Put(p)
	clock = clock.Add(25 * time.Minute)
	r.Get(p.ID())
	clock = clock.Add(25 * time.Minute)

	if removed := r.Sweep(30 * time.Minute); len(removed) != 0 {
		t.Errorf("recently used portal swept: %v", removed)
	}
}

func TestInbox_OnlyCollectsForOpenSessions(t *testing.T) {
	in := NewInbox(0)
	ctx := context.Background()

	_ = in.Deliver(ctx, domain.Notification{SessionID: "closed", Message: "lost"})
	if got := in.Drain("closed"); got != nil {
		t.Errorf("unopened session collected %v", got)
	}

	in.Open("s1")
	_ = in.Deliver(ctx, domain.Notification{SessionID: "s1", Message: "hello"})
	got := in.Drain("s1")
	if len(got) != 1 || got[0].Message != "hello" {
		t.Fatalf("unexpected drain: %v", got)
	}
	if again := in.Drain("s1"); len(again) != 0 {
		t.Errorf("drain must clear the queue, got %v", again)
	}

	_ = in.Deliver(ctx, domain.Notification{SessionID: "s1", Message: "still open"})
	if got := in.Drain("s1"); len(got) != 1 {
		t.Errorf("session must stay open after drain, got %v", got)
	}
}

func TestInbox_TrimsOldest(t *testing.T) {
	in := NewInbox(2)
	in.Open("s1")
	for _, m := range []string{"a", "b", "c"} {
		_ = in.Deliver(context.Background(), domain.Notification{SessionID: "s1", Message: m})
	}

	got := in.Drain("s1")
	if len(got) != 2 || got[0].Message != "b" || got[1].Message != "c" {
		t.Errorf("expected [b c], got %v", got)
	}
}

func TestInbox_Forget(t *testing.T) {
	in := NewInbox(5)
	in.Open("s1")
	_ = in.Deliver(context.Background(), domain.Notification{SessionID: "s1", Message: "x"})

	in.Forget("s1")
	_ = in.Deliver(context.Background(), domain.Notification{SessionID: "s1", Message: "y"})
	if got := in.Drain("s1"); got != nil {
		t.Errorf("forgotten session collected %v", got)
	}
}
