package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

var adminCaps = domain.EvaluateCapabilities(domain.RoleAdmin)

func openCase(t *testing.T, s *ModerationService, userID string) domain.ModerationCase {
	t.Helper()
	c, created := s.Open(ports.ModerationSubject{UserID: userID, UserName: "Luna", UserRole: domain.RoleArtist})
	if !created {
		t.Fatalf("expected a new case for %s", userID)
	}
	return c
}

func TestModerationService_Open_Defaults(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	c := openCase(t, s, "a1")

	if c.Status != domain.StatusBlocked {
		t.Errorf("expected blocked, got %s", c.Status)
	}
	if !strings.HasPrefix(c.ID, "MOD-") {
		t.Errorf("unexpected case id %q", c.ID)
	}
	if c.ViolationType != domain.DefaultViolationType || c.ContentSnippet != domain.DefaultContentSnippet {
		t.Errorf("expected default violation fields, got %+v", c)
	}
}

func TestModerationService_Open_AtMostOneOpenCase(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	first := openCase(t, s, "a1")

	again, created := s.Open(ports.ModerationSubject{UserID: "a1", ViolationType: "Spam"})
	if created {
		t.Error("second open case must not be created")
	}
	if again.ID != first.ID {
		t.Errorf("expected existing case %s, got %s", first.ID, again.ID)
	}
	if len(s.List()) != 1 {
		t.Errorf("expected 1 case, got %d", len(s.List()))
	}
}

func TestModerationService_Appeal(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	c := openCase(t, s, "a1")

	if _, ok := s.Appeal(c.ID, "a1", "   "); ok {
		t.Error("blank reason must be rejected")
	}
	if _, ok := s.Appeal(c.ID, "someone-else", "please"); ok {
		t.Error("only the blocked user may appeal")
	}

	got, ok := s.Appeal(c.ID, "a1", "It was a mistake")
	if !ok {
		t.Fatal("expected appeal to be accepted")
	}
	if got.Status != domain.StatusAppealPending || got.AppealReason != "It was a mistake" {
		t.Errorf("unexpected case after appeal: %+v", got)
	}
}

func TestModerationService_Appeal_NotBlockedIsNoop(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	c := openCase(t, s, "a1")
	s.Appeal(c.ID, "a1", "first")

	got, ok := s.Appeal(c.ID, "a1", "second")
	if ok {
		t.Error("appeal on a pending case must be a no-op")
	}
	if got.AppealReason != "first" || got.Status != domain.StatusAppealPending {
		t.Errorf("case changed by no-op appeal: %+v", got)
	}
}

func TestModerationService_Resolve_RequiresAdministrativeCapability(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	c := openCase(t, s, "a1")
	s.Appeal(c.ID, "a1", "please")

	_, _, err := s.Resolve(domain.EvaluateCapabilities(domain.RoleDaoMember), c.ID, domain.DecisionUnblock)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
	got, _ := s.Get(c.ID)
	if got.Status != domain.StatusAppealPending {
		t.Errorf("denied resolve changed the case: %s", got.Status)
	}
}

func TestModerationService_Resolve_OnlyFromAppealPending(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	c := openCase(t, s, "a1")

	_, changed, err := s.Resolve(adminCaps, c.ID, domain.DecisionUnblock)
	if err != nil || changed {
		t.Errorf("resolving a blocked case must be a silent no-op, changed=%v err=%v", changed, err)
	}

	s.Appeal(c.ID, "a1", "please")
	got, changed, err := s.Resolve(adminCaps, c.ID, domain.DecisionReject)
	if err != nil || !changed {
		t.Fatalf("expected resolve, changed=%v err=%v", changed, err)
	}
	if got.Status != domain.StatusResolvedBanUpheld {
		t.Errorf("expected ban upheld, got %s", got.Status)
	}

	_, changed, _ = s.Resolve(adminCaps, c.ID, domain.DecisionUnblock)
	if changed {
		t.Error("resolved cases are terminal")
	}
}

func TestModerationService_Resolve_UnknownCase(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	if _, _, err := s.Resolve(adminCaps, "MOD-NOPE", domain.DecisionUnblock); !errors.Is(err, domain.ErrCaseNotFound) {
		t.Errorf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestModerationService_NewCaseAfterResolution(t *testing.T) {
	s := NewModerationService(zerolog.Nop())
	c := openCase(t, s, "a1")
	s.Appeal(c.ID, "a1", "please")
	s.Resolve(adminCaps, c.ID, domain.DecisionReject)

	if _, open := s.OpenCaseFor("a1"); open {
		t.Error("resolved case must not count as open")
	}
	next := openCase(t, s, "a1")
	if next.ID == c.ID {
		t.Error("a new violation must open an independent case")
	}
}
