package domain

import (
	"encoding/json"
	"testing"
)

func TestEvaluateCapabilities_RoleTable(t *testing.T) {
	cases := []struct {
		role Role
		want []Capability
	}{
		{RoleSystemAdminLive, []Capability{
			CapGovernDao, CapVetoProposals, CapRatifyProposals, CapManageAllContracts,
			CapAccessTreasury, CapAccessHr, CapAccessSystemConfig, CapAdministerPortal,
		}},
		{RoleAdmin, []Capability{
			CapGovernDao, CapRatifyProposals, CapManageAllContracts,
			CapAccessTreasury, CapAccessHr, CapAdministerPortal,
		}},
		{RoleDaoGovernor, []Capability{CapGovernDao, CapRatifyProposals, CapManageAllContracts, CapAccessTreasury}},
		{RoleDaoMember, []Capability{CapOnlyManageOwnContracts}},
		{RoleArtist, nil},
		{RoleVenue, nil},
		{RoleSponsor, nil},
		{RoleReveller, nil},
		{RoleOrganizer, nil},
		{RoleServiceProvider, nil},
		{Role("ghost"), nil},
	}

	for _, tc := range cases {
		got := EvaluateCapabilities(tc.role)
		if want := NewCapabilitySet(tc.want...); got != want {
			t.Errorf("role %q: expected %v, got %v", tc.role, want.Names(), got.Names())
		}
	}
}

func TestEvaluateCapabilities_AdminCannotVetoOrConfigure(t *testing.T) {
	caps := EvaluateCapabilities(RoleAdmin)
	if caps.Has(CapVetoProposals) {
		t.Error("admin must not veto proposals")
	}
	if caps.Has(CapAccessSystemConfig) {
		t.Error("admin must not access system config")
	}
}

func TestEvaluateCapabilities_OwnContractsOnlyForDaoMember(t *testing.T) {
	for _, r := range AllRoles() {
		has := EvaluateCapabilities(r).Has(CapOnlyManageOwnContracts)
		if has != (r == RoleDaoMember) {
			t.Errorf("role %q: canOnlyManageOwnContracts=%v", r, has)
		}
	}
}

func TestCapabilitySet_HasAny(t *testing.T) {
	s := NewCapabilitySet(CapAccessHr)
	if !s.HasAny(CapAccessTreasury, CapAccessHr) {
		t.Error("expected HasAny to match CapAccessHr")
	}
	if s.HasAny(CapAccessTreasury) {
		t.Error("unexpected match on CapAccessTreasury")
	}
	if s.HasAny() {
		t.Error("HasAny with no arguments must be false")
	}
}

func TestCapabilitySet_FlagsListsEveryCapability(t *testing.T) {
	flags := CapabilitySet(0).Flags()
	if len(flags) != len(capabilityNames) {
		t.Fatalf("expected %d flags, got %d", len(capabilityNames), len(flags))
	}
	for name, v := range flags {
		if v {
			t.Errorf("empty set reports %s=true", name)
		}
	}
}

func TestCapabilitySet_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(EvaluateCapabilities(RoleDaoMember))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]bool
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got["canOnlyManageOwnContracts"] {
		t.Error("expected canOnlyManageOwnContracts=true")
	}
	if got["canGovernDao"] {
		t.Error("expected canGovernDao=false")
	}
}

func TestParseCapability(t *testing.T) {
	c, ok := ParseCapability("canAccessTreasury")
	if !ok || c != CapAccessTreasury {
		t.Errorf("expected CapAccessTreasury, got %v ok=%v", c, ok)
	}
	if _, ok := ParseCapability("canFly"); ok {
		t.Error("unknown flag must not parse")
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"dao_member", RoleDaoMember, true},
		{"DAO Member", RoleDaoMember, true},
		{"  system admin (live) ", RoleSystemAdminLive, true},
		{"ARTIST", RoleArtist, true},
		{"superuser", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRole(%q): expected (%q, %v), got (%q, %v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestRole_Label(t *testing.T) {
	if got := RoleServiceProvider.Label(); got != "Service Provider" {
		t.Errorf("expected %q, got %q", "Service Provider", got)
	}
	if got := Role("ghost").Label(); got != "ghost" {
		t.Errorf("unknown role label should be raw value, got %q", got)
	}
}
