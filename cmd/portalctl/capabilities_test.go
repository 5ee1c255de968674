package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCapabilitiesCmd_SingleRole(t *testing.T) {
	var out bytes.Buffer
	cmd := newCapabilitiesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"DAO Governor"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "dao_governor") || !strings.Contains(got, "canManageAllContracts") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if strings.Contains(got, "(artist)") {
		t.Error("only the requested role must be listed")
	}
}

func TestCapabilitiesCmd_AllRoles(t *testing.T) {
	var out bytes.Buffer
	cmd := newCapabilitiesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"(artist)", "(admin)", "(dao_member)", "(reveller)"} {
		if !strings.Contains(out.String(), key) {
			t.Errorf("missing role %s", key)
		}
	}
}

func TestCapabilitiesCmd_UnknownRole(t *testing.T) {
	cmd := newCapabilitiesCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"wizard"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
