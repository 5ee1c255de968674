package domain

import "encoding/json"

// Capability is a single named permission derived from a role.
type Capability uint16

const (
	CapGovernDao Capability = 1 << iota
	CapVetoProposals
	CapRatifyProposals
	CapManageAllContracts
	CapOnlyManageOwnContracts
	CapAccessTreasury
	CapAccessHr
	CapAccessSystemConfig
	CapAdministerPortal
)

// capabilityNames is ordered; it drives Names and JSON output.
var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapGovernDao, "canGovernDao"},
	{CapVetoProposals, "canVetoProposals"},
	{CapRatifyProposals, "canRatifyProposals"},
	{CapManageAllContracts, "canManageAllContracts"},
	{CapOnlyManageOwnContracts, "canOnlyManageOwnContracts"},
	{CapAccessTreasury, "canAccessTreasury"},
	{CapAccessHr, "canAccessHr"},
	{CapAccessSystemConfig, "canAccessSystemConfig"},
	{CapAdministerPortal, "canAdministerPortal"},
}

// String returns the flag name, e.g. "canAccessTreasury".
func (c Capability) String() string {
	for _, cn := range capabilityNames {
		if cn.cap == c {
			return cn.name
		}
	}
	return "unknown"
}

// CapabilitySet is a bitset of capabilities.
type CapabilitySet uint16

// NewCapabilitySet builds a set from individual capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

var roleCapabilities = map[Role]CapabilitySet{
	RoleSystemAdminLive: NewCapabilitySet(
		CapGovernDao, CapVetoProposals, CapRatifyProposals, CapManageAllContracts,
		CapAccessTreasury, CapAccessHr, CapAccessSystemConfig, CapAdministerPortal,
	),
	RoleAdmin: NewCapabilitySet(
		CapGovernDao, CapRatifyProposals, CapManageAllContracts,
		CapAccessTreasury, CapAccessHr, CapAdministerPortal,
	),
	RoleDaoGovernor: NewCapabilitySet(
		CapGovernDao, CapRatifyProposals, CapManageAllContracts, CapAccessTreasury,
	),
	RoleDaoMember: NewCapabilitySet(CapOnlyManageOwnContracts),
}

// EvaluateCapabilities maps a role to its capability set. Unknown roles and
// roles without entries get the empty set.
func EvaluateCapabilities(r Role) CapabilitySet {
	return roleCapabilities[r]
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

// HasAny reports whether at least one of caps is in the set.
func (s CapabilitySet) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Names lists the granted flags in canonical order.
func (s CapabilitySet) Names() []string {
	var out []string
	for _, cn := range capabilityNames {
		if s.Has(cn.cap) {
			out = append(out, cn.name)
		}
	}
	return out
}

// Flags expands the set into every known flag with its value.
func (s CapabilitySet) Flags() map[string]bool {
	out := make(map[string]bool, len(capabilityNames))
	for _, cn := range capabilityNames {
		out[cn.name] = s.Has(cn.cap)
	}
	return out
}

// MarshalJSON renders the set as an object of boolean flags.
func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Flags())
}

// ParseCapability resolves a flag name back to its Capability.
func ParseCapability(name string) (Capability, bool) {
	for _, cn := range capabilityNames {
		if cn.name == name {
			return cn.cap, true
		}
	}
	return 0, false
}
