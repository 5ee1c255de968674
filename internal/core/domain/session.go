package domain

import "time"

// LoginMethod selects the credential family used for a login attempt.
type LoginMethod string

const (
	MethodWeb2 LoginMethod = "web2"
	MethodWeb3 LoginMethod = "web3"
)

// LoginMode selects between seeded demo identities and registered ones.
type LoginMode string

const (
	ModeDemo LoginMode = "demo"
	ModeLive LoginMode = "live"
)

// Session wraps the resolved user plus ephemeral UI state. It is created on
// login and discarded on logout.
type Session struct {
	ID                string      `json:"id"`
	User              Profile     `json:"user"`
	Mode              LoginMode   `json:"mode"`
	Method            LoginMethod `json:"method"`
	IsBlocked         bool        `json:"is_blocked"`
	BlockCaseID       string      `json:"block_case_id,omitempty"`
	SelectedProfileID string      `json:"selected_profile_id,omitempty"`
	CurrentView       View        `json:"current_view"`
	StartedAt         time.Time   `json:"started_at"`
}

// Capabilities evaluates the session user's role.
func (s *Session) Capabilities() CapabilitySet {
	if s == nil {
		return 0
	}
	return EvaluateCapabilities(s.User.Role)
}
