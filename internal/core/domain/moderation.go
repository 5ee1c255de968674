package domain

import "time"

// ModerationStatus is the lifecycle state of a moderation case.
type ModerationStatus string

const (
	StatusBlocked           ModerationStatus = "blocked"
	StatusAppealPending     ModerationStatus = "appeal_pending"
	StatusResolvedUnblocked ModerationStatus = "resolved_unblocked"
	StatusResolvedBanUpheld ModerationStatus = "resolved_ban_upheld"
)

// moderationTransitions defines the allowed case transitions.
var moderationTransitions = map[ModerationStatus][]ModerationStatus{
	StatusBlocked:       {StatusAppealPending},
	StatusAppealPending: {StatusResolvedUnblocked, StatusResolvedBanUpheld},
}

var moderationLabels = map[ModerationStatus]string{
	StatusBlocked:           "Blocked",
	StatusAppealPending:     "Appeal Pending",
	StatusResolvedUnblocked: "Resolved - Unblocked",
	StatusResolvedBanUpheld: "Resolved - Ban Upheld",
}

// CanTransitionTo reports whether a case may move from s to next. Callers
// treat a disallowed move as a no-op, never as an error.
func (s ModerationStatus) CanTransitionTo(next ModerationStatus) bool {
	for _, allowed := range moderationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Open reports whether the case still restricts its user.
func (s ModerationStatus) Open() bool {
	return s == StatusBlocked || s == StatusAppealPending
}

func (s ModerationStatus) Label() string {
	if l, ok := moderationLabels[s]; ok {
		return l
	}
	return string(s)
}

// ModerationDecision is an administrator's ruling on an appeal.
type ModerationDecision string

const (
	DecisionUnblock ModerationDecision = "unblock"
	DecisionReject  ModerationDecision = "reject"
)

// Status maps a decision to the resolved state it produces.
func (d ModerationDecision) Status() (ModerationStatus, bool) {
	switch d {
	case DecisionUnblock:
		return StatusResolvedUnblocked, true
	case DecisionReject:
		return StatusResolvedBanUpheld, true
	}
	return "", false
}

const (
	DefaultViolationType  = "Automated Flag (Zero Tolerance)"
	DefaultContentSnippet = "User content triggered global moderation filter."
)

// ModerationCase tracks one block and its appeal.
type ModerationCase struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	UserName       string           `json:"user_name"`
	UserRole       Role             `json:"user_role"`
	ViolationType  string           `json:"violation_type"`
	ContentSnippet string           `json:"content_snippet"`
	Status         ModerationStatus `json:"status"`
	AppealReason   string           `json:"appeal_reason,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
