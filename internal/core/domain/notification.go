package domain

import "time"

// Severity grades a user-facing notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a one-way message to the user of a session.
type Notification struct {
	SessionID string    `json:"session_id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	At        time.Time `json:"at"`
}
