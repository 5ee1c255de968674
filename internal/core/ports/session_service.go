package ports

import (
	"context"

	"github.com/kalakrut/portal/internal/core/domain"
)

// LoginRequest is the DTO passed to session resolution. Credentials are only
// consulted for live web2 logins; web3 logins take the address from the
// WalletConnector.
type LoginRequest struct {
	Role     domain.Role        `validate:"required"`
	Method   domain.LoginMethod `validate:"required,oneof=web2 web3"`
	Mode     domain.LoginMode   `validate:"required,oneof=demo live"`
	Email    string             `validate:"omitempty,email"`
	Password string
}

// RegistrationInput carries an explicit signup.
type RegistrationInput struct {
	Email         string      `validate:"required,email"`
	Password      string      `validate:"required"`
	Role          domain.Role `validate:"required"`
	Name          string
	Location      string
	WalletAddress string
}

// SessionResolver authenticates login attempts against the directory.
type SessionResolver interface {
	// Resolve never creates records.
	Resolve(ctx context.Context, req LoginRequest, wallet WalletConnector) (domain.Profile, error)
	// LoginOrRegister registers a live web2 identity when no record carries the
	// email, then resolves against it. The bool reports whether a record was
	// created; a created record stays even if ctx is cancelled afterwards.
	LoginOrRegister(ctx context.Context, req LoginRequest, wallet WalletConnector) (domain.Profile, bool, error)
	Register(ctx context.Context, in RegistrationInput) (domain.UserRecord, error)
	// Restore rebuilds the profile for a user id still present in the directory.
	Restore(userID string) (domain.Profile, error)
	Hydrate(rec domain.UserRecord) domain.Profile
}

// ModerationSubject identifies the user a new case is opened against.
type ModerationSubject struct {
	UserID         string
	UserName       string
	UserRole       domain.Role
	ViolationType  string
	ContentSnippet string
}

// ModerationService owns moderation cases. Transitions from a state that does
// not allow them are no-ops reported through the bool.
type ModerationService interface {
	// Open returns the user's existing open case instead of creating a second one.
	Open(sub ModerationSubject) (domain.ModerationCase, bool)
	Appeal(caseID, userID, reason string) (domain.ModerationCase, bool)
	// Resolve fails with domain.ErrPermissionDenied unless actor can manage all
	// contracts.
	Resolve(actor domain.CapabilitySet, caseID string, decision domain.ModerationDecision) (domain.ModerationCase, bool, error)
	Get(caseID string) (domain.ModerationCase, bool)
	OpenCaseFor(userID string) (domain.ModerationCase, bool)
	List() []domain.ModerationCase
}
