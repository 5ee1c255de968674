package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationConflict = errors.New("registration conflict")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidLoginRequest  = errors.New("invalid login request")
	ErrUserNotFound         = errors.New("user not found")
	ErrWalletUnavailable    = errors.New("wallet connection unavailable")
	ErrSessionBlocked       = errors.New("session is blocked")
	ErrNoSession            = errors.New("no active session")
	ErrCaseNotFound         = errors.New("moderation case not found")
)

// AuthFailureReason narrows down why a login did not resolve.
type AuthFailureReason string

const (
	ReasonMissingCredentials AuthFailureReason = "missing_credentials"
	ReasonWalletUnavailable  AuthFailureReason = "wallet_unavailable"
	ReasonNotFound           AuthFailureReason = "not_found"
	ReasonWrongPassword      AuthFailureReason = "wrong_password"
	ReasonRoleMismatch       AuthFailureReason = "role_mismatch"
)

// AuthError is returned by session resolution. It always unwraps to
// ErrAuthenticationFailed.
type AuthError struct {
	Reason AuthFailureReason
	// Requested and Actual are set for ReasonRoleMismatch.
	Requested Role
	Actual    Role
}

func (e *AuthError) Error() string {
	if e.Reason == ReasonRoleMismatch {
		return fmt.Sprintf("%s: %s (account is %s, not %s)", ErrAuthenticationFailed, e.Reason, e.Actual, e.Requested)
	}
	return fmt.Sprintf("%s: %s", ErrAuthenticationFailed, e.Reason)
}

func (e *AuthError) Unwrap() error { return ErrAuthenticationFailed }

// AuthFailure returns the reason carried by err, if any.
func AuthFailure(err error) (AuthFailureReason, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Reason, true
	}
	return "", false
}
