package domain

import (
	"strings"
	"time"
)

// UserRecord is a directory entry. Demo identities carry IsMock=true and are
// never matched by a live login, even when name and role coincide.
type UserRecord struct {
	ID                 string    `json:"id" bson:"_id"`
	Name               string    `json:"name" bson:"name"`
	Avatar             string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Location           string    `json:"location,omitempty" bson:"location,omitempty"`
	Role               Role      `json:"role" bson:"role"`
	Email              string    `json:"email,omitempty" bson:"email,omitempty"`
	PasswordHash       string    `json:"password_hash,omitempty" bson:"password_hash,omitempty"`
	WalletAddress      string    `json:"wallet_address,omitempty" bson:"wallet_address,omitempty"`
	IsMock             bool      `json:"is_mock" bson:"is_mock"`
	OnboardingComplete bool      `json:"onboarding_complete" bson:"onboarding_complete"`
	Verified           bool      `json:"verified" bson:"verified"`
	Rating             float64   `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
}

// HasEmail reports a case-insensitive match on the stored email. An empty
// email never matches.
func (u UserRecord) HasEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.EqualFold(u.Email, email)
}

// HasWallet reports a case-insensitive match on the stored wallet address.
func (u UserRecord) HasWallet(address string) bool {
	address = strings.TrimSpace(address)
	return address != "" && strings.EqualFold(u.WalletAddress, address)
}

// UserPatch carries a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name               *string  `json:"name,omitempty"`
	Avatar             *string  `json:"avatar,omitempty"`
	Location           *string  `json:"location,omitempty"`
	WalletAddress      *string  `json:"wallet_address,omitempty"`
	OnboardingComplete *bool    `json:"onboarding_complete,omitempty"`
	Verified           *bool    `json:"verified,omitempty"`
	Rating             *float64 `json:"rating,omitempty"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *UserRecord) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.WalletAddress != nil {
		u.WalletAddress = *p.WalletAddress
	}
	if p.OnboardingComplete != nil {
		u.OnboardingComplete = *p.OnboardingComplete
	}
	if p.Verified != nil {
		u.Verified = *p.Verified
	}
	if p.Rating != nil {
		u.Rating = *p.Rating
	}
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Avatar == nil && p.Location == nil && p.WalletAddress == nil &&
		p.OnboardingComplete == nil && p.Verified == nil && p.Rating == nil
}

// EmailLocalPart returns the part of an address before '@'.
func EmailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
