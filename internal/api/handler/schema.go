package handler

import (
	"time"

	"github.com/kalakrut/portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type loginRequest struct {
	Role          string `json:"role"           validate:"required"`
	Method        string `json:"method"         validate:"required,oneof=web2 web3"`
	Mode          string `json:"mode"           validate:"required,oneof=demo live"`
	Email         string `json:"email"          validate:"omitempty,email"`
	Password      string `json:"password"`
	WalletAddress string `json:"wallet_address"`
	// Register creates a live web2 account for an unknown email.
	Register bool `json:"register"`
}

type signupRequest struct {
	Email         string `json:"email"          validate:"required,email"`
	Password      string `json:"password"       validate:"required,min=6"`
	Role          string `json:"role"           validate:"required"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	WalletAddress string `json:"wallet_address"`
}

type navigateRequest struct {
	View string `json:"view" validate:"required"`
}

type violationRequest struct {
	ViolationType  string `json:"violation_type"`
	ContentSnippet string `json:"content_snippet"`
}

type appealRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type resolveCaseRequest struct {
	Decision string `json:"decision" validate:"required,oneof=unblock reject"`
}

type profilePatchRequest struct {
	Name               *string  `json:"name"                validate:"omitempty,min=1"`
	Avatar             *string  `json:"avatar"              validate:"omitempty,url"`
	Location           *string  `json:"location"`
	WalletAddress      *string  `json:"wallet_address"`
	OnboardingComplete *bool    `json:"onboarding_complete"`
	Rating             *float64 `json:"rating"              validate:"omitempty,gte=0,lte=5"`
}

// --- Response types ---

type userResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Avatar             string  `json:"avatar,omitempty"`
	Location           string  `json:"location,omitempty"`
	Role               string  `json:"role"`
	Email              string  `json:"email,omitempty"`
	WalletAddress      string  `json:"wallet_address,omitempty"`
	IsMock             bool    `json:"is_mock"`
	OnboardingComplete bool    `json:"onboarding_complete"`
	Verified           bool    `json:"verified"`
	Rating             float64 `json:"rating"`
	CreatedAt          string  `json:"created_at,omitempty"`
}

type sessionResponse struct {
	Session      domain.Session  `json:"session"`
	Route        domain.Route    `json:"route"`
	Capabilities map[string]bool `json:"capabilities"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Created   bool   `json:"created"`
	sessionResponse
}

type appealResponse struct {
	Accepted bool                   `json:"accepted"`
	Case     *domain.ModerationCase `json:"case,omitempty"`
}

type resolveCaseResponse struct {
	Changed   bool                  `json:"changed"`
	Case      domain.ModerationCase `json:"case"`
	Unblocked int                   `json:"unblocked_sessions"`
}

type capabilitiesResponse struct {
	Role         string          `json:"role"`
	Label        string          `json:"label"`
	Capabilities map[string]bool `json:"capabilities"`
}

type purgeResponse struct {
	Removed int `json:"removed"`
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

func toUserResponse(u domain.UserRecord) userResponse {
	resp := userResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Avatar:             u.Avatar,
		Location:           u.Location,
		Role:               string(u.Role),
		Email:              u.Email,
		WalletAddress:      u.WalletAddress,
		IsMock:             u.IsMock,
		OnboardingComplete: u.OnboardingComplete,
		Verified:           u.Verified,
		Rating:             u.Rating,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func toPatch(req profilePatchRequest) domain.UserPatch {
	return domain.UserPatch{
		Name:               req.Name,
		Avatar:             req.Avatar,
		Location:           req.Location,
		WalletAddress:      req.WalletAddress,
		OnboardingComplete: req.OnboardingComplete,
		Rating:             req.Rating,
	}
}
