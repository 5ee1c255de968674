package domain

// Stats is the activity summary shown on a profile card.
type Stats struct {
	GigsCompleted int     `json:"gigs_completed" toml:"gigs_completed"`
	ActiveGigs    int     `json:"active_gigs" toml:"active_gigs"`
	Rating        float64 `json:"rating" toml:"rating"`
	ResponseTime  string  `json:"response_time" toml:"response_time"`
}

// Profile is the session-bound view of a user: a role template with the
// directory record laid over it.
type Profile struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Avatar             string   `json:"avatar,omitempty"`
	Location           string   `json:"location,omitempty"`
	Role               Role     `json:"role"`
	Email              string   `json:"email,omitempty"`
	WalletAddress      string   `json:"wallet_address,omitempty"`
	IsMock             bool     `json:"is_mock"`
	OnboardingComplete bool     `json:"onboarding_complete"`
	Verified           bool     `json:"verified"`
	Rating             float64  `json:"rating"`
	Bio                string   `json:"bio,omitempty"`
	CoverImage         string   `json:"cover_image,omitempty"`
	Genres             []string `json:"genres,omitempty"`
	XP                 int      `json:"xp"`
	Level              int      `json:"level"`
	Stats              Stats    `json:"stats"`
}

// HydrateProfile builds a full profile from a role template and a record.
//
// Precedence, record first:
//   - ID, Role, Email, WalletAddress, IsMock, OnboardingComplete and Verified
//     always come from the record.
//   - Name, Avatar and Location come from the record when non-empty, else
//     from the template.
//   - Rating comes from the record when non-zero, else from the template's
//     Stats.Rating.
//   - Bio, CoverImage, Genres, XP, Level and Stats come from the template.
func HydrateProfile(template Profile, rec UserRecord) Profile {
	p := template
	if template.Genres != nil {
		p.Genres = append([]string(nil), template.Genres...)
	}

	p.ID = rec.ID
	p.Role = rec.Role
	p.Email = rec.Email
	p.WalletAddress = rec.WalletAddress
	p.IsMock = rec.IsMock
	p.OnboardingComplete = rec.OnboardingComplete
	p.Verified = rec.Verified

	if rec.Name != "" {
		p.Name = rec.Name
	}
	if rec.Avatar != "" {
		p.Avatar = rec.Avatar
	}
	if rec.Location != "" {
		p.Location = rec.Location
	}
	p.Rating = template.Stats.Rating
	if rec.Rating != 0 {
		p.Rating = rec.Rating
	}
	return p
}
