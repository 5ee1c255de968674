// Package seed reads the initial roster and role templates from TOML. The
// default file is embedded; SEED_FILE points at a replacement.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

//go:embed default.toml
var defaultSeed []byte

var ErrInvalidSeed = errors.New("invalid seed data")

type seedFile struct {
	Base      templateEntry            `toml:"base"`
	Templates map[string]templateEntry `toml:"templates"`
	Users     []userEntry              `toml:"users"`
}

type templateEntry struct {
	Name       string        `toml:"name"`
	Avatar     string        `toml:"avatar"`
	CoverImage string        `toml:"cover_image"`
	Bio        string        `toml:"bio"`
	Location   string        `toml:"location"`
	Genres     []string      `toml:"genres"`
	Verified   bool          `toml:"verified"`
	XP         int           `toml:"xp"`
	Level      int           `toml:"level"`
	Stats      *domain.Stats `toml:"stats"`
}

type userEntry struct {
	ID                 string  `toml:"id"`
	Name               string  `toml:"name"`
	Avatar             string  `toml:"avatar"`
	Location           string  `toml:"location"`
	Role               string  `toml:"role"`
	Email              string  `toml:"email"`
	Password           string  `toml:"password"`
	WalletAddress      string  `toml:"wallet_address"`
	IsMock             bool    `toml:"is_mock"`
	OnboardingComplete bool    `toml:"onboarding_complete"`
	Verified           bool    `toml:"verified"`
	Rating             float64 `toml:"rating"`
}

// Provider implements ports.SeedProvider over parsed seed data.
type Provider struct {
	users     []ports.SeedUser
	templates map[domain.Role]domain.Profile
}

var _ ports.SeedProvider = (*Provider)(nil)

// Default returns the embedded seed.
func Default() (*Provider, error) {
	return Parse(defaultSeed)
}

// Load reads path, or the embedded seed when path is empty.
func Load(path string) (*Provider, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied seed path
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes seed TOML. Unknown keys, unknown roles and duplicate ids are
// rejected.
func Parse(data []byte) (*Provider, error) {
	var f seedFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidSeed, strings.Join(keys, ", "))
	}

	templates := make(map[domain.Role]domain.Profile, len(f.Templates))
	for key, t := range f.Templates {
		role, ok := domain.ParseRole(key)
		if !ok {
			return nil, fmt.Errorf("%w: template for unknown role %q", ErrInvalidSeed, key)
		}
		templates[role] = f.Base.merge(t).profile(role)
	}

	seen := make(map[string]struct{}, len(f.Users))
	users := make([]ports.SeedUser, 0, len(f.Users))
	for i, u := range f.Users {
		role, ok := domain.ParseRole(u.Role)
		if !ok {
			return nil, fmt.Errorf("%w: user %d has unknown role %q", ErrInvalidSeed, i, u.Role)
		}
		if u.ID != "" {
			if _, dup := seen[u.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate user id %q", ErrInvalidSeed, u.ID)
			}
			seen[u.ID] = struct{}{}
		}
		users = append(users, ports.SeedUser{
			Record: domain.UserRecord{
				ID:                 u.ID,
				Name:               u.Name,
				Avatar:             u.Avatar,
				Location:           u.Location,
				Role:               role,
				Email:              u.Email,
				WalletAddress:      u.WalletAddress,
				IsMock:             u.IsMock,
				OnboardingComplete: u.OnboardingComplete,
				Verified:           u.Verified,
				Rating:             u.Rating,
			},
			Password: u.Password,
		})
	}

	return &Provider{users: users, templates: templates}, nil
}

func (p *Provider) Users() ([]ports.SeedUser, error) {
	return append([]ports.SeedUser(nil), p.users...), nil
}

func (p *Provider) Templates() (map[domain.Role]domain.Profile, error) {
	out := make(map[domain.Role]domain.Profile, len(p.templates))
	for r, t := range p.templates {
		out[r] = t
	}
	return out, nil
}

// merge lays t over base: non-zero fields of t win.
func (base templateEntry) merge(t templateEntry) templateEntry {
	out := base
	if t.Name != "" {
		out.Name = t.Name
	}
	if t.Avatar != "" {
		out.Avatar = t.Avatar
	}
	if t.CoverImage != "" {
		out.CoverImage = t.CoverImage
	}
	if t.Bio != "" {
		out.Bio = t.Bio
	}
	if t.Location != "" {
		out.Location = t.Location
	}
	if t.Genres != nil {
		out.Genres = t.Genres
	}
	if t.Verified {
		out.Verified = true
	}
	if t.XP != 0 {
		out.XP = t.XP
	}
	if t.Level != 0 {
		out.Level = t.Level
	}
	if t.Stats != nil {
		out.Stats = t.Stats
	}
	return out
}

func (t templateEntry) profile(role domain.Role) domain.Profile {
	p := domain.Profile{
		Name:       t.Name,
		Avatar:     t.Avatar,
		Location:   t.Location,
		Role:       role,
		Verified:   t.Verified,
		Bio:        t.Bio,
		CoverImage: t.CoverImage,
		Genres:     append([]string(nil), t.Genres...),
		XP:         t.XP,
		Level:      t.Level,
	}
	if t.Stats != nil {
		p.Stats = *t.Stats
	}
	return p
}
