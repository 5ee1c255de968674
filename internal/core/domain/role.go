package domain

import "strings"

// Role is the kind of actor a directory entry represents.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleSystemAdminLive Role = "system_admin_live"
	RoleArtist          Role = "artist"
	RoleVenue           Role = "venue"
	RoleSponsor         Role = "sponsor"
	RoleReveller        Role = "reveller"
	RoleOrganizer       Role = "organizer"
	RoleDaoMember       Role = "dao_member"
	RoleServiceProvider Role = "service_provider"
	RoleDaoGovernor     Role = "dao_governor"
)

// roleLabels holds the display names shown to end users.
var roleLabels = map[Role]string{
	RoleAdmin:           "Admin",
	RoleSystemAdminLive: "System Admin (Live)",
	RoleArtist:          "Artist",
	RoleVenue:           "Venue",
	RoleSponsor:         "Sponsor",
	RoleReveller:        "Reveller",
	RoleOrganizer:       "Organizer",
	RoleDaoMember:       "DAO Member",
	RoleServiceProvider: "Service Provider",
	RoleDaoGovernor:     "DAO Governor",
}

// AllRoles returns every known role in a stable order.
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleSystemAdminLive,
		RoleArtist,
		RoleVenue,
		RoleSponsor,
		RoleReveller,
		RoleOrganizer,
		RoleDaoMember,
		RoleServiceProvider,
		RoleDaoGovernor,
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the human readable role name, or the raw value for unknown roles.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// ParseRole accepts either the role key ("dao_member") or its label
// ("DAO Member"), case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for r, label := range roleLabels {
		if strings.EqualFold(s, string(r)) || strings.EqualFold(s, label) {
			return r, true
		}
	}
	return "", false
}
