package domain

type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleAdmin       Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleParticipant, RoleOrganizer, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// Area is a group of routes guarded by a role, one per dashboard.
type Area string

const (
	AreaParticipant Area = "participant"
	AreaOrganizer   Area = "organizer"
	AreaAdmin       Area = "admin"
)

// CanAccess reports whether r may enter area a. Admins may enter every area.
func (r Role) CanAccess(a Area) bool {
	switch r {
	case RoleAdmin:
		return a == AreaAdmin || a == AreaOrganizer || a == AreaParticipant
	case RoleOrganizer:
		return a == AreaOrganizer
	case RoleParticipant:
		return a == AreaParticipant
	default:
		return false
	}
}

// SelfRegistrable reports whether an account may sign up with role r.
func (r Role) SelfRegistrable() bool {
	return r == RoleParticipant || r == RoleOrganizer
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	Username string
	Role     Role
}

// CanManage reports whether the actor may modify an event owned by organizer.
func (a Actor) CanManage(organizer string) bool {
	return a.Role == RoleAdmin || (a.Role == RoleOrganizer && a.Username == organizer)
}
