package policy

import "strings"

// Permission is a fine-grained grant of the form "module.action", e.g.
// "users.view". Only the team and leader roles carry permission sets; every
// other role is gated purely by the route table.
type Permission string

// Valid reports whether the permission has the module.action shape.
func (p Permission) Valid() bool {
	module, action, ok := strings.Cut(string(p), ".")
	return ok && module != "" && action != ""
}

// PermissionSet holds the permissions granted to a team member.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the permission.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasPermission decides intra-dashboard feature access. Leaders implicitly
// hold the full permission set; team members are checked against their
// granted set; all other roles are not permission-gated.
func HasPermission(role Role, granted PermissionSet, p Permission) bool {
	switch role {
	case RoleLeader:
		return true
	case RoleTeam:
		return granted.Has(p)
	default:
		return true
	}
}
