package policy

import "strings"

// This table is the single source of truth for role-to-route mapping. The
// edge gate and the client route guard both import it; keeping one copy is
// what prevents the two layers from disagreeing and redirect-looping.

// DashboardRoot is the bare dashboard path shared by every authenticated role.
const DashboardRoot = "/dashboard"

// sharedPaths are accessible to every authenticated role regardless of the
// per-role table, and are checked before it.
var sharedPaths = []string{
	DashboardRoot,
	"/dashboard/notifications",
}

// homeRoutes maps each role to its canonical landing route.
var homeRoutes = map[Role]string{
	RolePlayer:              "/dashboard/player",
	RoleCoach:               "/dashboard/coach",
	RoleClub:                "/dashboard/club",
	RoleSpecialist:          "/dashboard/specialist",
	RoleAdministrator:       "/dashboard/admin",
	RoleTechnicalDirector:   "/dashboard/technical-director",
	RoleSportsDirector:      "/dashboard/sports-director",
	RoleExecutiveDirector:   "/dashboard/executive-director",
	RoleSecretary:           "/dashboard/secretary",
	RoleTeam:                "/dashboard/team",
	RoleLeader:              "/dashboard/leader",
	RoleSportsAdministrator: "/dashboard/sports-admin",
	RoleApplicant:           "/dashboard/applicant",
	RoleJobPublisher:        "/dashboard/job-publisher",
}

// extraPrefixes lists additional accessible prefixes beyond the home prefix.
// Most roles have none (full access within their own namespace only).
var extraPrefixes = map[Role][]string{
	RoleAdministrator: {"/dashboard/reports"},
	RoleLeader:        {"/dashboard/team"},
	RoleJobPublisher:  {"/dashboard/jobs-management"},
}

// IsSharedPath reports whether the path is accessible to every authenticated
// role. The bare dashboard root matches exactly; other shared paths match as
// prefixes.
func IsSharedPath(path string) bool {
	if path == DashboardRoot || path == DashboardRoot+"/" {
		return true
	}
	for _, shared := range sharedPaths[1:] {
		if pathUnder(path, shared) {
			return true
		}
	}
	return false
}

// CanAccess reports whether the role may enter the path. Shared paths are
// allowed for any role; otherwise the path must fall under one of the role's
// registered prefixes.
func CanAccess(role Role, path string) bool {
	if IsSharedPath(path) {
		return true
	}
	if home, ok := homeRoutes[role]; ok && pathUnder(path, home) {
		return true
	}
	for _, prefix := range extraPrefixes[role] {
		if pathUnder(path, prefix) {
			return true
		}
	}
	return false
}

// HomeRouteFor returns the canonical redirect target for a role. Unknown
// roles land on the shared dashboard root.
func HomeRouteFor(role Role) string {
	if home, ok := homeRoutes[role]; ok {
		return home
	}
	return DashboardRoot
}

// pathUnder matches prefix boundaries so /dashboard/player does not admit
// /dashboard/playerx.
func pathUnder(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
