package policy

// Role is one value from the platform's closed role set. Roles are immutable
// for the lifetime of a token; a role change requires a new token.
type Role string

const (
	RolePlayer              Role = "player"
	RoleCoach               Role = "coach"
	RoleClub                Role = "club"
	RoleSpecialist          Role = "specialist"
	RoleAdministrator       Role = "administrator"
	RoleTechnicalDirector   Role = "technical_director"
	RoleSportsDirector      Role = "sports_director"
	RoleExecutiveDirector   Role = "executive_director"
	RoleSecretary           Role = "secretary"
	RoleTeam                Role = "team"
	RoleLeader              Role = "leader"
	RoleSportsAdministrator Role = "sports_administrator"
	RoleApplicant           Role = "applicant"
	RoleJobPublisher        Role = "job_publisher"
)

// AllRoles lists every known role.
var AllRoles = []Role{
	RolePlayer,
	RoleCoach,
	RoleClub,
	RoleSpecialist,
	RoleAdministrator,
	RoleTechnicalDirector,
	RoleSportsDirector,
	RoleExecutiveDirector,
	RoleSecretary,
	RoleTeam,
	RoleLeader,
	RoleSportsAdministrator,
	RoleApplicant,
	RoleJobPublisher,
}

// Known reports whether the role belongs to the closed set.
func (r Role) Known() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
