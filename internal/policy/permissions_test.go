package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionShape(t *testing.T) {
	assert.True(t, Permission("users.view").Valid())
	assert.False(t, Permission("users").Valid())
	assert.False(t, Permission(".view").Valid())
	assert.False(t, Permission("users.").Valid())
}

func TestTeamMemberCheckedAgainstGrantedSet(t *testing.T) {
	granted := NewPermissionSet("users.view", "jobs.edit")

	assert.True(t, HasPermission(RoleTeam, granted, "users.view"))
	assert.False(t, HasPermission(RoleTeam, granted, "users.delete"))
}

func TestLeaderHoldsFullSetImplicitly(t *testing.T) {
	assert.True(t, HasPermission(RoleLeader, nil, "users.delete"))
	assert.True(t, HasPermission(RoleLeader, NewPermissionSet(), "anything.at_all"))
}

func TestOtherRolesNotPermissionGated(t *testing.T) {
	assert.True(t, HasPermission(RolePlayer, nil, "users.view"))
	assert.True(t, HasPermission(RoleAdministrator, nil, "users.view"))
}
