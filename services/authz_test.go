package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/famboard/famboard/models"
)

func TestCan(t *testing.T) {
	owner := &models.Membership{Role: models.RoleOwner, IsActive: true}
	admin := &models.Membership{Role: models.RoleAdmin, IsActive: true}
	member := &models.Membership{Role: models.RoleMember, IsActive: true}
	trusted := &models.Membership{
		Role:             models.RoleMember,
		CanCreateTasks:   true,
		CanAssignTasks:   true,
		CanCreateRewards: true,
		IsActive:         true,
	}

	t.Run("owner can do everything", func(t *testing.T) {
		for _, p := range []Permission{
			PermCreateTasks, PermAssignTasks, PermCreateRewards,
			PermManageMembers, PermFulfillClaims, PermDeactivateHousehold,
		} {
			assert.True(t, Can(owner, p), "permission %v", p)
		}
	})

	t.Run("admin can do everything except deactivate", func(t *testing.T) {
		for _, p := range []Permission{
			PermCreateTasks, PermAssignTasks, PermCreateRewards,
			PermManageMembers, PermFulfillClaims,
		} {
			assert.True(t, Can(admin, p), "permission %v", p)
		}
		assert.False(t, Can(admin, PermDeactivateHousehold))
	})

	t.Run("member follows the permission flags", func(t *testing.T) {
		assert.False(t, Can(member, PermCreateTasks))
		assert.False(t, Can(member, PermAssignTasks))
		assert.False(t, Can(member, PermCreateRewards))
		assert.False(t, Can(member, PermManageMembers))
		assert.False(t, Can(member, PermFulfillClaims))

		assert.True(t, Can(trusted, PermCreateTasks))
		assert.True(t, Can(trusted, PermAssignTasks))
		assert.True(t, Can(trusted, PermCreateRewards))
		assert.False(t, Can(trusted, PermManageMembers))
		assert.False(t, Can(trusted, PermFulfillClaims))
	})

	t.Run("nil or inactive membership has no permissions", func(t *testing.T) {
		assert.False(t, Can(nil, PermCreateTasks))
		assert.False(t, Can(&models.Membership{Role: models.RoleOwner}, PermCreateTasks))
	})
}
