package services

import "github.com/famboard/famboard/models"

// Permission names a capability a membership may hold. Every mutating
// operation funnels its authorization decision through Can.
type Permission string

const (
	PermCreateTasks         Permission = "tasks.create"
	PermAssignTasks         Permission = "tasks.assign"
	PermCreateRewards       Permission = "rewards.create"
	PermManageMembers       Permission = "members.manage"
	PermFulfillClaims       Permission = "claims.fulfill"
	PermDeactivateHousehold Permission = "household.deactivate"
)

// Can reports whether the membership grants the permission. Owners hold every
// capability, admins everything except deactivating the household, and plain
// members only what their per-membership flags grant.
func Can(m *models.Membership, p Permission) bool {
	if m == nil || !m.IsActive {
		return false
	}
	switch m.Role {
	case models.RoleOwner:
		return true
	case models.RoleAdmin:
		return p != PermDeactivateHousehold
	}
	switch p {
	case PermCreateTasks:
		return m.CanCreateTasks
	case PermAssignTasks:
		return m.CanAssignTasks
	case PermCreateRewards:
		return m.CanCreateRewards
	}
	return false
}
