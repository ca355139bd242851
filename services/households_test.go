package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famboard/famboard/models"
)

func TestHouseholdsCreate(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")

	svc := NewHouseholds(db)
	household, err := svc.Create(owner, "the smiths")
	require.NoError(t, err)
	assert.Equal(t, "the smiths", household.Name)
	assert.NotEmpty(t, household.InviteCode)
	assert.Equal(t, owner, household.OwnerID)

	membership, err := ActiveMembership(db, owner, household.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, membership.Role)
	assert.True(t, membership.CanCreateTasks)
	assert.True(t, membership.CanAssignTasks)
	assert.True(t, membership.CanCreateRewards)
}

func TestHouseholdsJoin(t *testing.T) {
	t.Run("by invite code", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)

		svc := NewHouseholds(db)
		membership, err := svc.Join(alice, household.InviteCode)
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, membership.Role)
		assert.False(t, membership.CanCreateTasks)
	})

	t.Run("unknown code", func(t *testing.T) {
		db := newTestDB(t)
		alice := seedUser(t, db, "alice")

		svc := NewHouseholds(db)
		_, err := svc.Join(alice, "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("double join", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)

		svc := NewHouseholds(db)
		_, err := svc.Join(alice, household.InviteCode)
		require.NoError(t, err)

		_, err = svc.Join(alice, household.InviteCode)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("rejoining after leaving creates a fresh membership", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)

		svc := NewHouseholds(db)
		_, err := svc.Join(alice, household.InviteCode)
		require.NoError(t, err)
		require.NoError(t, svc.Leave(alice, household.ID))

		_, err = svc.Join(alice, household.InviteCode)
		require.NoError(t, err)
	})

	t.Run("inactive household", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		require.NoError(t, db.Model(household).Update("is_active", false).Error)

		svc := NewHouseholds(db)
		_, err := svc.Join(alice, household.InviteCode)
		require.ErrorIs(t, err, ErrHouseholdInactive)
	})
}

func TestHouseholdsLeave(t *testing.T) {
	t.Run("owner cannot leave", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)

		svc := NewHouseholds(db)
		require.ErrorIs(t, svc.Leave(owner, household.ID), ErrOwnerCannotLeave)
	})

	t.Run("member leaves", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)

		svc := NewHouseholds(db)
		require.NoError(t, svc.Leave(alice, household.ID))

		_, err := ActiveMembership(db, alice, household.ID)
		require.ErrorIs(t, err, ErrNotMember)
	})
}

func TestHouseholdsDeactivate(t *testing.T) {
	t.Run("cascades to every dependent", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)

		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		reward := seedReward(t, db, household.ID, owner, 10, 1)
		due := time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)
		open := seedAssignment(t, db, task.ID, alice, due, models.AssignmentStatusPending)
		done := seedAssignment(t, db, task.ID, alice, due, models.AssignmentStatusCompleted)

		svc := NewHouseholds(db)
		require.NoError(t, svc.Deactivate(owner, household.ID))

		var gotHousehold models.Household
		require.NoError(t, db.First(&gotHousehold, household.ID).Error)
		assert.False(t, gotHousehold.IsActive)

		var activeMembers int64
		require.NoError(t, db.Model(&models.Membership{}).
			Where("household_id = ? AND is_active = ?", household.ID, true).
			Count(&activeMembers).Error)
		assert.EqualValues(t, 0, activeMembers)

		var gotTask models.Task
		require.NoError(t, db.First(&gotTask, task.ID).Error)
		assert.False(t, gotTask.IsActive)

		var gotReward models.Reward
		require.NoError(t, db.First(&gotReward, reward.ID).Error)
		assert.False(t, gotReward.IsActive)

		var gotOpen models.Assignment
		require.NoError(t, db.First(&gotOpen, open.ID).Error)
		assert.Equal(t, models.AssignmentStatusCancelled, gotOpen.Status)

		// Completed history is untouched.
		var gotDone models.Assignment
		require.NoError(t, db.First(&gotDone, done.ID).Error)
		assert.Equal(t, models.AssignmentStatusCompleted, gotDone.Status)
	})

	t.Run("admin cannot deactivate", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		admin := seedUser(t, db, "admin")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, admin, models.RoleAdmin)

		svc := NewHouseholds(db)
		require.ErrorIs(t, svc.Deactivate(admin, household.ID), ErrPermissionDenied)
	})
}
