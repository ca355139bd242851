package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famboard/famboard/models"
)

func TestSelectNextAssignee(t *testing.T) {
	t.Run("fewest assignments wins", func(t *testing.T) {
		candidates := []uint{1, 2, 3, 4}
		counts := map[uint]int64{1: 2, 2: 2, 3: 1, 4: 3}

		id, ok := selectNextAssignee(candidates, counts)
		require.True(t, ok)
		assert.Equal(t, uint(3), id)
	})

	t.Run("tie broken by lowest user id", func(t *testing.T) {
		candidates := []uint{7, 2, 5}
		counts := map[uint]int64{7: 1, 2: 1, 5: 1}

		id, ok := selectNextAssignee(candidates, counts)
		require.True(t, ok)
		assert.Equal(t, uint(2), id)
	})

	t.Run("candidate with no history counts as zero", func(t *testing.T) {
		candidates := []uint{1, 2}
		counts := map[uint]int64{1: 5}

		id, ok := selectNextAssignee(candidates, counts)
		require.True(t, ok)
		assert.Equal(t, uint(2), id)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, ok := selectNextAssignee(nil, map[uint]int64{})
		assert.False(t, ok)
	})
}

func TestNextAssignee(t *testing.T) {
	t.Run("cycle list overrides household members", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		bob := seedUser(t, db, "bob")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)
		seedMember(t, db, household.ID, bob, models.RoleMember)

		task := seedTask(t, db, models.Task{
			HouseholdID: household.ID,
			IsCyclic:    true,
			AutoAssign:  true,
			CreatedBy:   owner,
		})
		task.SetCycleUserIDs([]uint{alice, bob})
		require.NoError(t, db.Save(task).Error)

		id, ok, err := NextAssignee(db, task)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, alice, id)
	})

	t.Run("rotation advances as assignments accumulate", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)

		task := seedTask(t, db, models.Task{
			HouseholdID: household.ID,
			IsCyclic:    true,
			AutoAssign:  true,
			CreatedBy:   owner,
		})

		due := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
		seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusCompleted)

		id, ok, err := NextAssignee(db, task)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, alice, id)
	})

	t.Run("cancelled assignments do not count", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)

		task := seedTask(t, db, models.Task{
			HouseholdID: household.ID,
			IsCyclic:    true,
			AutoAssign:  true,
			CreatedBy:   owner,
		})

		due := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
		seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusCancelled)

		// With owner's only assignment cancelled both candidates sit at zero,
		// so the lowest id (the owner) is picked again.
		id, ok, err := NextAssignee(db, task)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, owner, id)
	})

	t.Run("no eligible members", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)

		require.NoError(t, db.Model(&models.Membership{}).
			Where("household_id = ?", household.ID).
			Update("is_active", false).Error)

		task := seedTask(t, db, models.Task{
			HouseholdID: household.ID,
			IsCyclic:    true,
			AutoAssign:  true,
			CreatedBy:   owner,
		})

		_, ok, err := NextAssignee(db, task)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
