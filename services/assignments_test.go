package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famboard/famboard/models"
)

func TestAssignmentsCreate(t *testing.T) {
	due := time.Date(2026, 3, 10, 15, 30, 0, 0, time.Local)

	t.Run("owner assigns a member", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})

		svc := NewAssignments(db)
		assignment, err := svc.Create(owner, task.ID, alice, due)
		require.NoError(t, err)
		assert.Equal(t, alice, assignment.AssigneeID)
		assert.Equal(t, owner, assignment.AssignedBy)
		assert.Equal(t, models.AssignmentStatusPending, assignment.Status)

		// Due date is normalised to midnight.
		want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
		assert.True(t, assignment.DueDate.Equal(want))
	})

	t.Run("plain member lacks the capability", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})

		svc := NewAssignments(db)
		_, err := svc.Create(alice, task.ID, alice, due)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("assignee must be an active member", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		stranger := seedUser(t, db, "stranger")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})

		svc := NewAssignments(db)
		_, err := svc.Create(owner, task.ID, stranger, due)
		require.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("duplicate pending assignment rejected", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})

		svc := NewAssignments(db)
		_, err := svc.Create(owner, task.ID, owner, due)
		require.NoError(t, err)

		_, err = svc.Create(owner, task.ID, owner, due.AddDate(0, 0, 1))
		require.ErrorIs(t, err, ErrDuplicatePending)
	})

	t.Run("inactive task rejected", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		require.NoError(t, db.Model(task).Update("is_active", false).Error)

		svc := NewAssignments(db)
		_, err := svc.Create(owner, task.ID, owner, due)
		require.ErrorIs(t, err, ErrTaskInactive)
	})
}

func TestAssignmentsCancel(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

	t.Run("assignee cancels their own assignment", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		assignment := seedAssignment(t, db, task.ID, alice, due, models.AssignmentStatusPending)

		svc := NewAssignments(db)
		require.NoError(t, svc.Cancel(alice, assignment.ID))

		var got models.Assignment
		require.NoError(t, db.First(&got, assignment.ID).Error)
		assert.Equal(t, models.AssignmentStatusCancelled, got.Status)
		assert.False(t, got.IsActive)
	})

	t.Run("other members need the assign capability", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		bob := seedUser(t, db, "bob")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)
		seedMember(t, db, household.ID, bob, models.RoleMember)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		assignment := seedAssignment(t, db, task.ID, alice, due, models.AssignmentStatusPending)

		svc := NewAssignments(db)
		require.ErrorIs(t, svc.Cancel(bob, assignment.ID), ErrPermissionDenied)
		require.NoError(t, svc.Cancel(owner, assignment.ID))
	})

	t.Run("completed assignments stay completed", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		assignment := seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusCompleted)

		svc := NewAssignments(db)
		require.ErrorIs(t, svc.Cancel(owner, assignment.ID), ErrAlreadyCompleted)
	})
}
