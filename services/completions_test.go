package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famboard/famboard/models"
)

func TestCompleteAssignment(t *testing.T) {
	now := time.Date(2026, 3, 4, 18, 0, 0, 0, time.Local)
	due := time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)

	t.Run("flips status and credits points", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{
			HouseholdID:       household.ID,
			DifficultyMinutes: 25,
			CreatedBy:         owner,
		})
		assignment := seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusPending)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		completion, err := svc.CompleteAssignment(owner, assignment.ID, CompletionInput{Comment: "done"})
		require.NoError(t, err)
		assert.Equal(t, 25, completion.PointsEarned)
		assert.Equal(t, household.ID, completion.HouseholdID)
		require.NotNil(t, completion.AssignmentID)
		assert.Equal(t, assignment.ID, *completion.AssignmentID)

		var got models.Assignment
		require.NoError(t, db.First(&got, assignment.ID).Error)
		assert.Equal(t, models.AssignmentStatusCompleted, got.Status)

		balance, err := AvailablePoints(db, owner, household.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, balance)
	})

	t.Run("overdue assignments still complete at full value", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{
			HouseholdID:       household.ID,
			DifficultyMinutes: 15,
			CreatedBy:         owner,
		})
		assignment := seedAssignment(t, db, task.ID, owner,
			due.AddDate(0, 0, -3), models.AssignmentStatusOverdue)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		completion, err := svc.CompleteAssignment(owner, assignment.ID, CompletionInput{})
		require.NoError(t, err)
		assert.Equal(t, 15, completion.PointsEarned)
	})

	t.Run("second completion is rejected", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		assignment := seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusPending)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		_, err := svc.CompleteAssignment(owner, assignment.ID, CompletionInput{})
		require.NoError(t, err)

		_, err = svc.CompleteAssignment(owner, assignment.ID, CompletionInput{})
		require.ErrorIs(t, err, ErrAlreadyCompleted)

		// Exactly one credit exists.
		var credits int64
		require.NoError(t, db.Model(&models.Completion{}).
			Where("assignment_id = ?", assignment.ID).Count(&credits).Error)
		assert.EqualValues(t, 1, credits)
	})

	t.Run("cancelled assignments cannot be completed", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		assignment := seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusCancelled)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		_, err := svc.CompleteAssignment(owner, assignment.ID, CompletionInput{})
		require.ErrorIs(t, err, ErrAssignmentInactive)
	})

	t.Run("proof required", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{
			HouseholdID:   household.ID,
			RequiresProof: true,
			CreatedBy:     owner,
		})
		assignment := seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusPending)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		_, err := svc.CompleteAssignment(owner, assignment.ID, CompletionInput{})
		require.ErrorIs(t, err, ErrProofRequired)

		completion, err := svc.CompleteAssignment(owner, assignment.ID, CompletionInput{
			PhotoURL: "https://example.com/proof.jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/proof.jpg", completion.PhotoURL)
	})

	t.Run("another household member may complete on behalf", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)
		task := seedTask(t, db, models.Task{
			HouseholdID:       household.ID,
			DifficultyMinutes: 20,
			CreatedBy:         owner,
		})
		assignment := seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusPending)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		completion, err := svc.CompleteAssignment(alice, assignment.ID, CompletionInput{})
		require.NoError(t, err)

		// The credit goes to whoever did the work, not the assignee.
		assert.Equal(t, alice, completion.UserID)
		assert.Equal(t, 20, completion.PointsEarned)

		var got models.Assignment
		require.NoError(t, db.First(&got, assignment.ID).Error)
		assert.Equal(t, models.AssignmentStatusCompleted, got.Status)

		balance, err := AvailablePoints(db, alice, household.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, balance)
	})

	t.Run("outsiders cannot complete", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		stranger := seedUser(t, db, "stranger")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		assignment := seedAssignment(t, db, task.ID, owner, due, models.AssignmentStatusPending)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		_, err := svc.CompleteAssignment(stranger, assignment.ID, CompletionInput{})
		require.ErrorIs(t, err, ErrNotMember)
	})
}

func TestCompleteTask(t *testing.T) {
	now := time.Date(2026, 3, 4, 18, 0, 0, 0, time.Local)

	t.Run("ad hoc completion credits points", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		household := seedHousehold(t, db, owner)
		seedMember(t, db, household.ID, alice, models.RoleMember)
		task := seedTask(t, db, models.Task{
			HouseholdID:       household.ID,
			DifficultyMinutes: 5,
			CreatedBy:         owner,
		})

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		completion, err := svc.CompleteTask(alice, task.ID, CompletionInput{})
		require.NoError(t, err)
		assert.Nil(t, completion.AssignmentID)
		assert.Equal(t, 5, completion.PointsEarned)
	})

	t.Run("inactive task is rejected", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		require.NoError(t, db.Model(task).Update("is_active", false).Error)

		svc := NewCompletions(db, WithCompletionsNow(fixedNow(now)))
		_, err := svc.CompleteTask(owner, task.ID, CompletionInput{})
		require.ErrorIs(t, err, ErrTaskInactive)
	})
}

func TestCompletionHistoryLoadsAssociations(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	household := seedHousehold(t, db, owner)
	task := seedTask(t, db, models.Task{
		HouseholdID: household.ID,
		Title:       "vacuum",
		CreatedBy:   owner,
	})
	seedCompletion(t, db, household.ID, task.ID, owner, 10)

	var completions []models.Completion
	require.NoError(t, db.Model(&models.Completion{}).
		Preload("Task").Preload("User").
		Where("household_id = ?", household.ID).
		Find(&completions).Error)
	require.Len(t, completions, 1)
	require.NotNil(t, completions[0].Task)
	assert.Equal(t, "vacuum", completions[0].Task.Title)
	require.NotNil(t, completions[0].User)
	assert.Equal(t, "owner", completions[0].User.Username)
}

func TestUpdateComment(t *testing.T) {
	completedAt := time.Date(2026, 3, 4, 18, 0, 0, 0, time.Local)

	seed := func(t *testing.T) (*Completions, uint, uint, func(time.Time)) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})

		completion := seedCompletion(t, db, household.ID, task.ID, owner, 10)
		require.NoError(t, db.Model(completion).Update("completed_at", completedAt).Error)

		current := completedAt
		svc := NewCompletions(db, WithCompletionsNow(func() time.Time { return current }))
		return svc, owner, completion.ID, func(t time.Time) { current = t }
	}

	t.Run("within the grace window", func(t *testing.T) {
		svc, owner, completionID, setNow := seed(t)
		setNow(completedAt.Add(23 * time.Hour))

		updated, err := svc.UpdateComment(owner, completionID, "forgot the sink")
		require.NoError(t, err)
		assert.Equal(t, "forgot the sink", updated.Comment)
	})

	t.Run("after the grace window", func(t *testing.T) {
		svc, owner, completionID, setNow := seed(t)
		setNow(completedAt.Add(25 * time.Hour))

		_, err := svc.UpdateComment(owner, completionID, "too late")
		require.ErrorIs(t, err, ErrEditWindowClosed)
	})

	t.Run("only the completer may edit", func(t *testing.T) {
		svc, _, completionID, _ := seed(t)

		_, err := svc.UpdateComment(9999, completionID, "not mine")
		require.ErrorIs(t, err, ErrPermissionDenied)
	})
}
