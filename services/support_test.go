package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/testutil"
	"github.com/famboard/famboard/utils"
)

func seedUser(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()
	user := models.User{Username: username, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedHousehold(t *testing.T, db *gorm.DB, ownerID uint) *models.Household {
	t.Helper()
	household := models.Household{
		Name:       fmt.Sprintf("household-%d", ownerID),
		InviteCode: utils.NewInviteCode(),
		OwnerID:    ownerID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&household).Error)

	membership := models.Membership{
		HouseholdID:      household.ID,
		UserID:           ownerID,
		Role:             models.RoleOwner,
		CanCreateTasks:   true,
		CanAssignTasks:   true,
		CanCreateRewards: true,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&membership).Error)
	return &household
}

func seedMember(t *testing.T, db *gorm.DB, householdID, userID uint, role string) *models.Membership {
	t.Helper()
	membership := models.Membership{
		HouseholdID: householdID,
		UserID:      userID,
		Role:        role,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&membership).Error)
	return &membership
}

func seedTask(t *testing.T, db *gorm.DB, task models.Task) *models.Task {
	t.Helper()
	if task.Title == "" {
		task.Title = "dishes"
	}
	if task.Frequency == "" {
		task.Frequency = models.FrequencyDaily
	}
	if task.DifficultyMinutes == 0 {
		task.DifficultyMinutes = 10
	}
	task.IsActive = true
	require.NoError(t, db.Create(&task).Error)
	return &task
}

func seedAssignment(t *testing.T, db *gorm.DB, taskID, assigneeID uint, due time.Time, status string) *models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		TaskID:     taskID,
		AssigneeID: assigneeID,
		AssignedBy: assigneeID,
		DueDate:    due,
		Status:     status,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&assignment).Error)

	// A zero-valued bool on Create is replaced by the column default, so the
	// inactive flag has to land via an explicit update.
	if status == models.AssignmentStatusCancelled {
		require.NoError(t, db.Model(&assignment).Update("is_active", false).Error)
		assignment.IsActive = false
	}
	return &assignment
}

func seedCompletion(t *testing.T, db *gorm.DB, householdID, taskID, userID uint, points int) *models.Completion {
	t.Helper()
	completion := models.Completion{
		TaskID:       taskID,
		HouseholdID:  householdID,
		UserID:       userID,
		PointsEarned: points,
		CompletedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&completion).Error)
	return &completion
}

func seedReward(t *testing.T, db *gorm.DB, householdID, createdBy uint, cost, quantity int) *models.Reward {
	t.Helper()
	reward := models.Reward{
		HouseholdID: householdID,
		Title:       "movie night",
		PointsCost:  cost,
		Quantity:    quantity,
		CreatedBy:   createdBy,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&reward).Error)
	return &reward
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenDB(t)
}
