package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famboard/famboard/models"
)

func TestAvailablePoints(t *testing.T) {
	t.Run("earned minus reserved and spent", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		reward := seedReward(t, db, household.ID, owner, 12, 5)

		seedCompletion(t, db, household.ID, task.ID, owner, 10)
		seedCompletion(t, db, household.ID, task.ID, owner, 15)
		seedCompletion(t, db, household.ID, task.ID, owner, 20)

		require.NoError(t, db.Create(&models.RewardClaim{
			RewardID:    reward.ID,
			HouseholdID: household.ID,
			UserID:      owner,
			PointsSpent: 12,
			Status:      models.ClaimStatusFulfilled,
		}).Error)

		balance, err := AvailablePoints(db, owner, household.ID)
		require.NoError(t, err)
		assert.Equal(t, 33, balance)
	})

	t.Run("pending claims reserve points", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		reward := seedReward(t, db, household.ID, owner, 30, 5)

		seedCompletion(t, db, household.ID, task.ID, owner, 50)

		require.NoError(t, db.Create(&models.RewardClaim{
			RewardID:    reward.ID,
			HouseholdID: household.ID,
			UserID:      owner,
			PointsSpent: 30,
			Status:      models.ClaimStatusPending,
		}).Error)

		balance, err := AvailablePoints(db, owner, household.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, balance)
	})

	t.Run("rejected claims release the reservation", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		household := seedHousehold(t, db, owner)
		task := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
		reward := seedReward(t, db, household.ID, owner, 30, 5)

		seedCompletion(t, db, household.ID, task.ID, owner, 50)

		require.NoError(t, db.Create(&models.RewardClaim{
			RewardID:    reward.ID,
			HouseholdID: household.ID,
			UserID:      owner,
			PointsSpent: 30,
			Status:      models.ClaimStatusRejected,
		}).Error)

		balance, err := AvailablePoints(db, owner, household.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, balance)
	})

	t.Run("scoped per household and per user", func(t *testing.T) {
		db := newTestDB(t)
		owner := seedUser(t, db, "owner")
		alice := seedUser(t, db, "alice")
		first := seedHousehold(t, db, owner)
		second := seedHousehold(t, db, alice)
		task := seedTask(t, db, models.Task{HouseholdID: first.ID, CreatedBy: owner})
		other := seedTask(t, db, models.Task{HouseholdID: second.ID, CreatedBy: alice})

		seedCompletion(t, db, first.ID, task.ID, owner, 10)
		seedCompletion(t, db, second.ID, other.ID, alice, 99)

		balance, err := AvailablePoints(db, owner, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, balance)

		balance, err = AvailablePoints(db, owner, second.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})
}
