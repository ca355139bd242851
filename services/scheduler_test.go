package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famboard/famboard/models"
)

func TestSchedulerRunOnce(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	household := seedHousehold(t, db, owner)

	seedTask(t, db, models.Task{
		HouseholdID: household.ID,
		Frequency:   models.FrequencyDaily,
		IsCyclic:    true,
		AutoAssign:  true,
		CreatedBy:   owner,
	})

	// A stale pending assignment for the sweeper to pick up.
	stale := seedTask(t, db, models.Task{HouseholdID: household.ID, CreatedBy: owner})
	now := time.Date(2026, 3, 4, 6, 0, 0, 0, time.Local)
	seedAssignment(t, db, stale.ID, owner,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), models.AssignmentStatusPending)

	scheduler := NewScheduler(
		NewGenerator(db, nil, WithGeneratorNow(fixedNow(now))),
		NewSweeper(db, nil, WithSweeperNow(fixedNow(now))),
		nil,
	)
	scheduler.RunOnce()

	var generated int64
	require.NoError(t, db.Model(&models.Assignment{}).
		Where("status = ? AND due_date = ?", models.AssignmentStatusPending,
			time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)).
		Count(&generated).Error)
	assert.EqualValues(t, 1, generated)

	var overdue int64
	require.NoError(t, db.Model(&models.Assignment{}).
		Where("status = ?", models.AssignmentStatusOverdue).
		Count(&overdue).Error)
	assert.EqualValues(t, 1, overdue)
}

func TestSchedulerStartStop(t *testing.T) {
	db := newTestDB(t)

	scheduler := NewScheduler(
		NewGenerator(db, nil),
		NewSweeper(db, nil),
		nil,
		WithDailySpec("0 6 * * *"),
		WithWeeklySpec("0 6 * * 1"),
		WithSweepSpec("@hourly"),
	)
	require.NoError(t, scheduler.Start())

	done := scheduler.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
