package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleUserIDs(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		var task Task
		task.SetCycleUserIDs([]uint{3, 1, 2})
		assert.Equal(t, "3,1,2", task.CycleUsers)
		assert.Equal(t, []uint{3, 1, 2}, task.CycleUserIDs())
	})

	t.Run("malformed entries are dropped", func(t *testing.T) {
		task := Task{CycleUsers: "1, oops,0,, 4"}
		assert.Equal(t, []uint{1, 4}, task.CycleUserIDs())
	})

	t.Run("empty", func(t *testing.T) {
		task := Task{}
		assert.Nil(t, task.CycleUserIDs())

		task.SetCycleUserIDs(nil)
		assert.Equal(t, "", task.CycleUsers)
	})
}

func TestValidFrequency(t *testing.T) {
	for _, f := range []string{FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly} {
		assert.True(t, ValidFrequency(f), f)
	}
	assert.False(t, ValidFrequency("fortnightly"))
	assert.False(t, ValidFrequency(""))
}
