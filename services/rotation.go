package services

import (
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/utils"
)

// assignmentCounts returns how many assignments of the task each user has
// received so far. Cancelled (soft-deleted) assignments do not count.
func assignmentCounts(db *gorm.DB, taskID uint) (map[uint]int64, error) {
	var rows []struct {
		AssigneeID uint
		Total      int64
	}
	err := db.Model(&models.Assignment{}).
		Select("assignee_id, COUNT(*) AS total").
		Where("task_id = ? AND is_active = ?", taskID, true).
		Group("assignee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.AssigneeID] = r.Total
	}
	return counts, nil
}

// selectNextAssignee picks the candidate with the fewest prior assignments,
// breaking ties by the lowest user id. Pure over its inputs.
func selectNextAssignee(candidates []uint, counts map[uint]int64) (uint, bool) {
	var best uint
	var bestCount int64
	found := false
	for _, id := range candidates {
		c := counts[id]
		if !found || c < bestCount || (c == bestCount && id < best) {
			best = id
			bestCount = c
			found = true
		}
	}
	return best, found
}

// NextAssignee resolves the next assignee for a cyclic task. The task's
// explicit cycle_users list wins when present; otherwise every active
// household member is a candidate. Returns false when no candidate exists,
// in which case the caller skips the task for this period.
func NextAssignee(db *gorm.DB, task *models.Task) (uint, bool, error) {
	candidates := utils.UniqueUint(task.CycleUserIDs())
	if len(candidates) == 0 {
		var err error
		candidates, err = ActiveMemberIDs(db, task.HouseholdID)
		if err != nil {
			return 0, false, err
		}
	}
	if len(candidates) == 0 {
		return 0, false, nil
	}

	counts, err := assignmentCounts(db, task.ID)
	if err != nil {
		return 0, false, err
	}

	id, ok := selectNextAssignee(candidates, counts)
	return id, ok, nil
}
