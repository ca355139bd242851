package models

// All returns every model registered for migration, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Household{},
		&Membership{},
		&TaskCategory{},
		&Task{},
		&Assignment{},
		&Completion{},
		&Reward{},
		&RewardClaim{},
	}
}
