package service

import "math/rand"

// Reward formula constants.
const (
	baseReward         = 10
	comboBonusStep     = 2
	comboBonusCap      = 50
	criticalChance     = 0.1
	criticalMultiplier = 2
)

// RewardCalculator computes the payout for one accepted click. It is a
// pure function of the streak plus a probabilistic critical roll; it
// never touches the store.
type RewardCalculator struct {
	critRoll func() float64
}

// NewRewardCalculator uses the package-level random source for the
// critical roll.
func NewRewardCalculator() *RewardCalculator {
	return &RewardCalculator{critRoll: rand.Float64}
}

// NewRewardCalculatorWithRoll injects a deterministic roll for tests.
func NewRewardCalculatorWithRoll(roll func() float64) *RewardCalculator {
	return &RewardCalculator{critRoll: roll}
}

// Compute returns the reward for a click made with the given streak.
// combo is the streak before this click; the bonus caps at
// comboBonusCap and a critical doubles the total.
func (c *RewardCalculator) Compute(combo int) (reward int64, critical bool) {
	bonus := combo * comboBonusStep
	if bonus > comboBonusCap {
		bonus = comboBonusCap
	}
	reward = int64(baseReward + bonus)

	critical = c.critRoll() < criticalChance
	if critical {
		reward *= criticalMultiplier
	}
	return reward, critical
}
