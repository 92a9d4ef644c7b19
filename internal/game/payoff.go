package game

import (
	"fmt"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

// PayoffTable maps a pair of actual moves to each side's points.
type PayoffTable struct {
	Reward     int `json:"reward"`
	Temptation int `json:"temptation"`
	Sucker     int `json:"sucker"`
	Punishment int `json:"punishment"`
}

func DefaultPayoffTable() PayoffTable {
	return PayoffTable{
		Reward:     model.Reward,
		Temptation: model.Temptation,
		Sucker:     model.Sucker,
		Punishment: model.Punishment,
	}
}

// Validate enforces prisoner's dilemma well-formedness: T > R > P > S and
// 2R > T + S (so alternating exploitation never beats mutual cooperation).
func (t PayoffTable) Validate() error {
	if !(t.Temptation > t.Reward && t.Reward > t.Punishment && t.Punishment > t.Sucker) {
		return fmt.Errorf("payoff matrix must satisfy T > R > P > S: T=%d R=%d P=%d S=%d",
			t.Temptation, t.Reward, t.Punishment, t.Sucker)
	}
	if 2*t.Reward <= t.Temptation+t.Sucker {
		return fmt.Errorf("payoff matrix must satisfy 2R > T+S: R=%d T=%d S=%d",
			t.Reward, t.Temptation, t.Sucker)
	}
	return nil
}

// Payoff returns (own points, opponent points) for one round.
func (t PayoffTable) Payoff(own, opp model.Move) (int, int) {
	switch {
	case own == model.Cooperate && opp == model.Cooperate:
		return t.Reward, t.Reward
	case own == model.Cooperate && opp == model.Defect:
		return t.Sucker, t.Temptation
	case own == model.Defect && opp == model.Cooperate:
		return t.Temptation, t.Sucker
	default:
		return t.Punishment, t.Punishment
	}
}
