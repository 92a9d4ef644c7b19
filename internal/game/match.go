package game

import (
	"fmt"
	"math/rand"

	"github.com/ShaduMan201/symbiosis/internal/model"
	"github.com/ShaduMan201/symbiosis/internal/strategy"
)

// MatchConfig fixes the shape of one head-to-head match.
type MatchConfig struct {
	Rounds int
	// Noise is the probability that an intended cooperation is transmitted
	// as a defection. Defections are never flipped: the model is
	// miscommunication, not accidental altruism.
	Noise   float64
	Payoff  PayoffTable
	KeepLog bool
}

func (cfg MatchConfig) validate() error {
	if cfg.Rounds <= 0 {
		return fmt.Errorf("rounds must be > 0: %d", cfg.Rounds)
	}
	if cfg.Noise < 0 || cfg.Noise > 1 {
		return fmt.Errorf("noise must be in [0,1]: %v", cfg.Noise)
	}
	return cfg.Payoff.Validate()
}

// PlayMatch resets both agents and plays exactly cfg.Rounds rounds. Each
// round both sides pick an intended move, noise is applied independently per
// side, payoffs are looked up for the actual pair, and both agents record
// the actual moves. rng drives noise and the stochastic strategies.
func PlayMatch(rng *rand.Rand, a, b *strategy.Agent, cfg MatchConfig) (model.MatchRecord, error) {
	if err := cfg.validate(); err != nil {
		return model.MatchRecord{}, err
	}
	if rng == nil {
		return model.MatchRecord{}, fmt.Errorf("random source is required")
	}
	if a == nil || b == nil {
		return model.MatchRecord{}, fmt.Errorf("both agents are required")
	}

	a.Reset()
	b.Reset()

	record := model.MatchRecord{
		AgentA: a.Name(),
		AgentB: b.Name(),
		Rounds: cfg.Rounds,
	}
	if cfg.KeepLog {
		record.Log = make([]model.RoundRecord, 0, cfg.Rounds)
	}

	for round := 0; round < cfg.Rounds; round++ {
		if a.RoundsPlayed() != round || b.RoundsPlayed() != round {
			panic(fmt.Sprintf("game: round accounting mismatch at round %d: a=%d b=%d",
				round, a.RoundsPlayed(), b.RoundsPlayed()))
		}

		intentA := a.ChooseMove(rng)
		intentB := b.ChooseMove(rng)

		actualA := applyNoise(rng, intentA, cfg.Noise)
		actualB := applyNoise(rng, intentB, cfg.Noise)

		pointsA, pointsB := cfg.Payoff.Payoff(actualA, actualB)

		a.RecordRound(actualA, actualB, pointsA)
		b.RecordRound(actualB, actualA, pointsB)

		if cfg.KeepLog {
			record.Log = append(record.Log, model.RoundRecord{
				MoveA: actualA, MoveB: actualB, PointsA: pointsA, PointsB: pointsB,
			})
		}
	}

	record.ScoreA = a.Score()
	record.ScoreB = b.Score()
	return record, nil
}

func applyNoise(rng *rand.Rand, move model.Move, noise float64) model.Move {
	if move == model.Cooperate && noise > 0 && rng.Float64() < noise {
		return model.Defect
	}
	return move
}
