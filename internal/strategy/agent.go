package strategy

import (
	"fmt"
	"math/rand"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

// Params carries the tunable knobs of the stochastic strategies. Kinds that
// do not use a knob ignore it.
type Params struct {
	// Forgiveness is the probability that Generous TfT answers a defection
	// with cooperation anyway.
	Forgiveness float64
	// CooperateBias is the probability that Random cooperates on any round.
	CooperateBias float64
}

func DefaultParams() Params {
	return Params{Forgiveness: 0.10, CooperateBias: 0.5}
}

// detectiveProbe is the fixed opening sequence played in rounds 1-4.
var detectiveProbe = [4]model.Move{model.Cooperate, model.Defect, model.Cooperate, model.Cooperate}

// Agent is one live instance of a strategy: the immutable rule tag plus the
// mutable interaction history and score for the current match. Strategies
// observe only the two histories (and their own counters); both histories
// hold actual, post-noise moves.
type Agent struct {
	kind   Kind
	params Params

	myHistory  []model.Move
	oppHistory []model.Move
	score      int

	// Gradual bookkeeping: outstanding forced defections, outstanding
	// calm-down cooperations, and the defection total already punished.
	punishmentLeft int
	calmLeft       int
	seenDefects    int
}

// NewAgent returns a fresh agent with default parameters. It panics on an
// invalid kind: the roster is closed, so an unknown tag is a logic defect.
func NewAgent(kind Kind) *Agent {
	agent, err := NewAgentWithParams(kind, DefaultParams())
	if err != nil {
		panic(err)
	}
	return agent
}

func NewAgentWithParams(kind Kind, params Params) (*Agent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid strategy kind: %d", int(kind))
	}
	if params.Forgiveness < 0 || params.Forgiveness > 1 {
		return nil, fmt.Errorf("forgiveness must be in [0,1]: %v", params.Forgiveness)
	}
	if params.CooperateBias < 0 || params.CooperateBias > 1 {
		return nil, fmt.Errorf("cooperate bias must be in [0,1]: %v", params.CooperateBias)
	}
	return &Agent{kind: kind, params: params}, nil
}

func (a *Agent) Kind() Kind {
	return a.kind
}

func (a *Agent) Name() string {
	return a.kind.String()
}

func (a *Agent) Score() int {
	return a.score
}

func (a *Agent) RoundsPlayed() int {
	return len(a.myHistory)
}

// History returns copies of the agent's own and opponent move histories.
func (a *Agent) History() (own, opp []model.Move) {
	return append([]model.Move(nil), a.myHistory...), append([]model.Move(nil), a.oppHistory...)
}

// Clone returns a fresh agent with the same kind and parameters and no
// accumulated state. Parallel match execution plays on clones.
func (a *Agent) Clone() *Agent {
	return &Agent{kind: a.kind, params: a.params}
}

// Reset clears history, score and all strategy counters. The kind and
// parameters are unchanged.
func (a *Agent) Reset() {
	a.myHistory = a.myHistory[:0]
	a.oppHistory = a.oppHistory[:0]
	a.score = 0
	a.punishmentLeft = 0
	a.calmLeft = 0
	a.seenDefects = 0
}

// RecordRound appends the actual moves of one round and credits the points.
func (a *Agent) RecordRound(own, opp model.Move, points int) {
	a.myHistory = append(a.myHistory, own)
	a.oppHistory = append(a.oppHistory, opp)
	a.score += points
	if len(a.myHistory) != len(a.oppHistory) {
		panic(fmt.Sprintf("strategy: history length mismatch for %s: own=%d opp=%d",
			a.kind, len(a.myHistory), len(a.oppHistory)))
	}
}

// ChooseMove returns the intended move for the next round. rng must be
// non-nil; only the stochastic kinds draw from it.
func (a *Agent) ChooseMove(rng *rand.Rand) model.Move {
	switch a.kind {
	case AlwaysCooperate:
		return model.Cooperate

	case AlwaysDefect:
		return model.Defect

	case TitForTat:
		if len(a.oppHistory) == 0 {
			return model.Cooperate
		}
		return a.oppHistory[len(a.oppHistory)-1]

	case SuspiciousTitForTat:
		if len(a.oppHistory) == 0 {
			return model.Defect
		}
		return a.oppHistory[len(a.oppHistory)-1]

	case Grudger:
		if countMoves(a.oppHistory, model.Defect) > 0 {
			return model.Defect
		}
		return model.Cooperate

	case Pavlov:
		if len(a.myHistory) == 0 {
			return model.Cooperate
		}
		lastMy := a.myHistory[len(a.myHistory)-1]
		lastOpp := a.oppHistory[len(a.oppHistory)-1]
		lastPoints := model.Punishment
		switch {
		case lastMy == model.Cooperate && lastOpp == model.Cooperate:
			lastPoints = model.Reward
		case lastMy == model.Defect && lastOpp == model.Cooperate:
			lastPoints = model.Temptation
		case lastMy == model.Cooperate && lastOpp == model.Defect:
			lastPoints = model.Sucker
		}
		if lastPoints >= model.Reward {
			return lastMy // win-stay
		}
		if lastMy == model.Cooperate { // lose-shift
			return model.Defect
		}
		return model.Cooperate

	case GenerousTitForTat:
		if len(a.oppHistory) == 0 {
			return model.Cooperate
		}
		if a.oppHistory[len(a.oppHistory)-1] == model.Defect {
			if rng.Float64() < a.params.Forgiveness {
				return model.Cooperate
			}
			return model.Defect
		}
		return model.Cooperate

	case TitForTwoTats:
		n := len(a.oppHistory)
		if n >= 2 && a.oppHistory[n-1] == model.Defect && a.oppHistory[n-2] == model.Defect {
			return model.Defect
		}
		return model.Cooperate

	case Detective:
		round := len(a.myHistory)
		if round < len(detectiveProbe) {
			return detectiveProbe[round]
		}
		if countMoves(a.oppHistory[:len(detectiveProbe)], model.Defect) == 0 {
			return model.Defect // never retaliated during the probe: exploit
		}
		return a.oppHistory[len(a.oppHistory)-1]

	case Gradual:
		if len(a.oppHistory) > 0 {
			totalDefects := countMoves(a.oppHistory, model.Defect)
			if totalDefects > a.seenDefects {
				// Each new defection schedules the full running total of
				// extra defections; backlogs stack additively.
				a.punishmentLeft += totalDefects
				a.calmLeft = 2
				a.seenDefects = totalDefects
			}
		}
		if a.punishmentLeft > 0 {
			a.punishmentLeft--
			return model.Defect
		}
		if a.calmLeft > 0 {
			a.calmLeft--
			return model.Cooperate
		}
		return model.Cooperate

	case SoftMajority:
		if len(a.oppHistory) == 0 {
			return model.Cooperate
		}
		coop := countMoves(a.oppHistory, model.Cooperate)
		if 2*coop >= len(a.oppHistory) {
			return model.Cooperate
		}
		return model.Defect

	case Random:
		if rng.Float64() < a.params.CooperateBias {
			return model.Cooperate
		}
		return model.Defect
	}
	panic(fmt.Sprintf("strategy: unhandled kind %d", int(a.kind)))
}

func countMoves(history []model.Move, move model.Move) int {
	count := 0
	for _, m := range history {
		if m == move {
			count++
		}
	}
	return count
}
