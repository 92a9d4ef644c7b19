package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Move is one round's choice in the iterated prisoner's dilemma.
type Move string

const (
	Cooperate Move = "C"
	Defect    Move = "D"
)

func (m Move) Valid() bool {
	return m == Cooperate || m == Defect
}

// Default payoff constants. The matrix is configurable, but any
// configured matrix must satisfy T > R > P > S and 2R > T + S.
const (
	Reward     = 3
	Temptation = 5
	Sucker     = 0
	Punishment = 1
)

// RoundRecord logs the actual (post-noise) moves and points of one round.
type RoundRecord struct {
	MoveA   Move `json:"move_a"`
	MoveB   Move `json:"move_b"`
	PointsA int  `json:"pts_a"`
	PointsB int  `json:"pts_b"`
}

// MatchRecord summarizes one head-to-head match. Immutable once complete.
type MatchRecord struct {
	AgentA string        `json:"agent_a"`
	AgentB string        `json:"agent_b"`
	Rounds int           `json:"rounds"`
	ScoreA int           `json:"score_a"`
	ScoreB int           `json:"score_b"`
	Log    []RoundRecord `json:"log,omitempty"`
}

// GenerationSnapshot is a read-only view over population slots after one
// generation: per-strategy live count and per-strategy cumulative points.
type GenerationSnapshot struct {
	Generation int            `json:"generation"`
	Counts     map[string]int `json:"counts"`
	Points     map[string]int `json:"points"`
}

// RunRecord is the persisted outcome of one evolution run.
type RunRecord struct {
	VersionedRecord
	ID           string               `json:"id"`
	CreatedAtUTC string               `json:"created_at_utc"`
	Pairing      string               `json:"pairing"`
	Rounds       int                  `json:"rounds"`
	Noise        float64              `json:"noise"`
	MutationRate float64              `json:"mutation_rate"`
	Elimination  int                  `json:"elimination"`
	Generations  int                  `json:"generations"`
	Seed         int64                `json:"seed"`
	Composition  map[string]int       `json:"composition"`
	Snapshots    []GenerationSnapshot `json:"snapshots,omitempty"`
	FinalCounts  map[string]int       `json:"final_counts"`
}

// BatchRow is one line of the batch report: final-count statistics for one
// strategy across all runs, with Mean deciding the report order.
type BatchRow struct {
	Strategy string  `json:"strategy"`
	Mean     float64 `json:"mean"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
}

// BatchRecord is the persisted outcome of one batch experiment.
type BatchRecord struct {
	VersionedRecord
	ID           string     `json:"id"`
	CreatedAtUTC string     `json:"created_at_utc"`
	Runs         int        `json:"runs"`
	Generations  int        `json:"generations"`
	Rounds       int        `json:"rounds"`
	Noise        float64    `json:"noise"`
	MutationRate float64    `json:"mutation_rate"`
	Seed         int64      `json:"seed"`
	Rows         []BatchRow `json:"rows"`
}
