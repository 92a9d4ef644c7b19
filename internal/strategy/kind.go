package strategy

import (
	"fmt"
	"strings"
)

// Kind identifies one strategy rule from the closed roster. Decision logic
// dispatches over the tag so that adding a variant forces every switch in
// this package to account for it.
type Kind int

const (
	TitForTat Kind = iota
	Grudger
	Pavlov
	GenerousTitForTat
	TitForTwoTats
	SuspiciousTitForTat
	Detective
	Gradual
	SoftMajority
	Random
	AlwaysCooperate
	AlwaysDefect
	kindCount
)

var kindNames = [kindCount]string{
	TitForTat:           "Tit-for-Tat",
	Grudger:             "Grudger",
	Pavlov:              "Pavlov",
	GenerousTitForTat:   "Generous TfT",
	TitForTwoTats:       "Tit-for-Two-Tats",
	SuspiciousTitForTat: "Suspicious TfT",
	Detective:           "Detective",
	Gradual:             "Gradual",
	SoftMajority:        "Soft Majority",
	Random:              "Random",
	AlwaysCooperate:     "Always Cooperate",
	AlwaysDefect:        "Always Defect",
}

func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// AllKinds returns the full strategy set in roster order. Mutation draws
// uniformly from this slice.
func AllKinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Archetypes returns the ten competitive strategies, excluding the two
// unconditional baselines. This is the default evolution roster.
func Archetypes() []Kind {
	return []Kind{
		TitForTat, Grudger, Pavlov, GenerousTitForTat, TitForTwoTats,
		SuspiciousTitForTat, Detective, Gradual, SoftMajority, Random,
	}
}

// ParseKind resolves a strategy name. Matching ignores case, spaces and
// hyphens, so "tit-for-tat", "TitForTat" and "Tit-for-Tat" all resolve.
func ParseKind(name string) (Kind, error) {
	want := normalizeKindName(name)
	for i := Kind(0); i < kindCount; i++ {
		if normalizeKindName(kindNames[i]) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy: %s", name)
}

func normalizeKindName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}
