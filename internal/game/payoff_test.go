package game

import (
	"testing"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

func TestDefaultPayoffTableIsWellFormed(t *testing.T) {
	if err := DefaultPayoffTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
}

func TestPayoffTableValidateOrdering(t *testing.T) {
	bad := PayoffTable{Reward: 5, Temptation: 3, Sucker: 0, Punishment: 1}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected T > R violation to fail")
	}
}

func TestPayoffTableValidateAlternationBound(t *testing.T) {
	// 2R = T + S makes alternating exploitation as good as cooperation.
	bad := PayoffTable{Reward: 3, Temptation: 6, Sucker: 0, Punishment: 1}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected 2R > T+S violation to fail")
	}
}

func TestPayoffValues(t *testing.T) {
	table := DefaultPayoffTable()
	cases := []struct {
		own, opp model.Move
		wantOwn  int
		wantOpp  int
	}{
		{model.Cooperate, model.Cooperate, model.Reward, model.Reward},
		{model.Cooperate, model.Defect, model.Sucker, model.Temptation},
		{model.Defect, model.Cooperate, model.Temptation, model.Sucker},
		{model.Defect, model.Defect, model.Punishment, model.Punishment},
	}
	for _, tc := range cases {
		own, opp := table.Payoff(tc.own, tc.opp)
		if own != tc.wantOwn || opp != tc.wantOpp {
			t.Fatalf("payoff(%v,%v): got (%d,%d) want (%d,%d)",
				tc.own, tc.opp, own, opp, tc.wantOwn, tc.wantOpp)
		}
	}
}
