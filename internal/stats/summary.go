package stats

import (
	"fmt"
)

// Summary holds the aggregate statistics of one integer series.
type Summary struct {
	Mean float64 `json:"mean"`
	Min  int     `json:"min"`
	Max  int     `json:"max"`
}

// Summarize computes mean/min/max of a count series.
func Summarize(counts []int) (Summary, error) {
	if len(counts) == 0 {
		return Summary{}, fmt.Errorf("counts must not be empty")
	}
	total := 0
	minCount := counts[0]
	maxCount := counts[0]
	for _, count := range counts {
		total += count
		if count < minCount {
			minCount = count
		}
		if count > maxCount {
			maxCount = count
		}
	}
	return Summary{
		Mean: float64(total) / float64(len(counts)),
		Min:  minCount,
		Max:  maxCount,
	}, nil
}
