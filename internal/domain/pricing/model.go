package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
)

var ErrInvalidRule = errors.New("invalid pricing rule")

// Rule derives a rider's next cost from one race outcome.
type Rule struct {
	PointsPerUnit    int
	MaxRise          int64
	NonFinishPenalty int64
	MinCost          int64
	MaxCost          int64
}

func DefaultRule() Rule {
	return Rule{
		PointsPerUnit:    10,
		MaxRise:          10,
		NonFinishPenalty: 2,
		MinCost:          1,
		MaxCost:          100,
	}
}

func (r Rule) Validate() error {
	if r.PointsPerUnit <= 0 {
		return fmt.Errorf("%w: points per unit must be > 0", ErrInvalidRule)
	}
	if r.MaxRise < 0 || r.NonFinishPenalty < 0 {
		return fmt.Errorf("%w: max rise and penalty must be >= 0", ErrInvalidRule)
	}
	if r.MinCost <= 0 || r.MaxCost < r.MinCost {
		return fmt.Errorf("%w: cost bounds must satisfy 0 < min <= max", ErrInvalidRule)
	}
	return nil
}

// Reprice returns the cost after a race, starting from base.
func (r Rule) Reprice(base int64, outcome result.Outcome, points int) int64 {
	var delta int64
	if _, ok := outcome.(result.Finished); ok {
		delta = int64(points / r.PointsPerUnit)
		if delta > r.MaxRise {
			delta = r.MaxRise
		}
	} else if outcome != nil {
		delta = -r.NonFinishPenalty
	}
	return r.clamp(base + delta)
}

func (r Rule) clamp(cost int64) int64 {
	if cost < r.MinCost {
		return r.MinCost
	}
	if cost > r.MaxCost {
		return r.MaxCost
	}
	return cost
}

// RiderCostUpdate is the audit row of one repricing caused by one race.
type RiderCostUpdate struct {
	ID           string
	RaceID       string
	RiderID      string
	PreviousCost int64
	UpdatedCost  int64
	Delta        int64
	ResultsHash  string
	CreatedAt    time.Time
}
