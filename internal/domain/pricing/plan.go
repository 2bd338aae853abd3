package pricing

import (
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/fingerprint"
)

// Change is one planned repricing: the audit row plus the rider's new live cost.
type Change struct {
	Update   RiderCostUpdate
	LiveCost int64
}

// Plan computes the cost changes a race's results imply.
//
// Riders already repriced from the same results hash are skipped. When the
// results changed, the race's contribution is recomputed from the original
// base and only the difference is applied to the live cost, so repeated
// settlement never compounds.
func Plan(
	rule Rule,
	table scoring.PointsTable,
	raceID string,
	results []result.RaceResult,
	riders map[string]roster.Rider,
	existing map[string]RiderCostUpdate,
	resultsHash string,
	now time.Time,
) []Change {
	out := make([]Change, 0, len(results))
	for _, row := range results {
		rider, ok := riders[row.RiderID]
		if !ok || row.Outcome == nil {
			continue
		}

		previous, seen := existing[row.RiderID]
		if seen && fingerprint.Equal(previous.ResultsHash, resultsHash) {
			continue
		}

		base := rider.Cost
		if seen {
			base = previous.PreviousCost
		}
		updated := rule.Reprice(base, row.Outcome, table.ForOutcome(row.Outcome))
		delta := updated - base

		live := updated
		if seen {
			live = rule.clamp(rider.Cost + delta - previous.Delta)
		}

		update := RiderCostUpdate{
			RaceID:       raceID,
			RiderID:      row.RiderID,
			PreviousCost: base,
			UpdatedCost:  updated,
			Delta:        delta,
			ResultsHash:  resultsHash,
			CreatedAt:    now,
		}
		if seen {
			update.ID = previous.ID
		}
		out = append(out, Change{Update: update, LiveCost: live})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Update.RiderID < out[j].Update.RiderID
	})
	return out
}

// Revert plans the live cost changes that undo a race's cost updates.
// Each rider moves back by the update's delta, clamped to the rule's bounds.
func Revert(rule Rule, updates []RiderCostUpdate, riders map[string]roster.Rider) []Change {
	out := make([]Change, 0, len(updates))
	for _, update := range updates {
		rider, ok := riders[update.RiderID]
		if !ok || update.Delta == 0 {
			continue
		}
		out = append(out, Change{Update: update, LiveCost: rule.clamp(rider.Cost - update.Delta)})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Update.RiderID < out[j].Update.RiderID
	})
	return out
}
