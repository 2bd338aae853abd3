package scoring

import (
	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
)

// SubstitutionRule decides which starter statuses the bench rider may cover.
type SubstitutionRule struct {
	eligible map[result.Status]struct{}
}

func DefaultSubstitutionRule() SubstitutionRule {
	return NewSubstitutionRule(
		result.StatusDidNotStart,
		result.StatusDidNotFinish,
		result.StatusDisqualified,
		result.StatusOutsideLimit,
	)
}

func NewSubstitutionRule(statuses ...result.Status) SubstitutionRule {
	eligible := make(map[result.Status]struct{}, len(statuses))
	for _, status := range statuses {
		if status == result.StatusFinished {
			continue
		}
		eligible[status] = struct{}{}
	}
	return SubstitutionRule{eligible: eligible}
}

// Covers reports whether a starter with this status may be replaced.
// A starter with no result yet is never replaced.
func (r SubstitutionRule) Covers(status result.Status) bool {
	_, ok := r.eligible[status]
	return ok
}

// Calculator turns a snapshot plus race results into a score breakdown.
type Calculator struct {
	Table        PointsTable
	Substitution SubstitutionRule
}

func NewCalculator(table PointsTable, rule SubstitutionRule) Calculator {
	return Calculator{Table: table, Substitution: rule}
}

// Score is deterministic: the same snapshot and results always give the
// same breakdown. At most one bench substitution is applied, into the first
// same-gender starter slot that failed to finish.
func (c Calculator) Score(snapshot RaceSnapshot, resultsByRider map[string]result.RaceResult) Breakdown {
	out := Breakdown{Slots: make([]SlotBreakdown, 0, len(snapshot.Starters))}

	for idx, starter := range snapshot.Starters {
		slot := SlotBreakdown{
			Slot:    idx,
			RiderID: starter.RiderID,
			Gender:  starter.Gender,
		}
		if starter.StarterIndex != nil {
			slot.Slot = *starter.StarterIndex
		}
		if row, ok := resultsByRider[starter.RiderID]; ok && row.Outcome != nil {
			slot.Status = row.Outcome.Status()
			slot.Position = positionPtr(row.Outcome)
			slot.Points = c.Table.ForOutcome(row.Outcome)
		}
		out.Slots = append(out.Slots, slot)
	}

	if snapshot.Bench != nil {
		out.Bench = c.scoreBench(*snapshot.Bench, resultsByRider)
		c.applySubstitution(&out)
	}

	for _, slot := range out.Slots {
		out.TotalPoints += slot.Points
	}
	return out
}

func (c Calculator) scoreBench(bench SnapshotRider, resultsByRider map[string]result.RaceResult) *BenchBreakdown {
	out := &BenchBreakdown{RiderID: bench.RiderID, Gender: bench.Gender}
	if row, ok := resultsByRider[bench.RiderID]; ok && row.Outcome != nil {
		out.Status = row.Outcome.Status()
		out.Position = positionPtr(row.Outcome)
		out.Points = c.Table.ForOutcome(row.Outcome)
	}
	return out
}

func (c Calculator) applySubstitution(out *Breakdown) {
	bench := out.Bench
	if bench == nil || bench.Status != result.StatusFinished {
		return
	}

	for idx := range out.Slots {
		slot := &out.Slots[idx]
		if slot.Gender != bench.Gender || !c.Substitution.Covers(slot.Status) {
			continue
		}
		slot.Points = bench.Points
		slot.Substituted = true
		slot.SubstituteRiderID = bench.RiderID
		slot.SubstitutePosition = bench.Position
		usedIn := slot.Slot
		bench.UsedInSlot = &usedIn
		out.Substitutions = 1
		return
	}
}

func positionPtr(outcome result.Outcome) *int {
	position, ok := result.PositionOf(outcome)
	if !ok {
		return nil
	}
	return &position
}
