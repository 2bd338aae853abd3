package result

import (
	"sort"

	"github.com/riskibarqy/fantasy-cycling/internal/platform/fingerprint"
)

type canonicalRow struct {
	RiderID  string `json:"riderId"`
	Status   Status `json:"status"`
	Position int    `json:"position,omitempty"`
}

type canonicalBatch struct {
	Set        string         `json:"set"`
	Discipline string         `json:"discipline"`
	IsFinal    bool           `json:"isFinal"`
	Rows       []canonicalRow `json:"rows"`
}

func canonicalize(riderID string, outcome Outcome) canonicalRow {
	row := canonicalRow{RiderID: riderID}
	if outcome != nil {
		row.Status = outcome.Status()
	}
	if position, ok := PositionOf(outcome); ok {
		row.Position = position
	}
	return row
}

func sortRows(rows []canonicalRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].RiderID < rows[j].RiderID
	})
}

// Hash fingerprints the scoring-relevant content of a race's result rows.
// Row order does not matter.
func Hash(rows []RaceResult) (string, error) {
	canonical := make([]canonicalRow, 0, len(rows))
	for _, row := range rows {
		canonical = append(canonical, canonicalize(row.RiderID, row.Outcome))
	}
	sortRows(canonical)
	return fingerprint.Of(canonical)
}

// BatchHash fingerprints one submission, including its finality flag.
func BatchHash(batch Batch) (string, error) {
	canonical := canonicalBatch{
		Set:        batch.Key().String(),
		Discipline: batch.Discipline,
		IsFinal:    batch.IsFinal,
		Rows:       make([]canonicalRow, 0, len(batch.Entries)),
	}
	for _, entry := range batch.Entries {
		canonical.Rows = append(canonical.Rows, canonicalize(entry.RiderID, entry.Outcome))
	}
	sortRows(canonical.Rows)
	return fingerprint.Of(canonical)
}
