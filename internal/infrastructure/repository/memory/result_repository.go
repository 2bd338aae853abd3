package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
)

type resultRepository struct {
	st *state
}

func (r *resultRepository) UpsertResults(_ context.Context, rows []result.RaceResult) error {
	for _, row := range rows {
		byRider, ok := r.st.results[row.RaceID]
		if !ok {
			byRider = make(map[string]result.RaceResult)
			r.st.results[row.RaceID] = byRider
		}
		byRider[row.RiderID] = row
	}
	return nil
}

func (r *resultRepository) ListByRace(_ context.Context, raceID string) ([]result.RaceResult, error) {
	out := make([]result.RaceResult, 0, len(r.st.results[raceID]))
	for _, row := range r.st.results[raceID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RiderID < out[j].RiderID })
	return out, nil
}

func (r *resultRepository) DeleteResultsByRace(_ context.Context, raceID string) (int64, error) {
	n := int64(len(r.st.results[raceID]))
	delete(r.st.results, raceID)
	return n, nil
}

func (r *resultRepository) UpsertImport(_ context.Context, item result.Import) error {
	bySet, ok := r.st.imports[item.RaceID]
	if !ok {
		bySet = make(map[result.SetKey]result.Import)
		r.st.imports[item.RaceID] = bySet
	}
	if existing, ok := bySet[item.Key()]; ok {
		item.ID = existing.ID
	}
	bySet[item.Key()] = item
	return nil
}

func (r *resultRepository) ListImportsByRace(_ context.Context, raceID string) ([]result.Import, error) {
	out := make([]result.Import, 0, len(r.st.imports[raceID]))
	for _, item := range r.st.imports[raceID] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })
	return out, nil
}

func (r *resultRepository) DeleteImportsByRace(_ context.Context, raceID string) (int64, error) {
	n := int64(len(r.st.imports[raceID]))
	delete(r.st.imports, raceID)
	return n, nil
}
