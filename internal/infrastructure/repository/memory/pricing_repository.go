package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/pricing"
)

type pricingRepository struct {
	st *state
}

func (r *pricingRepository) ListByRace(_ context.Context, raceID string) ([]pricing.RiderCostUpdate, error) {
	out := make([]pricing.RiderCostUpdate, 0, len(r.st.costUpdates[raceID]))
	for _, item := range r.st.costUpdates[raceID] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RiderID < out[j].RiderID })
	return out, nil
}

func (r *pricingRepository) Upsert(_ context.Context, update pricing.RiderCostUpdate) error {
	byRider, ok := r.st.costUpdates[update.RaceID]
	if !ok {
		byRider = make(map[string]pricing.RiderCostUpdate)
		r.st.costUpdates[update.RaceID] = byRider
	}
	if existing, ok := byRider[update.RiderID]; ok {
		update.ID = existing.ID
		update.CreatedAt = existing.CreatedAt
	}
	byRider[update.RiderID] = update
	return nil
}

func (r *pricingRepository) DeleteByRace(_ context.Context, raceID string) (int64, error) {
	n := int64(len(r.st.costUpdates[raceID]))
	delete(r.st.costUpdates, raceID)
	return n, nil
}
