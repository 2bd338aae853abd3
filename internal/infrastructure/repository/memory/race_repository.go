package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
)

type raceRepository struct {
	st *state
}

func (r *raceRepository) GetByID(_ context.Context, raceID string) (race.Race, bool, error) {
	item, ok := r.st.races[raceID]
	return item, ok, nil
}

func (r *raceRepository) ListBySeason(_ context.Context, seasonID string) ([]race.Race, error) {
	return r.filter(func(item race.Race) bool { return item.SeasonID == seasonID }), nil
}

func (r *raceRepository) ListDueForLock(_ context.Context, now time.Time) ([]race.Race, error) {
	return r.filter(func(item race.Race) bool {
		return item.GameStatus == race.StatusScheduled &&
			!item.LockAt.IsZero() && !item.LockAt.After(now) &&
			!item.WindowClosed(now)
	}), nil
}

func (r *raceRepository) ListPendingSettlement(_ context.Context) ([]race.Race, error) {
	return r.filter(func(item race.Race) bool {
		if item.GameStatus == race.StatusFinal {
			return true
		}
		return item.NeedsResettle && item.GameStatus.AtLeast(race.StatusLocked)
	}), nil
}

func (r *raceRepository) Upsert(_ context.Context, item race.Race) error {
	if existing, ok := r.st.races[item.ID]; ok && item.CreatedAt.IsZero() {
		item.CreatedAt = existing.CreatedAt
	}
	r.st.races[item.ID] = item
	return nil
}

func (r *raceRepository) Delete(_ context.Context, raceID string) error {
	delete(r.st.races, raceID)
	return nil
}

func (r *raceRepository) filter(keep func(race.Race) bool) []race.Race {
	out := make([]race.Race, 0)
	for _, item := range r.st.races {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
