package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
)

type scoringRepository struct {
	st *state
}

func (r *scoringRepository) GetSnapshot(_ context.Context, key scoring.Key) (scoring.RaceSnapshot, bool, error) {
	item, ok := r.st.snapshots[key]
	return item, ok, nil
}

func (r *scoringRepository) ListSnapshotsByRace(_ context.Context, raceID string) ([]scoring.RaceSnapshot, error) {
	out := make([]scoring.RaceSnapshot, 0)
	for key, item := range r.st.snapshots {
		if key.RaceID == raceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].Key(), out[j].Key()) })
	return out, nil
}

func (r *scoringRepository) UpsertSnapshot(_ context.Context, snapshot scoring.RaceSnapshot) error {
	if existing, ok := r.st.snapshots[snapshot.Key()]; ok {
		snapshot.ID = existing.ID
	}
	r.st.snapshots[snapshot.Key()] = snapshot
	return nil
}

func (r *scoringRepository) DeleteSnapshotsByRace(_ context.Context, raceID string) (int64, error) {
	var n int64
	for key := range r.st.snapshots {
		if key.RaceID == raceID {
			delete(r.st.snapshots, key)
			n++
		}
	}
	return n, nil
}

func (r *scoringRepository) ListScoresByRace(_ context.Context, raceID string) ([]scoring.RaceScore, error) {
	out := make([]scoring.RaceScore, 0)
	for key, item := range r.st.scores {
		if key.RaceID == raceID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].Key(), out[j].Key()) })
	return out, nil
}

func (r *scoringRepository) UpsertScore(_ context.Context, score scoring.RaceScore) error {
	if existing, ok := r.st.scores[score.Key()]; ok {
		score.ID = existing.ID
	}
	r.st.scores[score.Key()] = score
	return nil
}

func (r *scoringRepository) DeleteScoresByRace(_ context.Context, raceID string) (int64, error) {
	var n int64
	for key := range r.st.scores {
		if key.RaceID == raceID {
			delete(r.st.scores, key)
			n++
		}
	}
	return n, nil
}

func lessKey(a, b scoring.Key) bool {
	if a.UserID != b.UserID {
		return a.UserID < b.UserID
	}
	return a.TeamType < b.TeamType
}
