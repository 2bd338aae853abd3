package scoring

import "context"

// Repository persists race snapshots and race scores. Both are unique per
// (race, user, team type).
type Repository interface {
	GetSnapshot(ctx context.Context, key Key) (RaceSnapshot, bool, error)
	ListSnapshotsByRace(ctx context.Context, raceID string) ([]RaceSnapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot RaceSnapshot) error
	DeleteSnapshotsByRace(ctx context.Context, raceID string) (int64, error)

	ListScoresByRace(ctx context.Context, raceID string) ([]RaceScore, error)
	UpsertScore(ctx context.Context, score RaceScore) error
	DeleteScoresByRace(ctx context.Context, raceID string) (int64, error)
}
