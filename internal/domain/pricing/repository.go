package pricing

import "context"

type Repository interface {
	ListByRace(ctx context.Context, raceID string) ([]RiderCostUpdate, error)
	Upsert(ctx context.Context, update RiderCostUpdate) error
	DeleteByRace(ctx context.Context, raceID string) (int64, error)
}
