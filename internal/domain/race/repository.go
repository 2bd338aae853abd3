package race

import (
	"context"
	"time"
)

// Repository describes race persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, raceID string) (Race, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Race, error)
	ListDueForLock(ctx context.Context, now time.Time) ([]Race, error)
	ListPendingSettlement(ctx context.Context) ([]Race, error)
	Upsert(ctx context.Context, item Race) error
	Delete(ctx context.Context, raceID string) error
}
