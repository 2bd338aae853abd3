package result

import "context"

// Repository stores rider result rows and result set import metadata.
type Repository interface {
	UpsertResults(ctx context.Context, rows []RaceResult) error
	ListByRace(ctx context.Context, raceID string) ([]RaceResult, error)
	DeleteResultsByRace(ctx context.Context, raceID string) (int64, error)

	UpsertImport(ctx context.Context, item Import) error
	ListImportsByRace(ctx context.Context, raceID string) ([]Import, error)
	DeleteImportsByRace(ctx context.Context, raceID string) (int64, error)
}
