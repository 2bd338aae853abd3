package uow

import (
	"context"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
)

// Repositories is the set of stores bound to one transaction.
type Repositories struct {
	Races   race.Repository
	Rosters roster.Repository
	Results result.Repository
	Scoring scoring.Repository
	Pricing pricing.Repository
}

// UnitOfWork runs fn atomically. Writes made through the given repositories
// are committed only when fn returns nil.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// WithinRace is Do serialized against every other WithinRace call for the
	// same race.
	WithinRace(ctx context.Context, raceID string, fn func(ctx context.Context, repos Repositories) error) error
}
