package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
)

type state struct {
	races       map[string]race.Race
	teams       map[string]roster.Team
	members     map[string][]roster.TeamMember
	riders      map[string]roster.Rider
	users       map[string]roster.User
	swaps       map[string]roster.SwapRecord
	results     map[string]map[string]result.RaceResult
	imports     map[string]map[result.SetKey]result.Import
	snapshots   map[scoring.Key]scoring.RaceSnapshot
	scores      map[scoring.Key]scoring.RaceScore
	costUpdates map[string]map[string]pricing.RiderCostUpdate
}

func newState() *state {
	return &state{
		races:       make(map[string]race.Race),
		teams:       make(map[string]roster.Team),
		members:     make(map[string][]roster.TeamMember),
		riders:      make(map[string]roster.Rider),
		users:       make(map[string]roster.User),
		swaps:       make(map[string]roster.SwapRecord),
		results:     make(map[string]map[string]result.RaceResult),
		imports:     make(map[string]map[result.SetKey]result.Import),
		snapshots:   make(map[scoring.Key]scoring.RaceSnapshot),
		scores:      make(map[scoring.Key]scoring.RaceScore),
		costUpdates: make(map[string]map[string]pricing.RiderCostUpdate),
	}
}

// clone copies every map. Stored values are never mutated in place, so
// slices inside them can be shared between generations.
func (s *state) clone() *state {
	out := newState()
	copyMap(out.races, s.races)
	copyMap(out.teams, s.teams)
	copyMap(out.members, s.members)
	copyMap(out.riders, s.riders)
	copyMap(out.users, s.users)
	copyMap(out.swaps, s.swaps)
	copyMap(out.snapshots, s.snapshots)
	copyMap(out.scores, s.scores)
	for raceID, rows := range s.results {
		out.results[raceID] = make(map[string]result.RaceResult, len(rows))
		copyMap(out.results[raceID], rows)
	}
	for raceID, rows := range s.imports {
		out.imports[raceID] = make(map[result.SetKey]result.Import, len(rows))
		copyMap(out.imports[raceID], rows)
	}
	for raceID, rows := range s.costUpdates {
		out.costUpdates[raceID] = make(map[string]pricing.RiderCostUpdate, len(rows))
		copyMap(out.costUpdates[raceID], rows)
	}
	return out
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

// Store is an in-process implementation of every repository plus a unit of
// work. Each Do runs against a private copy of the state that replaces the
// live state only when the callback succeeds.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ uow.UnitOfWork = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, repositoriesFor(work)); err != nil {
		return err
	}
	s.st = work
	return nil
}

// WithinRace shares the single store lock, so it is serialized with every
// other unit of work.
func (s *Store) WithinRace(ctx context.Context, _ string, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return s.Do(ctx, fn)
}

func repositoriesFor(st *state) uow.Repositories {
	return uow.Repositories{
		Races:   &raceRepository{st: st},
		Rosters: &rosterRepository{st: st},
		Results: &resultRepository{st: st},
		Scoring: &scoringRepository{st: st},
		Pricing: &pricingRepository{st: st},
	}
}
