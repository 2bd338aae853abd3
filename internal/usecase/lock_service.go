package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/id"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

type LockOptions struct {
	// Force re-snapshots teams whose roster changed since the last lock and
	// ignores a closed race window.
	Force bool
}

type LockResult struct {
	RaceID        string `json:"raceId"`
	LockedTeams   int    `json:"lockedTeams"`
	SkippedTeams  int    `json:"skippedTeams"`
	NeedsResettle bool   `json:"needsResettle,omitempty"`
}

type LockSweepItem struct {
	RaceID string     `json:"raceId"`
	Result LockResult `json:"result"`
	Err    error      `json:"-"`
}

type LockService struct {
	uow     uow.UnitOfWork
	ids     id.Generator
	logger  *logging.Logger
	metrics *Metrics
	now     func() time.Time
}

func NewLockService(unit uow.UnitOfWork, ids id.Generator, logger *logging.Logger, metrics *Metrics) *LockService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LockService{
		uow:     unit,
		ids:     ids,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// LockRace freezes the roster of every eligible team into a race snapshot
// and moves the race to locked. Repeat calls report teams as skipped. Once
// results are final only a forced lock writes snapshots, and doing so flags
// the race for resettlement.
func (s *LockService) LockRace(ctx context.Context, raceID string, opts LockOptions) (out LockResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockService.LockRace",
		attribute.String("race.id", raceID),
		attribute.Bool("lock.force", opts.Force),
	)
	started := s.now()
	defer func() {
		s.metrics.observe("lock", s.now().Sub(started).Seconds(), err)
		endUsecaseSpan(span, err)
	}()

	raceID = strings.TrimSpace(raceID)
	if raceID == "" {
		return LockResult{}, fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}

	out = LockResult{RaceID: raceID}
	err = s.uow.WithinRace(ctx, raceID, func(ctx context.Context, repos uow.Repositories) error {
		item, exists, err := repos.Races.GetByID(ctx, raceID)
		if err != nil {
			return fmt.Errorf("get race: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: race=%s", ErrNotFound, raceID)
		}

		now := s.now().UTC()
		if item.GameStatus == race.StatusScheduled && item.WindowClosed(now) && !opts.Force {
			return fmt.Errorf("%w: race=%s ended at %s", ErrRaceWindowClosed, raceID, item.EndsAt.UTC().Format(time.RFC3339))
		}

		teams, err := repos.Rosters.ListTeamsBySeason(ctx, item.SeasonID)
		if err != nil {
			return fmt.Errorf("list season teams: %w", err)
		}
		eligible := make([]roster.Team, 0, len(teams))
		teamIDs := make([]string, 0, len(teams))
		for _, team := range teams {
			if !item.AppliesTo(team.TeamType) {
				continue
			}
			eligible = append(eligible, team)
			teamIDs = append(teamIDs, team.ID)
		}

		members, err := repos.Rosters.ListMembersByTeamIDs(ctx, teamIDs)
		if err != nil {
			return fmt.Errorf("list team members: %w", err)
		}
		membersByTeam := make(map[string][]roster.TeamMember, len(eligible))
		for _, member := range members {
			membersByTeam[member.TeamID] = append(membersByTeam[member.TeamID], member)
		}

		pastLock := item.GameStatus.AtLeast(race.StatusFinal)
		locked := make([]string, 0, len(eligible))
		for _, team := range eligible {
			snapshot, err := scoring.NewSnapshot(raceID, team, membersByTeam[team.ID], now)
			if err != nil {
				if crerr.Is(err, scoring.ErrEmptyRoster) {
					continue
				}
				return fmt.Errorf("build snapshot team=%s: %w", team.ID, err)
			}

			existing, found, err := repos.Scoring.GetSnapshot(ctx, snapshot.Key())
			if err != nil {
				return fmt.Errorf("get snapshot team=%s: %w", team.ID, err)
			}
			if found && (!opts.Force || existing.SnapshotHash == snapshot.SnapshotHash) {
				out.SkippedTeams++
				continue
			}
			if !found && pastLock && !opts.Force {
				out.SkippedTeams++
				continue
			}

			if found {
				snapshot.ID = existing.ID
			} else if snapshot.ID, err = s.ids.NewID(); err != nil {
				return fmt.Errorf("generate snapshot id: %w", err)
			}
			if err := repos.Scoring.UpsertSnapshot(ctx, snapshot); err != nil {
				return fmt.Errorf("upsert snapshot team=%s: %w", team.ID, err)
			}
			locked = append(locked, team.ID)
		}

		if len(locked) > 0 {
			if err := repos.Rosters.MarkTeamsLocked(ctx, locked, now); err != nil {
				return fmt.Errorf("mark teams locked: %w", err)
			}
		}
		out.LockedTeams = len(locked)
		if len(locked) > 0 && pastLock {
			item.NeedsResettle = true
		}
		out.NeedsResettle = item.NeedsResettle

		if item.Advance(race.StatusLocked) || len(locked) > 0 {
			item.UpdatedAt = now
			if err := repos.Races.Upsert(ctx, item); err != nil {
				return fmt.Errorf("update race: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "lock race failed", "race_id", raceID, "force", opts.Force, "error", err)
		return LockResult{}, err
	}

	s.metrics.lock(out.LockedTeams, out.SkippedTeams)
	if opts.Force {
		s.logger.WarnContext(ctx, "race locked with force", "race_id", raceID, "locked_teams", out.LockedTeams, "skipped_teams", out.SkippedTeams, "needs_resettle", out.NeedsResettle)
	} else {
		s.logger.InfoContext(ctx, "race locked", "race_id", raceID, "locked_teams", out.LockedTeams, "skipped_teams", out.SkippedTeams)
	}
	return out, nil
}

// LockDueRaces locks every scheduled race whose lock time has passed. A
// failure on one race does not stop the others.
func (s *LockService) LockDueRaces(ctx context.Context, maxWorkers int) ([]LockSweepItem, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockService.LockDueRaces")
	defer span.End()

	var due []race.Race
	if err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		items, err := repos.Races.ListDueForLock(ctx, s.now().UTC())
		if err != nil {
			return fmt.Errorf("list races due for lock: %w", err)
		}
		due = items
		return nil
	}); err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	workers := pool.NewWithResults[LockSweepItem]().WithMaxGoroutines(maxWorkers)
	for _, item := range due {
		raceID := item.ID
		workers.Go(func() LockSweepItem {
			res, err := s.LockRace(ctx, raceID, LockOptions{})
			return LockSweepItem{RaceID: raceID, Result: res, Err: err}
		})
	}
	out := workers.Wait()
	sortSweep(out, func(item LockSweepItem) string { return item.RaceID })
	return out, nil
}
