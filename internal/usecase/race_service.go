package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// DeleteResult counts the rows removed by a race delete.
type DeleteResult struct {
	RaceID      string `json:"raceId"`
	CostUpdates int64  `json:"costUpdates"`
	Scores      int64  `json:"scores"`
	Snapshots   int64  `json:"snapshots"`
	Results     int64  `json:"results"`
	Imports     int64  `json:"imports"`
	Swaps       int64  `json:"swaps"`

	// TeamsAdjusted and RidersRepriced count the settlement effects reversed.
	TeamsAdjusted  int `json:"teamsAdjusted"`
	RidersRepriced int `json:"ridersRepriced"`
}

type RaceService struct {
	uow    uow.UnitOfWork
	rule   pricing.Rule
	logger *logging.Logger
	now    func() time.Time
	seasonHooks
}

// NewRaceService builds the race read and delete service. rule bounds the
// rider costs restored when a settled race is deleted.
func NewRaceService(unit uow.UnitOfWork, rule pricing.Rule, logger *logging.Logger) *RaceService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RaceService{
		uow:    unit,
		rule:   rule,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *RaceService) GetRace(ctx context.Context, raceID string) (race.Race, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RaceService.GetRace", attribute.String("race.id", raceID))
	defer span.End()

	var out race.Race
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		item, err := requireRace(ctx, repos, raceID)
		out = item
		return err
	})
	return out, err
}

func (s *RaceService) ListScores(ctx context.Context, raceID string) ([]scoring.RaceScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RaceService.ListScores", attribute.String("race.id", raceID))
	defer span.End()

	var out []scoring.RaceScore
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		item, err := requireRace(ctx, repos, raceID)
		if err != nil {
			return err
		}
		out, err = repos.Scoring.ListScoresByRace(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("list race scores: %w", err)
		}
		return nil
	})
	return out, err
}

func (s *RaceService) ListSnapshots(ctx context.Context, raceID string) ([]scoring.RaceSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RaceService.ListSnapshots", attribute.String("race.id", raceID))
	defer span.End()

	var out []scoring.RaceSnapshot
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		item, err := requireRace(ctx, repos, raceID)
		if err != nil {
			return err
		}
		out, err = repos.Scoring.ListSnapshotsByRace(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("list race snapshots: %w", err)
		}
		return nil
	})
	return out, err
}

// DeleteRace removes the race and every row that depends on it in one
// transaction. Team totals and rider costs lose the race's contribution
// first. Nothing is removed when any step fails.
func (s *RaceService) DeleteRace(ctx context.Context, raceID string) (out DeleteResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RaceService.DeleteRace", attribute.String("race.id", raceID))
	defer func() { endUsecaseSpan(span, err) }()

	raceID = strings.TrimSpace(raceID)
	out = DeleteResult{RaceID: raceID}
	var seasonID string
	err = s.uow.WithinRace(ctx, raceID, func(ctx context.Context, repos uow.Repositories) error {
		item, err := requireRace(ctx, repos, raceID)
		if err != nil {
			return err
		}
		seasonID = item.SeasonID

		if out.TeamsAdjusted, err = s.revertTeamPoints(ctx, repos, raceID); err != nil {
			return err
		}
		if out.RidersRepriced, err = s.revertRiderCosts(ctx, repos, raceID); err != nil {
			return err
		}

		steps := []struct {
			name string
			dst  *int64
			run  func(context.Context, string) (int64, error)
		}{
			{name: "cost updates", dst: &out.CostUpdates, run: repos.Pricing.DeleteByRace},
			{name: "scores", dst: &out.Scores, run: repos.Scoring.DeleteScoresByRace},
			{name: "snapshots", dst: &out.Snapshots, run: repos.Scoring.DeleteSnapshotsByRace},
			{name: "results", dst: &out.Results, run: repos.Results.DeleteResultsByRace},
			{name: "imports", dst: &out.Imports, run: repos.Results.DeleteImportsByRace},
			{name: "swaps", dst: &out.Swaps, run: repos.Rosters.DeleteSwapsByRace},
		}
		for _, step := range steps {
			n, err := step.run(ctx, raceID)
			if err != nil {
				return fmt.Errorf("delete race %s: %w", step.name, err)
			}
			*step.dst = n
		}

		if err := repos.Races.Delete(ctx, raceID); err != nil {
			return fmt.Errorf("delete race: %w", err)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.logger.WarnContext(ctx, "race deleted",
		"race_id", raceID,
		"cost_updates", out.CostUpdates,
		"scores", out.Scores,
		"snapshots", out.Snapshots,
		"results", out.Results,
		"imports", out.Imports,
		"swaps", out.Swaps,
		"teams_adjusted", out.TeamsAdjusted,
		"riders_repriced", out.RidersRepriced,
	)
	s.notify(ctx, seasonID)
	return out, nil
}

func (s *RaceService) revertTeamPoints(ctx context.Context, repos uow.Repositories, raceID string) (int, error) {
	scores, err := repos.Scoring.ListScoresByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("list race scores: %w", err)
	}
	adjusted := 0
	for _, score := range scores {
		if score.TotalPoints == 0 {
			continue
		}
		if err := repos.Rosters.AddTeamPoints(ctx, score.TeamID, -score.TotalPoints); err != nil {
			return 0, fmt.Errorf("revert team points team=%s: %w", score.TeamID, err)
		}
		adjusted++
	}
	return adjusted, nil
}

func (s *RaceService) revertRiderCosts(ctx context.Context, repos uow.Repositories, raceID string) (int, error) {
	updates, err := repos.Pricing.ListByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("list cost updates: %w", err)
	}
	if len(updates) == 0 {
		return 0, nil
	}

	riderIDs := make([]string, 0, len(updates))
	for _, update := range updates {
		riderIDs = append(riderIDs, update.RiderID)
	}
	riderRows, err := repos.Rosters.ListRidersByIDs(ctx, riderIDs)
	if err != nil {
		return 0, fmt.Errorf("list riders: %w", err)
	}
	riders := make(map[string]roster.Rider, len(riderRows))
	for _, rider := range riderRows {
		riders[rider.ID] = rider
	}

	now := s.now()
	changes := pricing.Revert(s.rule, updates, riders)
	for _, change := range changes {
		if err := repos.Rosters.UpdateRiderCost(ctx, change.Update.RiderID, change.LiveCost, now); err != nil {
			return 0, fmt.Errorf("revert rider cost rider=%s: %w", change.Update.RiderID, err)
		}
	}
	return len(changes), nil
}

func requireRace(ctx context.Context, repos uow.Repositories, raceID string) (race.Race, error) {
	raceID = strings.TrimSpace(raceID)
	if raceID == "" {
		return race.Race{}, fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}
	item, exists, err := repos.Races.GetByID(ctx, raceID)
	if err != nil {
		return race.Race{}, fmt.Errorf("get race: %w", err)
	}
	if !exists {
		return race.Race{}, fmt.Errorf("%w: race=%s", ErrNotFound, raceID)
	}
	return item, nil
}
