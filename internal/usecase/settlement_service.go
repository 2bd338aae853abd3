package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/pricing"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/id"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type SettleOptions struct {
	// Force settles even when gating result sets are not final yet. The race
	// is not moved to settled while sets are missing.
	Force bool
}

type SettleResult struct {
	RaceID        string   `json:"raceId"`
	UpdatedScores int      `json:"updatedScores"`
	CostUpdates   int      `json:"costUpdates"`
	MissingSets   []string `json:"missingSets,omitempty"`
	GameStatus    string   `json:"gameStatus"`
}

type SettleSweepItem struct {
	RaceID string       `json:"raceId"`
	Result SettleResult `json:"result"`
	Err    error        `json:"-"`
}

// SettlementConfig holds the scoring and pricing rules applied on settle.
type SettlementConfig struct {
	Calculator scoring.Calculator
	Policy     scoring.SettlementPolicy
	Pricing    pricing.Rule
	MaxWorkers int
}

func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		Calculator: scoring.NewCalculator(scoring.DefaultPointsTable(), scoring.DefaultSubstitutionRule()),
		Policy:     scoring.DefaultSettlementPolicy(),
		Pricing:    pricing.DefaultRule(),
		MaxWorkers: 4,
	}
}

type SettlementService struct {
	uow     uow.UnitOfWork
	ids     id.Generator
	cfg     SettlementConfig
	logger  *logging.Logger
	metrics *Metrics
	now     func() time.Time
	seasonHooks
}

func NewSettlementService(unit uow.UnitOfWork, ids id.Generator, cfg SettlementConfig, logger *logging.Logger, metrics *Metrics) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	return &SettlementService{
		uow:     unit,
		ids:     ids,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// SettleRace scores every snapshot of the race and reprices its riders.
// Scores whose snapshot and results fingerprints are unchanged are left
// alone, so repeated calls are no-ops until results change.
func (s *SettlementService) SettleRace(ctx context.Context, raceID string, opts SettleOptions) (out SettleResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleRace",
		attribute.String("race.id", raceID),
		attribute.Bool("settle.force", opts.Force),
	)
	started := s.now()
	defer func() {
		s.metrics.observe("settle", s.now().Sub(started).Seconds(), err)
		endUsecaseSpan(span, err)
	}()

	raceID = strings.TrimSpace(raceID)
	if raceID == "" {
		return SettleResult{}, fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}

	out = SettleResult{RaceID: raceID}
	var (
		seasonID    string
		raceChanged bool
	)
	err = s.uow.WithinRace(ctx, raceID, func(ctx context.Context, repos uow.Repositories) error {
		item, exists, err := repos.Races.GetByID(ctx, raceID)
		if err != nil {
			return fmt.Errorf("get race: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: race=%s", ErrNotFound, raceID)
		}
		seasonID = item.SeasonID
		if !item.GameStatus.AtLeast(race.StatusLocked) {
			return fmt.Errorf("%w: race must be locked before settling (race=%s status=%s)", ErrRaceNotLocked, raceID, item.GameStatus)
		}

		imports, err := repos.Results.ListImportsByRace(ctx, raceID)
		if err != nil {
			return fmt.Errorf("list result imports: %w", err)
		}
		missing := s.cfg.Policy.Missing(imports)
		for _, key := range missing {
			out.MissingSets = append(out.MissingSets, key.String())
		}
		if len(missing) > 0 {
			if !opts.Force {
				return fmt.Errorf("%w for %s", ErrMissingFinalResults, strings.Join(out.MissingSets, ", "))
			}
			s.logger.WarnContext(ctx, "settling race with missing final results", "race_id", raceID, "missing_sets", out.MissingSets)
		}

		rows, err := repos.Results.ListByRace(ctx, raceID)
		if err != nil {
			return fmt.Errorf("list race results: %w", err)
		}
		resultsHash, err := result.Hash(rows)
		if err != nil {
			return fmt.Errorf("fingerprint race results: %w", err)
		}

		now := s.now().UTC()
		updated, err := s.settleScores(ctx, repos, raceID, rows, resultsHash, now)
		if err != nil {
			return err
		}
		out.UpdatedScores = updated

		if len(missing) == 0 {
			costUpdates, err := s.reprice(ctx, repos, raceID, rows, resultsHash, now)
			if err != nil {
				return err
			}
			out.CostUpdates = costUpdates
		}

		raceChanged = item.NeedsResettle
		item.NeedsResettle = false
		if len(missing) == 0 && item.Advance(race.StatusSettled) {
			raceChanged = true
		}
		if raceChanged {
			item.UpdatedAt = now
			if err := repos.Races.Upsert(ctx, item); err != nil {
				return fmt.Errorf("update race: %w", err)
			}
		}
		out.GameStatus = string(item.GameStatus)
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "settle race failed", "race_id", raceID, "force", opts.Force, "error", err)
		return SettleResult{}, err
	}

	s.metrics.settled(out.UpdatedScores, out.CostUpdates)
	if raceChanged || out.UpdatedScores > 0 || out.CostUpdates > 0 {
		s.notify(ctx, seasonID)
	}
	logFn := s.logger.InfoContext
	if opts.Force {
		logFn = s.logger.WarnContext
	}
	logFn(ctx, "race settled",
		"race_id", raceID,
		"force", opts.Force,
		"updated_scores", out.UpdatedScores,
		"cost_updates", out.CostUpdates,
		"game_status", out.GameStatus,
	)
	return out, nil
}

func (s *SettlementService) settleScores(
	ctx context.Context,
	repos uow.Repositories,
	raceID string,
	rows []result.RaceResult,
	resultsHash string,
	now time.Time,
) (int, error) {
	snapshots, err := repos.Scoring.ListSnapshotsByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("list race snapshots: %w", err)
	}
	scores, err := repos.Scoring.ListScoresByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("list race scores: %w", err)
	}
	scoreByKey := make(map[scoring.Key]scoring.RaceScore, len(scores))
	for _, score := range scores {
		scoreByKey[score.Key()] = score
	}
	byRider := make(map[string]result.RaceResult, len(rows))
	for _, row := range rows {
		byRider[row.RiderID] = row
	}

	updated := 0
	for _, snapshot := range snapshots {
		previous, found := scoreByKey[snapshot.Key()]
		if found && previous.UpToDate(snapshot.SnapshotHash, resultsHash) {
			continue
		}

		breakdown := s.cfg.Calculator.Score(snapshot, byRider)
		score := scoring.RaceScore{
			ID:               previous.ID,
			RaceID:           raceID,
			UserID:           snapshot.UserID,
			TeamID:           snapshot.TeamID,
			TeamType:         snapshot.TeamType,
			TotalPoints:      breakdown.TotalPoints,
			Breakdown:        breakdown,
			SnapshotHashUsed: snapshot.SnapshotHash,
			ResultsHashUsed:  resultsHash,
			SettledAt:        now,
		}
		if !found {
			if score.ID, err = s.ids.NewID(); err != nil {
				return 0, fmt.Errorf("generate score id: %w", err)
			}
		}
		if err := repos.Scoring.UpsertScore(ctx, score); err != nil {
			return 0, fmt.Errorf("upsert race score user=%s: %w", snapshot.UserID, err)
		}

		if delta := score.TotalPoints - previous.TotalPoints; delta != 0 {
			if err := repos.Rosters.AddTeamPoints(ctx, snapshot.TeamID, delta); err != nil {
				return 0, fmt.Errorf("add team points team=%s: %w", snapshot.TeamID, err)
			}
		}
		updated++
	}
	return updated, nil
}

func (s *SettlementService) reprice(
	ctx context.Context,
	repos uow.Repositories,
	raceID string,
	rows []result.RaceResult,
	resultsHash string,
	now time.Time,
) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	existingRows, err := repos.Pricing.ListByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("list cost updates: %w", err)
	}
	existing := make(map[string]pricing.RiderCostUpdate, len(existingRows))
	for _, row := range existingRows {
		existing[row.RiderID] = row
	}

	riderIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		riderIDs = append(riderIDs, row.RiderID)
	}
	riderRows, err := repos.Rosters.ListRidersByIDs(ctx, riderIDs)
	if err != nil {
		return 0, fmt.Errorf("list riders: %w", err)
	}
	riders := make(map[string]roster.Rider, len(riderRows))
	for _, rider := range riderRows {
		riders[rider.ID] = rider
	}

	changes := pricing.Plan(s.cfg.Pricing, s.cfg.Calculator.Table, raceID, rows, riders, existing, resultsHash, now)
	for _, change := range changes {
		update := change.Update
		if update.ID == "" {
			if update.ID, err = s.ids.NewID(); err != nil {
				return 0, fmt.Errorf("generate cost update id: %w", err)
			}
		}
		if err := repos.Pricing.Upsert(ctx, update); err != nil {
			return 0, fmt.Errorf("upsert cost update rider=%s: %w", update.RiderID, err)
		}
		if err := repos.Rosters.UpdateRiderCost(ctx, update.RiderID, change.LiveCost, now); err != nil {
			return 0, fmt.Errorf("update rider cost rider=%s: %w", update.RiderID, err)
		}
	}
	return len(changes), nil
}

// SettlePending settles every race that is final or flagged for
// resettlement, several races at a time. Per-race failures are reported in
// the returned items.
func (s *SettlementService) SettlePending(ctx context.Context) ([]SettleSweepItem, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettlePending")
	defer span.End()

	var pending []race.Race
	if err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		items, err := repos.Races.ListPendingSettlement(ctx)
		if err != nil {
			return fmt.Errorf("list races pending settlement: %w", err)
		}
		pending = items
		return nil
	}); err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(pending) {
		workerCount = len(pending)
	}
	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make([]SettleSweepItem, 0, len(pending))
	)
	for _, item := range pending {
		raceID := item.ID
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			res, err := s.SettleRace(ctx, raceID, SettleOptions{})
			mu.Lock()
			out = append(out, SettleSweepItem{RaceID: raceID, Result: res, Err: err})
			mu.Unlock()
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit settle task race=%s: %w", raceID, err)
		}
	}
	wg.Wait()

	sortSweep(out, func(item SettleSweepItem) string { return item.RaceID })
	return out, nil
}

func sortSweep[T any](items []T, key func(T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}
