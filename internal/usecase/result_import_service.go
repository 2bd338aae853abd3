package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/fingerprint"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/id"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type ImportEntry struct {
	RiderID  string `json:"riderId" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=FIN DNF DNS DSQ OTL fin dnf dns dsq otl"`
	Position *int   `json:"position,omitempty" validate:"omitempty,min=1"`
}

// ImportInput is one already-fetched result set for a race.
type ImportInput struct {
	Gender     string        `json:"gender" validate:"required"`
	Category   string        `json:"category" validate:"required"`
	Discipline string        `json:"discipline" validate:"required,max=32"`
	SourceURL  string        `json:"sourceUrl,omitempty" validate:"omitempty,url"`
	IsFinal    bool          `json:"isFinal"`
	Results    []ImportEntry `json:"results" validate:"dive"`
}

type ImportResult struct {
	RaceID        string `json:"raceId"`
	Updated       int    `json:"updated"`
	NeedsResettle bool   `json:"needsResettle"`
	GameStatus    string `json:"gameStatus"`
}

type ResultImportService struct {
	uow      uow.UnitOfWork
	ids      id.Generator
	policy   scoring.SettlementPolicy
	validate *validator.Validate
	logger   *logging.Logger
	metrics  *Metrics
	now      func() time.Time
	seasonHooks
}

func NewResultImportService(unit uow.UnitOfWork, ids id.Generator, policy scoring.SettlementPolicy, logger *logging.Logger, metrics *Metrics) *ResultImportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultImportService{
		uow:      unit,
		ids:      ids,
		policy:   policy,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// UpsertRaceResults replaces the rider rows named by the batch and records
// the submission for its result set. Rows of other riders are untouched.
func (s *ResultImportService) UpsertRaceResults(ctx context.Context, raceID string, input ImportInput) (out ImportResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultImportService.UpsertRaceResults",
		attribute.String("race.id", raceID),
		attribute.String("result.category", input.Category),
		attribute.String("result.gender", input.Gender),
	)
	started := s.now()
	defer func() {
		s.metrics.observe("import", s.now().Sub(started).Seconds(), err)
		endUsecaseSpan(span, err)
	}()

	raceID = strings.TrimSpace(raceID)
	if raceID == "" {
		return ImportResult{}, fmt.Errorf("%w: race id is required", ErrInvalidInput)
	}
	batch, err := s.parseBatch(input)
	if err != nil {
		return ImportResult{}, err
	}
	contentHash, err := result.BatchHash(batch)
	if err != nil {
		return ImportResult{}, fmt.Errorf("fingerprint result batch: %w", err)
	}

	out = ImportResult{RaceID: raceID}
	var seasonID string
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
			return fmt.Errorf("%w: race must be locked before importing results (race=%s status=%s)", ErrRaceNotLocked, raceID, item.GameStatus)
		}

		current, err := repos.Results.ListByRace(ctx, raceID)
		if err != nil {
			return fmt.Errorf("list race results: %w", err)
		}
		currentByRider := make(map[string]result.RaceResult, len(current))
		for _, row := range current {
			currentByRider[row.RiderID] = row
		}

		now := s.now().UTC()
		changed := make([]result.RaceResult, 0, len(batch.Entries))
		for _, entry := range batch.Entries {
			row := result.RaceResult{
				RaceID:     raceID,
				RiderID:    entry.RiderID,
				Gender:     batch.Gender,
				Category:   batch.Category,
				Discipline: batch.Discipline,
				Outcome:    entry.Outcome,
				UpdatedAt:  now,
			}
			if previous, ok := currentByRider[entry.RiderID]; ok && sameResult(previous, row) {
				continue
			}
			changed = append(changed, row)
			currentByRider[entry.RiderID] = row
		}
		if len(changed) > 0 {
			if err := repos.Results.UpsertResults(ctx, changed); err != nil {
				return fmt.Errorf("upsert race results: %w", err)
			}
		}
		out.Updated = len(changed)

		importID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate import id: %w", err)
		}
		if err := repos.Results.UpsertImport(ctx, result.Import{
			ID:          importID,
			RaceID:      raceID,
			Category:    batch.Category,
			Gender:      batch.Gender,
			Discipline:  batch.Discipline,
			SourceURL:   batch.SourceURL,
			IsFinal:     batch.IsFinal,
			ContentHash: contentHash,
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("upsert result import: %w", err)
		}

		raceChanged, err := s.flagResettle(ctx, repos, &item, currentByRider, len(changed) > 0)
		if err != nil {
			return err
		}

		imports, err := repos.Results.ListImportsByRace(ctx, raceID)
		if err != nil {
			return fmt.Errorf("list result imports: %w", err)
		}
		if s.policy.Complete(imports) && item.Advance(race.StatusFinal) {
			raceChanged = true
		}

		if raceChanged {
			item.UpdatedAt = now
			if err := repos.Races.Upsert(ctx, item); err != nil {
				return fmt.Errorf("update race: %w", err)
			}
		}
		out.NeedsResettle = item.NeedsResettle
		out.GameStatus = string(item.GameStatus)
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "import race results failed", "race_id", raceID, "result_set", batch.Key().String(), "error", err)
		return ImportResult{}, err
	}

	s.metrics.imported(batch.Key().String(), out.Updated)
	if out.Updated > 0 {
		s.notify(ctx, seasonID)
	}
	s.logger.InfoContext(ctx, "race results imported",
		"race_id", raceID,
		"result_set", batch.Key().String(),
		"is_final", batch.IsFinal,
		"updated", out.Updated,
		"needs_resettle", out.NeedsResettle,
		"game_status", out.GameStatus,
	)
	return out, nil
}

// flagResettle marks the race when a prior settlement used results that no
// longer match. Stored scores and cost updates both carry the hash they were
// computed from; a settled race with neither is flagged on any change.
func (s *ResultImportService) flagResettle(ctx context.Context, repos uow.Repositories, item *race.Race, rows map[string]result.RaceResult, changed bool) (bool, error) {
	if item.NeedsResettle {
		return false, nil
	}
	scores, err := repos.Scoring.ListScoresByRace(ctx, item.ID)
	if err != nil {
		return false, fmt.Errorf("list race scores: %w", err)
	}
	updates, err := repos.Pricing.ListByRace(ctx, item.ID)
	if err != nil {
		return false, fmt.Errorf("list cost updates: %w", err)
	}

	used := make([]string, 0, len(scores)+len(updates))
	for _, score := range scores {
		used = append(used, score.ResultsHashUsed)
	}
	for _, update := range updates {
		used = append(used, update.ResultsHash)
	}
	if len(used) == 0 {
		if changed && item.GameStatus == race.StatusSettled {
			item.NeedsResettle = true
			return true, nil
		}
		return false, nil
	}

	all := make([]result.RaceResult, 0, len(rows))
	for _, row := range rows {
		all = append(all, row)
	}
	resultsHash, err := result.Hash(all)
	if err != nil {
		return false, fmt.Errorf("fingerprint race results: %w", err)
	}
	for _, hash := range used {
		if !fingerprint.Equal(hash, resultsHash) {
			item.NeedsResettle = true
			return true, nil
		}
	}
	return false, nil
}

func (s *ResultImportService) parseBatch(input ImportInput) (result.Batch, error) {
	if err := s.validate.Struct(input); err != nil {
		return result.Batch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	category, err := result.ParseCategory(input.Category)
	if err != nil {
		return result.Batch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	gender, err := roster.ParseGender(input.Gender)
	if err != nil {
		return result.Batch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	batch := result.Batch{
		Category:   category,
		Gender:     gender,
		Discipline: strings.ToUpper(strings.TrimSpace(input.Discipline)),
		SourceURL:  strings.TrimSpace(input.SourceURL),
		IsFinal:    input.IsFinal,
		Entries:    make([]result.Entry, 0, len(input.Results)),
	}
	seen := make(map[string]struct{}, len(input.Results))
	for idx, row := range input.Results {
		riderID := strings.TrimSpace(row.RiderID)
		if riderID == "" {
			return result.Batch{}, fmt.Errorf("%w: results[%d]: rider id is blank", ErrInvalidInput, idx)
		}
		if _, dup := seen[riderID]; dup {
			return result.Batch{}, fmt.Errorf("%w: duplicate rider %s in results", ErrInvalidInput, riderID)
		}
		seen[riderID] = struct{}{}

		status, err := result.ParseStatus(row.Status)
		if err != nil {
			return result.Batch{}, fmt.Errorf("%w: results[%d]: %v", ErrInvalidInput, idx, err)
		}
		outcome, err := result.NewOutcome(status, row.Position)
		if err != nil {
			return result.Batch{}, fmt.Errorf("%w: results[%d] rider=%s: %v", ErrInvalidInput, idx, riderID, err)
		}
		batch.Entries = append(batch.Entries, result.Entry{RiderID: riderID, Outcome: outcome})
	}
	return batch, nil
}

func sameResult(a, b result.RaceResult) bool {
	return a.Outcome == b.Outcome &&
		a.Gender == b.Gender &&
		a.Category == b.Category &&
		a.Discipline == b.Discipline
}
