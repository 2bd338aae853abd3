package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-cycling/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db sqlx.ExtContext
}

func NewScoringRepository(db sqlx.ExtContext) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) GetSnapshot(ctx context.Context, key scoring.Key) (scoring.RaceSnapshot, bool, error) {
	query, args, err := qb.Select("*").
		From("race_snapshots").
		Where(
			qb.Eq("race_id", key.RaceID),
			qb.Eq("user_id", key.UserID),
			qb.Eq("team_type", string(key.TeamType)),
		).
		ToSQL()
	if err != nil {
		return scoring.RaceSnapshot{}, false, fmt.Errorf("build get race snapshot query: %w", err)
	}

	var row raceSnapshotTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.RaceSnapshot{}, false, nil
		}
		return scoring.RaceSnapshot{}, false, fmt.Errorf("get race snapshot: %w", err)
	}

	snapshot, err := snapshotFromRow(row)
	if err != nil {
		return scoring.RaceSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (r *ScoringRepository) ListSnapshotsByRace(ctx context.Context, raceID string) ([]scoring.RaceSnapshot, error) {
	query, args, err := qb.Select("*").
		From("race_snapshots").
		Where(qb.Eq("race_id", raceID)).
		OrderBy("user_id", "team_type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list race snapshots query: %w", err)
	}

	var rows []raceSnapshotTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list race snapshots: %w", err)
	}

	out := make([]scoring.RaceSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := snapshotFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func (r *ScoringRepository) UpsertSnapshot(ctx context.Context, snapshot scoring.RaceSnapshot) error {
	starters, err := jsonText(snapshot.Starters)
	if err != nil {
		return fmt.Errorf("encode snapshot starters: %w", err)
	}
	bench, err := nullJSONText(snapshot.Bench)
	if err != nil {
		return fmt.Errorf("encode snapshot bench: %w", err)
	}

	insertModel := raceSnapshotInsertModel{
		ID:              snapshot.ID,
		RaceID:          snapshot.RaceID,
		UserID:          snapshot.UserID,
		TeamID:          snapshot.TeamID,
		TeamType:        string(snapshot.TeamType),
		StartersJSON:    starters,
		BenchJSON:       bench,
		TotalCostAtLock: snapshot.TotalCostAtLock,
		SnapshotHash:    snapshot.SnapshotHash,
		CapturedAt:      snapshot.CapturedAt.UTC(),
	}
	query, args, err := qb.InsertModel("race_snapshots", insertModel).
		OnConflict("race_id", "user_id", "team_type").
		DoUpdateAllExcept("id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert race snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert race snapshot: %w", err)
	}
	return nil
}

func (r *ScoringRepository) DeleteSnapshotsByRace(ctx context.Context, raceID string) (int64, error) {
	return deleteByRace(ctx, r.db, "race_snapshots", raceID)
}

func (r *ScoringRepository) ListScoresByRace(ctx context.Context, raceID string) ([]scoring.RaceScore, error) {
	query, args, err := qb.Select("*").
		From("race_scores").
		Where(qb.Eq("race_id", raceID)).
		OrderBy("user_id", "team_type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list race scores query: %w", err)
	}

	var rows []raceScoreTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list race scores: %w", err)
	}

	out := make([]scoring.RaceScore, 0, len(rows))
	for _, row := range rows {
		var breakdown scoring.Breakdown
		if err := sonic.Unmarshal(row.BreakdownJSON, &breakdown); err != nil {
			return nil, fmt.Errorf("decode score breakdown id=%s: %w", row.ID, err)
		}
		out = append(out, scoring.RaceScore{
			ID:               row.ID,
			RaceID:           row.RaceID,
			UserID:           row.UserID,
			TeamID:           row.TeamID,
			TeamType:         roster.TeamType(row.TeamType),
			TotalPoints:      row.TotalPoints,
			Breakdown:        breakdown,
			SnapshotHashUsed: row.SnapshotHashUsed,
			ResultsHashUsed:  row.ResultsHashUsed,
			SettledAt:        row.SettledAt,
		})
	}
	return out, nil
}

func (r *ScoringRepository) UpsertScore(ctx context.Context, score scoring.RaceScore) error {
	breakdown, err := jsonText(score.Breakdown)
	if err != nil {
		return fmt.Errorf("encode score breakdown: %w", err)
	}

	insertModel := raceScoreInsertModel{
		ID:               score.ID,
		RaceID:           score.RaceID,
		UserID:           score.UserID,
		TeamID:           score.TeamID,
		TeamType:         string(score.TeamType),
		TotalPoints:      score.TotalPoints,
		BreakdownJSON:    breakdown,
		SnapshotHashUsed: score.SnapshotHashUsed,
		ResultsHashUsed:  score.ResultsHashUsed,
		SettledAt:        score.SettledAt.UTC(),
	}
	query, args, err := qb.InsertModel("race_scores", insertModel).
		OnConflict("race_id", "user_id", "team_type").
		DoUpdateAllExcept("id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert race score query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert race score: %w", err)
	}
	return nil
}

func (r *ScoringRepository) DeleteScoresByRace(ctx context.Context, raceID string) (int64, error) {
	return deleteByRace(ctx, r.db, "race_scores", raceID)
}

func snapshotFromRow(row raceSnapshotTableModel) (scoring.RaceSnapshot, error) {
	out := scoring.RaceSnapshot{
		ID:              row.ID,
		RaceID:          row.RaceID,
		UserID:          row.UserID,
		TeamID:          row.TeamID,
		TeamType:        roster.TeamType(row.TeamType),
		TotalCostAtLock: row.TotalCostAtLock,
		SnapshotHash:    row.SnapshotHash,
		CapturedAt:      row.CapturedAt,
	}
	if err := sonic.Unmarshal(row.StartersJSON, &out.Starters); err != nil {
		return scoring.RaceSnapshot{}, fmt.Errorf("decode snapshot starters id=%s: %w", row.ID, err)
	}
	if len(row.BenchJSON) > 0 {
		var bench scoring.SnapshotRider
		if err := sonic.Unmarshal(row.BenchJSON, &bench); err != nil {
			return scoring.RaceSnapshot{}, fmt.Errorf("decode snapshot bench id=%s: %w", row.ID, err)
		}
		out.Bench = &bench
	}
	return out, nil
}
