package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	qb "github.com/riskibarqy/fantasy-cycling/internal/platform/querybuilder"
)

var raceResultColumns = []string{"race_id", "rider_id", "gender", "category", "discipline", "status", "position", "updated_at"}

type ResultRepository struct {
	db sqlx.ExtContext
}

func NewResultRepository(db sqlx.ExtContext) *ResultRepository {
	return &ResultRepository{db: db}
}

// UpsertResults writes all rows in one statement.
func (r *ResultRepository) UpsertResults(ctx context.Context, rows []result.RaceResult) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]any, 0, len(rows))
	for _, row := range rows {
		var position *int
		if value, ok := result.PositionOf(row.Outcome); ok {
			position = &value
		}
		models = append(models, raceResultTableModel{
			RaceID:     row.RaceID,
			RiderID:    row.RiderID,
			Gender:     string(row.Gender),
			Category:   string(row.Category),
			Discipline: row.Discipline,
			Status:     string(row.Status()),
			Position:   nullInt(position),
			UpdatedAt:  row.UpdatedAt.UTC(),
		})
	}
	query, args, err := qb.InsertModel("race_results", models...).
		OnConflict("race_id", "rider_id").
		DoUpdateAllExcept().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert race results query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert race results: %w", err)
	}
	return nil
}

func (r *ResultRepository) ListByRace(ctx context.Context, raceID string) ([]result.RaceResult, error) {
	query, args, err := qb.Select(raceResultColumns...).
		From("race_results").
		Where(qb.Eq("race_id", raceID)).
		OrderBy("rider_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list race results query: %w", err)
	}

	var rows []raceResultTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list race results: %w", err)
	}

	out := make([]result.RaceResult, 0, len(rows))
	for _, row := range rows {
		status, err := result.ParseStatus(row.Status)
		if err != nil {
			return nil, fmt.Errorf("decode race result rider=%s: %w", row.RiderID, err)
		}
		outcome, err := result.NewOutcome(status, intPtr(row.Position))
		if err != nil {
			return nil, fmt.Errorf("decode race result rider=%s: %w", row.RiderID, err)
		}
		out = append(out, result.RaceResult{
			RaceID:     row.RaceID,
			RiderID:    row.RiderID,
			Gender:     roster.Gender(row.Gender),
			Category:   result.Category(row.Category),
			Discipline: row.Discipline,
			Outcome:    outcome,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *ResultRepository) DeleteResultsByRace(ctx context.Context, raceID string) (int64, error) {
	return deleteByRace(ctx, r.db, "race_results", raceID)
}

// UpsertImport keeps the id of an existing import for the same result set.
func (r *ResultRepository) UpsertImport(ctx context.Context, item result.Import) error {
	insertModel := resultImportTableModel{
		ID:          item.ID,
		RaceID:      item.RaceID,
		Category:    string(item.Category),
		Gender:      string(item.Gender),
		Discipline:  item.Discipline,
		SourceURL:   item.SourceURL,
		IsFinal:     item.IsFinal,
		ContentHash: item.ContentHash,
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
	query, args, err := qb.InsertModel("race_result_imports", insertModel).
		OnConflict("race_id", "category", "gender").
		DoUpdateAllExcept("id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert result import query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert result import: %w", err)
	}
	return nil
}

func (r *ResultRepository) ListImportsByRace(ctx context.Context, raceID string) ([]result.Import, error) {
	query, args, err := qb.Select("*").
		From("race_result_imports").
		Where(qb.Eq("race_id", raceID)).
		OrderBy("category", "gender").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list result imports query: %w", err)
	}

	var rows []resultImportTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list result imports: %w", err)
	}

	out := make([]result.Import, 0, len(rows))
	for _, row := range rows {
		out = append(out, result.Import{
			ID:          row.ID,
			RaceID:      row.RaceID,
			Category:    result.Category(row.Category),
			Gender:      roster.Gender(row.Gender),
			Discipline:  row.Discipline,
			SourceURL:   row.SourceURL,
			IsFinal:     row.IsFinal,
			ContentHash: row.ContentHash,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *ResultRepository) DeleteImportsByRace(ctx context.Context, raceID string) (int64, error) {
	return deleteByRace(ctx, r.db, "race_result_imports", raceID)
}
