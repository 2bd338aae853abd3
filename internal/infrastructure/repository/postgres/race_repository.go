package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	qb "github.com/riskibarqy/fantasy-cycling/internal/platform/querybuilder"
)

type RaceRepository struct {
	db sqlx.ExtContext
}

func NewRaceRepository(db sqlx.ExtContext) *RaceRepository {
	return &RaceRepository{db: db}
}

func (r *RaceRepository) GetByID(ctx context.Context, raceID string) (race.Race, bool, error) {
	query, args, err := qb.Select("*").
		From("races").
		Where(qb.Eq("id", raceID)).
		ToSQL()
	if err != nil {
		return race.Race{}, false, fmt.Errorf("build get race query: %w", err)
	}

	var row raceTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return race.Race{}, false, nil
		}
		return race.Race{}, false, fmt.Errorf("get race: %w", err)
	}
	return raceFromRow(row), true, nil
}

func (r *RaceRepository) ListBySeason(ctx context.Context, seasonID string) ([]race.Race, error) {
	return r.list(ctx, "list season races", qb.Eq("season_id", seasonID))
}

func (r *RaceRepository) ListDueForLock(ctx context.Context, now time.Time) ([]race.Race, error) {
	return r.list(ctx, "list races due for lock",
		qb.Eq("game_status", string(race.StatusScheduled)),
		qb.Lte("lock_at", now.UTC()),
		qb.Expr("(ends_at IS NULL OR ends_at >= ?)", now.UTC()),
	)
}

func (r *RaceRepository) ListPendingSettlement(ctx context.Context) ([]race.Race, error) {
	return r.list(ctx, "list races pending settlement",
		qb.Expr("(game_status = ? OR (needs_resettle AND game_status <> ?))",
			string(race.StatusFinal),
			string(race.StatusScheduled),
		),
	)
}

func (r *RaceRepository) list(ctx context.Context, op string, conditions ...qb.Condition) ([]race.Race, error) {
	query, args, err := qb.Select("*").
		From("races").
		Where(conditions...).
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []raceTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]race.Race, 0, len(rows))
	for _, row := range rows {
		out = append(out, raceFromRow(row))
	}
	return out, nil
}

func (r *RaceRepository) Upsert(ctx context.Context, item race.Race) error {
	updatedAt := item.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	insertModel := raceInsertModel{
		ID:            item.ID,
		SeasonID:      item.SeasonID,
		Name:          item.Name,
		Discipline:    item.Discipline,
		StartsAt:      item.StartsAt.UTC(),
		EndsAt:        nullTimeOf(item.EndsAt),
		LockAt:        item.LockAt.UTC(),
		TeamTypes:     pq.StringArray(stringsOf(item.TeamTypes)),
		GameStatus:    string(item.GameStatus),
		NeedsResettle: item.NeedsResettle,
		UpdatedAt:     updatedAt.UTC(),
	}
	query, args, err := qb.InsertModel("races", insertModel).
		OnConflict("id").
		DoUpdateAllExcept().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert race query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert race: %w", err)
	}
	return nil
}

func (r *RaceRepository) Delete(ctx context.Context, raceID string) error {
	query, args, err := qb.DeleteFrom("races").
		Where(qb.Eq("id", raceID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete race query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete race: %w", err)
	}
	return nil
}

func raceFromRow(row raceTableModel) race.Race {
	teamTypes := make([]roster.TeamType, 0, len(row.TeamTypes))
	for _, item := range row.TeamTypes {
		teamTypes = append(teamTypes, roster.TeamType(item))
	}
	out := race.Race{
		ID:            row.ID,
		SeasonID:      row.SeasonID,
		Name:          row.Name,
		Discipline:    row.Discipline,
		StartsAt:      row.StartsAt.UTC(),
		LockAt:        row.LockAt.UTC(),
		TeamTypes:     teamTypes,
		GameStatus:    race.GameStatus(row.GameStatus),
		NeedsResettle: row.NeedsResettle,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if endsAt := timePtr(row.EndsAt); endsAt != nil {
		out.EndsAt = *endsAt
	}
	return out
}
