package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	qb "github.com/riskibarqy/fantasy-cycling/internal/platform/querybuilder"
)

type RosterRepository struct {
	db sqlx.ExtContext
}

func NewRosterRepository(db sqlx.ExtContext) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListTeamsBySeason(ctx context.Context, seasonID string) ([]roster.Team, error) {
	query, args, err := qb.Select("*").
		From("teams").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season teams query: %w", err)
	}

	var rows []teamTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season teams: %w", err)
	}

	out := make([]roster.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Team{
			ID:             row.ID,
			SeasonID:       row.SeasonID,
			UserID:         row.UserID,
			Name:           row.Name,
			TeamType:       roster.TeamType(row.TeamType),
			BudgetCap:      row.BudgetCap,
			IsLocked:       row.IsLocked,
			LockedAt:       timePtr(row.LockedAt),
			SwapsUsed:      row.SwapsUsed,
			SwapsRemaining: row.SwapsRemaining,
			TotalPoints:    row.TotalPoints,
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *RosterRepository) ListMembersByTeamIDs(ctx context.Context, teamIDs []string) ([]roster.TeamMember, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select("*").
		From("team_members").
		Where(qb.Any("team_id", pq.Array(teamIDs))).
		OrderBy("team_id", "starter_index NULLS LAST", "rider_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team members query: %w", err)
	}

	var rows []teamMemberTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	out := make([]roster.TeamMember, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.TeamMember{
			TeamID:       row.TeamID,
			RiderID:      row.RiderID,
			Role:         roster.Role(row.Role),
			StarterIndex: intPtr(row.StarterIndex),
			Gender:       roster.Gender(row.Gender),
			CostAtSave:   row.CostAtSave,
		})
	}
	return out, nil
}

func (r *RosterRepository) MarkTeamsLocked(ctx context.Context, teamIDs []string, lockedAt time.Time) error {
	if len(teamIDs) == 0 {
		return nil
	}
	query, args, err := qb.Update("teams").
		Set("is_locked", true).
		Set("locked_at", lockedAt.UTC()).
		Set("updated_at", lockedAt.UTC()).
		Where(qb.Any("id", pq.Array(teamIDs))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark teams locked query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark teams locked: %w", err)
	}
	return nil
}

func (r *RosterRepository) AddTeamPoints(ctx context.Context, teamID string, delta int) error {
	query, args, err := qb.Update("teams").
		SetExpr("total_points", "total_points + ?", delta).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add team points query: %w", err)
	}
	return r.execOne(ctx, query, args, "add team points", "team="+teamID)
}

func (r *RosterRepository) ListRidersByIDs(ctx context.Context, riderIDs []string) ([]roster.Rider, error) {
	if len(riderIDs) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select("*").
		From("riders").
		Where(qb.Any("id", pq.Array(riderIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list riders query: %w", err)
	}

	var rows []riderTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list riders: %w", err)
	}

	out := make([]roster.Rider, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Rider{
			ID:        row.ID,
			UCIID:     row.UCIID,
			Name:      row.Name,
			Gender:    roster.Gender(row.Gender),
			Cost:      row.Cost,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *RosterRepository) UpdateRiderCost(ctx context.Context, riderID string, cost int64, updatedAt time.Time) error {
	query, args, err := qb.Update("riders").
		Set("cost", cost).
		Set("updated_at", updatedAt.UTC()).
		Where(qb.Eq("id", riderID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update rider cost query: %w", err)
	}
	return r.execOne(ctx, query, args, "update rider cost", "rider="+riderID)
}

func (r *RosterRepository) ListUsersByIDs(ctx context.Context, userIDs []string) ([]roster.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select("id", "display_name", "created_at").
		From("users").
		Where(qb.Any("id", pq.Array(userIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]roster.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.User{ID: row.ID, DisplayName: row.DisplayName})
	}
	return out, nil
}

func (r *RosterRepository) DeleteSwapsByRace(ctx context.Context, raceID string) (int64, error) {
	return deleteByRace(ctx, r.db, "team_swaps", raceID)
}

func (r *RosterRepository) execOne(ctx context.Context, query string, args []any, op, target string) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: no row for %s", op, target)
	}
	return nil
}

func deleteByRace(ctx context.Context, db sqlx.ExecerContext, table, raceID string) (int64, error) {
	query, args, err := qb.DeleteFrom(table).
		Where(qb.Eq("race_id", raceID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete %s query: %w", table, err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s rows affected: %w", table, err)
	}
	return affected, nil
}
