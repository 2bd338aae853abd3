package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cycling/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo season into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM races`); err != nil {
		return fmt.Errorf("count races for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	demo := memory.DemoSeason(now.UTC())
	exec := func(what, query string, arg map[string]any) error {
		sqlQuery, args, err := sqlx.Named(query, arg)
		if err != nil {
			return fmt.Errorf("bind seed %s query: %w", what, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		return nil
	}

	for _, u := range demo.Users {
		if err := exec("user "+u.ID, `
INSERT INTO users (id, display_name)
VALUES (:id, :display_name)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           u.ID,
			"display_name": u.DisplayName,
		}); err != nil {
			return err
		}
	}

	for _, r := range demo.Riders {
		if err := exec("rider "+r.ID, `
INSERT INTO riders (id, uci_id, name, gender, cost)
VALUES (:id, :uci_id, :name, :gender, :cost)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":     r.ID,
			"uci_id": r.UCIID,
			"name":   r.Name,
			"gender": string(r.Gender),
			"cost":   r.Cost,
		}); err != nil {
			return err
		}
	}

	for _, r := range demo.Races {
		if err := exec("race "+r.ID, `
INSERT INTO races (id, season_id, name, discipline, starts_at, ends_at, lock_at, team_types, game_status)
VALUES (:id, :season_id, :name, :discipline, :starts_at, :ends_at, :lock_at, :team_types, :game_status)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":          r.ID,
			"season_id":   r.SeasonID,
			"name":        r.Name,
			"discipline":  r.Discipline,
			"starts_at":   r.StartsAt,
			"ends_at":     nullTimeOf(r.EndsAt),
			"lock_at":     r.LockAt,
			"team_types":  pq.StringArray(stringsOf(r.TeamTypes)),
			"game_status": string(r.GameStatus),
		}); err != nil {
			return err
		}
	}

	for _, item := range demo.Teams {
		t := item.Team
		if err := exec("team "+t.ID, `
INSERT INTO teams (id, season_id, user_id, name, team_type, budget_cap, swaps_remaining)
VALUES (:id, :season_id, :user_id, :name, :team_type, :budget_cap, :swaps_remaining)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":              t.ID,
			"season_id":       t.SeasonID,
			"user_id":         t.UserID,
			"name":            t.Name,
			"team_type":       string(t.TeamType),
			"budget_cap":      t.BudgetCap,
			"swaps_remaining": t.SwapsRemaining,
		}); err != nil {
			return err
		}
		for _, m := range item.Members {
			if err := exec("team member "+t.ID+"/"+m.RiderID, `
INSERT INTO team_members (team_id, rider_id, role, starter_index, gender, cost_at_save)
VALUES (:team_id, :rider_id, :role, :starter_index, :gender, :cost_at_save)
ON CONFLICT (team_id, rider_id) DO NOTHING`, map[string]any{
				"team_id":       t.ID,
				"rider_id":      m.RiderID,
				"role":          string(m.Role),
				"starter_index": nullInt(m.StarterIndex),
				"gender":        string(m.Gender),
				"cost_at_save":  m.CostAtSave,
			}); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
