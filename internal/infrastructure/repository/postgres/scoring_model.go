package postgres

import (
	"database/sql"
	"time"
)

type raceSnapshotTableModel struct {
	ID              string    `db:"id"`
	RaceID          string    `db:"race_id"`
	UserID          string    `db:"user_id"`
	TeamID          string    `db:"team_id"`
	TeamType        string    `db:"team_type"`
	StartersJSON    []byte    `db:"starters_json"`
	BenchJSON       []byte    `db:"bench_json"`
	TotalCostAtLock int64     `db:"total_cost_at_lock"`
	SnapshotHash    string    `db:"snapshot_hash"`
	CapturedAt      time.Time `db:"captured_at"`
}

type raceSnapshotInsertModel struct {
	ID              string         `db:"id"`
	RaceID          string         `db:"race_id"`
	UserID          string         `db:"user_id"`
	TeamID          string         `db:"team_id"`
	TeamType        string         `db:"team_type"`
	StartersJSON    string         `db:"starters_json"`
	BenchJSON       sql.NullString `db:"bench_json"`
	TotalCostAtLock int64          `db:"total_cost_at_lock"`
	SnapshotHash    string         `db:"snapshot_hash"`
	CapturedAt      time.Time      `db:"captured_at"`
}

type raceScoreTableModel struct {
	ID               string    `db:"id"`
	RaceID           string    `db:"race_id"`
	UserID           string    `db:"user_id"`
	TeamID           string    `db:"team_id"`
	TeamType         string    `db:"team_type"`
	TotalPoints      int       `db:"total_points"`
	BreakdownJSON    []byte    `db:"breakdown_json"`
	SnapshotHashUsed string    `db:"snapshot_hash_used"`
	ResultsHashUsed  string    `db:"results_hash_used"`
	SettledAt        time.Time `db:"settled_at"`
}

type raceScoreInsertModel struct {
	ID               string    `db:"id"`
	RaceID           string    `db:"race_id"`
	UserID           string    `db:"user_id"`
	TeamID           string    `db:"team_id"`
	TeamType         string    `db:"team_type"`
	TotalPoints      int       `db:"total_points"`
	BreakdownJSON    string    `db:"breakdown_json"`
	SnapshotHashUsed string    `db:"snapshot_hash_used"`
	ResultsHashUsed  string    `db:"results_hash_used"`
	SettledAt        time.Time `db:"settled_at"`
}
