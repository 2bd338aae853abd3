package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID             string       `db:"id"`
	SeasonID       string       `db:"season_id"`
	UserID         string       `db:"user_id"`
	Name           string       `db:"name"`
	TeamType       string       `db:"team_type"`
	BudgetCap      int64        `db:"budget_cap"`
	IsLocked       bool         `db:"is_locked"`
	LockedAt       sql.NullTime `db:"locked_at"`
	SwapsUsed      int          `db:"swaps_used"`
	SwapsRemaining int          `db:"swaps_remaining"`
	TotalPoints    int          `db:"total_points"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

type teamMemberTableModel struct {
	TeamID       string        `db:"team_id"`
	RiderID      string        `db:"rider_id"`
	Role         string        `db:"role"`
	StarterIndex sql.NullInt64 `db:"starter_index"`
	Gender       string        `db:"gender"`
	CostAtSave   int64         `db:"cost_at_save"`
}

type riderTableModel struct {
	ID        string    `db:"id"`
	UCIID     string    `db:"uci_id"`
	Name      string    `db:"name"`
	Gender    string    `db:"gender"`
	Cost      int64     `db:"cost"`
	UpdatedAt time.Time `db:"updated_at"`
}

type userTableModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}
