package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type raceTableModel struct {
	ID            string         `db:"id"`
	SeasonID      string         `db:"season_id"`
	Name          string         `db:"name"`
	Discipline    string         `db:"discipline"`
	StartsAt      time.Time      `db:"starts_at"`
	EndsAt        sql.NullTime   `db:"ends_at"`
	LockAt        time.Time      `db:"lock_at"`
	TeamTypes     pq.StringArray `db:"team_types"`
	GameStatus    string         `db:"game_status"`
	NeedsResettle bool           `db:"needs_resettle"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type raceInsertModel struct {
	ID            string         `db:"id"`
	SeasonID      string         `db:"season_id"`
	Name          string         `db:"name"`
	Discipline    string         `db:"discipline"`
	StartsAt      time.Time      `db:"starts_at"`
	EndsAt        sql.NullTime   `db:"ends_at"`
	LockAt        time.Time      `db:"lock_at"`
	TeamTypes     pq.StringArray `db:"team_types"`
	GameStatus    string         `db:"game_status"`
	NeedsResettle bool           `db:"needs_resettle"`
	UpdatedAt     time.Time      `db:"updated_at"`
}
