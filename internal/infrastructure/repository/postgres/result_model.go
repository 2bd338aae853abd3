package postgres

import (
	"database/sql"
	"time"
)

type raceResultTableModel struct {
	RaceID     string        `db:"race_id"`
	RiderID    string        `db:"rider_id"`
	Gender     string        `db:"gender"`
	Category   string        `db:"category"`
	Discipline string        `db:"discipline"`
	Status     string        `db:"status"`
	Position   sql.NullInt64 `db:"position"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

type resultImportTableModel struct {
	ID          string    `db:"id"`
	RaceID      string    `db:"race_id"`
	Category    string    `db:"category"`
	Gender      string    `db:"gender"`
	Discipline  string    `db:"discipline"`
	SourceURL   string    `db:"source_url"`
	IsFinal     bool      `db:"is_final"`
	ContentHash string    `db:"content_hash"`
	UpdatedAt   time.Time `db:"updated_at"`
}
