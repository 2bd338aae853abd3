package race

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
)

// GameStatus is the fantasy lifecycle state of a race.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLocked    GameStatus = "locked"
	StatusFinal     GameStatus = "final"
	StatusSettled   GameStatus = "settled"
)

var statusOrder = map[GameStatus]int{
	StatusScheduled: 0,
	StatusLocked:    1,
	StatusFinal:     2,
	StatusSettled:   3,
}

func ParseGameStatus(raw string) (GameStatus, error) {
	status := GameStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusOrder[status]; !ok {
		return "", fmt.Errorf("unknown game status %q", raw)
	}
	return status, nil
}

// AtLeast reports whether s is the same as or later than other.
func (s GameStatus) AtLeast(other GameStatus) bool {
	return statusOrder[s] >= statusOrder[other]
}

// Race is one event of the season that rosters are scored against.
type Race struct {
	ID            string
	SeasonID      string
	Name          string
	Discipline    string
	StartsAt      time.Time
	EndsAt        time.Time
	LockAt        time.Time
	TeamTypes     []roster.TeamType
	GameStatus    GameStatus
	NeedsResettle bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Advance moves the race forward to status. Moving backwards is a no-op and
// reports false.
func (r *Race) Advance(status GameStatus) bool {
	if statusOrder[status] <= statusOrder[r.GameStatus] {
		return false
	}
	r.GameStatus = status
	return true
}

// AppliesTo reports whether teams of the given type compete in this race.
// A race without explicit team types is open to every type.
func (r Race) AppliesTo(teamType roster.TeamType) bool {
	if len(r.TeamTypes) == 0 {
		return true
	}
	for _, item := range r.TeamTypes {
		if item == teamType {
			return true
		}
	}
	return false
}

// WindowClosed reports whether the race has already finished at now.
func (r Race) WindowClosed(now time.Time) bool {
	return !r.EndsAt.IsZero() && now.After(r.EndsAt)
}

func (r Race) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("race id is required")
	}
	if strings.TrimSpace(r.SeasonID) == "" {
		return fmt.Errorf("race season id is required")
	}
	if _, ok := statusOrder[r.GameStatus]; !ok {
		return fmt.Errorf("unknown game status %q", r.GameStatus)
	}
	if !r.StartsAt.IsZero() && !r.EndsAt.IsZero() && r.EndsAt.Before(r.StartsAt) {
		return fmt.Errorf("race end must not be before start")
	}
	return nil
}
