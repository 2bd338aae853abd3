package scoring

import (
	"errors"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/fingerprint"
)

var ErrEmptyRoster = errors.New("roster has no starters")

// Key identifies one team's artifacts for one race.
type Key struct {
	RaceID   string
	UserID   string
	TeamType roster.TeamType
}

// SnapshotRider is a frozen copy of one roster slot.
type SnapshotRider struct {
	RiderID      string        `json:"riderId"`
	Gender       roster.Gender `json:"gender"`
	StarterIndex *int          `json:"starterIndex,omitempty"`
	CostAtSave   int64         `json:"costAtSave"`
}

// RaceSnapshot is the immutable roster a team carried into a race.
type RaceSnapshot struct {
	ID              string
	RaceID          string
	UserID          string
	TeamID          string
	TeamType        roster.TeamType
	Starters        []SnapshotRider
	Bench           *SnapshotRider
	TotalCostAtLock int64
	SnapshotHash    string
	CapturedAt      time.Time
}

func (s RaceSnapshot) Key() Key {
	return Key{RaceID: s.RaceID, UserID: s.UserID, TeamType: s.TeamType}
}

type snapshotContent struct {
	TeamType roster.TeamType `json:"teamType"`
	Starters []SnapshotRider `json:"starters"`
	Bench    *SnapshotRider  `json:"bench"`
}

// NewSnapshot freezes the team's current roster. Starters keep slot order.
func NewSnapshot(raceID string, team roster.Team, members []roster.TeamMember, capturedAt time.Time) (RaceSnapshot, error) {
	current := roster.BuildRoster(members)
	if len(current.Starters) == 0 {
		return RaceSnapshot{}, ErrEmptyRoster
	}

	snapshot := RaceSnapshot{
		RaceID:     raceID,
		UserID:     team.UserID,
		TeamID:     team.ID,
		TeamType:   team.TeamType,
		Starters:   make([]SnapshotRider, 0, len(current.Starters)),
		CapturedAt: capturedAt,
	}
	for _, member := range current.Starters {
		snapshot.Starters = append(snapshot.Starters, freeze(member))
		snapshot.TotalCostAtLock += member.CostAtSave
	}
	if current.Bench != nil {
		bench := freeze(*current.Bench)
		snapshot.Bench = &bench
		snapshot.TotalCostAtLock += bench.CostAtSave
	}

	hash, err := SnapshotHash(snapshot)
	if err != nil {
		return RaceSnapshot{}, err
	}
	snapshot.SnapshotHash = hash
	return snapshot, nil
}

// SnapshotHash fingerprints the roster content of a snapshot.
func SnapshotHash(s RaceSnapshot) (string, error) {
	return fingerprint.Of(snapshotContent{
		TeamType: s.TeamType,
		Starters: s.Starters,
		Bench:    s.Bench,
	})
}

func freeze(member roster.TeamMember) SnapshotRider {
	out := SnapshotRider{
		RiderID:    member.RiderID,
		Gender:     member.Gender,
		CostAtSave: member.CostAtSave,
	}
	if member.StarterIndex != nil {
		idx := *member.StarterIndex
		out.StarterIndex = &idx
	}
	return out
}

// SlotBreakdown explains the points counted for one starter slot.
type SlotBreakdown struct {
	Slot               int           `json:"slot"`
	RiderID            string        `json:"riderId"`
	Gender             roster.Gender `json:"gender"`
	Status             result.Status `json:"status,omitempty"`
	Position           *int          `json:"position,omitempty"`
	Points             int           `json:"points"`
	Substituted        bool          `json:"substituted"`
	SubstituteRiderID  string        `json:"substituteRiderId,omitempty"`
	SubstitutePosition *int          `json:"substitutePosition,omitempty"`
}

type BenchBreakdown struct {
	RiderID    string        `json:"riderId"`
	Gender     roster.Gender `json:"gender"`
	Status     result.Status `json:"status,omitempty"`
	Position   *int          `json:"position,omitempty"`
	Points     int           `json:"points"`
	UsedInSlot *int          `json:"usedInSlot,omitempty"`
}

// Breakdown is the per-slot audit trail stored with a RaceScore.
type Breakdown struct {
	Slots         []SlotBreakdown `json:"slots"`
	Bench         *BenchBreakdown `json:"bench,omitempty"`
	Substitutions int             `json:"substitutions"`
	TotalPoints   int             `json:"totalPoints"`
}

// RaceScore is the settled result of one team for one race.
type RaceScore struct {
	ID               string
	RaceID           string
	UserID           string
	TeamID           string
	TeamType         roster.TeamType
	TotalPoints      int
	Breakdown        Breakdown
	SnapshotHashUsed string
	ResultsHashUsed  string
	SettledAt        time.Time
}

func (s RaceScore) Key() Key {
	return Key{RaceID: s.RaceID, UserID: s.UserID, TeamType: s.TeamType}
}

// UpToDate reports whether the score was computed from exactly these inputs.
func (s RaceScore) UpToDate(snapshotHash, resultsHash string) bool {
	return fingerprint.Equal(s.SnapshotHashUsed, snapshotHash) &&
		fingerprint.Equal(s.ResultsHashUsed, resultsHash)
}
