package roster

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type TeamType string

const (
	TeamTypeElite  TeamType = "elite"
	TeamTypeJunior TeamType = "junior"
)

var AllTeamTypes = map[TeamType]struct{}{
	TeamTypeElite:  {},
	TeamTypeJunior: {},
}

func ParseTeamType(raw string) (TeamType, error) {
	value := TeamType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := AllTeamTypes[value]; !ok {
		return "", fmt.Errorf("unknown team type %q", raw)
	}
	return value, nil
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func ParseGender(raw string) (Gender, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "MALE", "MEN":
		return GenderMale, nil
	case "F", "FEMALE", "WOMEN":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("unknown gender %q", raw)
	}
}

type Role string

const (
	RoleStarter Role = "STARTER"
	RoleBench   Role = "BENCH"
)

// Team is a user's fantasy team of one type for one season.
type Team struct {
	ID             string
	SeasonID       string
	UserID         string
	Name           string
	TeamType       TeamType
	BudgetCap      int64
	IsLocked       bool
	LockedAt       *time.Time
	SwapsUsed      int
	SwapsRemaining int
	TotalPoints    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TeamMember is one rider on a team's current, mutable roster.
type TeamMember struct {
	TeamID       string
	RiderID      string
	Role         Role
	StarterIndex *int
	Gender       Gender
	CostAtSave   int64
}

// Roster groups a team's members into ordered starters and an optional bench rider.
type Roster struct {
	Starters []TeamMember
	Bench    *TeamMember
}

// BuildRoster orders starters by slot, falling back to rider id when slots
// are missing so the result is always deterministic. A roster holds one bench
// rider; when several are stored the lowest rider id is kept.
func BuildRoster(members []TeamMember) Roster {
	out := Roster{}
	for _, member := range members {
		switch member.Role {
		case RoleStarter:
			out.Starters = append(out.Starters, member)
		case RoleBench:
			if out.Bench == nil || member.RiderID < out.Bench.RiderID {
				bench := member
				out.Bench = &bench
			}
		}
	}

	sort.SliceStable(out.Starters, func(i, j int) bool {
		left, right := out.Starters[i], out.Starters[j]
		switch {
		case left.StarterIndex != nil && right.StarterIndex != nil:
			if *left.StarterIndex != *right.StarterIndex {
				return *left.StarterIndex < *right.StarterIndex
			}
		case left.StarterIndex != nil:
			return true
		case right.StarterIndex != nil:
			return false
		}
		return left.RiderID < right.RiderID
	})
	return out
}

// Rider is the live rider record, including the current dynamic cost.
type Rider struct {
	ID        string
	UCIID     string
	Name      string
	Gender    Gender
	Cost      int64
	UpdatedAt time.Time
}

type User struct {
	ID          string
	DisplayName string
}

// SwapRecord logs a roster transfer made against a race window.
type SwapRecord struct {
	ID         string
	TeamID     string
	RaceID     string
	OutRiderID string
	InRiderID  string
	CreatedAt  time.Time
}
