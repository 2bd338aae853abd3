package memory

import (
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
)

func (s *Store) SeedRace(items ...race.Race) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.st.races[item.ID] = item
	}
}

// SeedTeam stores a team and replaces its current roster.
func (s *Store) SeedTeam(team roster.Team, members ...roster.TeamMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.teams[team.ID] = team
	rows := make([]roster.TeamMember, 0, len(members))
	for _, member := range members {
		member.TeamID = team.ID
		rows = append(rows, member)
	}
	s.st.members[team.ID] = rows
}

func (s *Store) SeedRider(items ...roster.Rider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.st.riders[item.ID] = item
	}
}

func (s *Store) SeedUser(items ...roster.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.st.users[item.ID] = item
	}
}

func (s *Store) SeedSwap(items ...roster.SwapRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.st.swaps[item.ID] = item
	}
}

const (
	DemoSeasonID = "xco-world-cup-2026"
	DemoRaceID   = "xco-nove-mesto-2026"
)

// Demo is a small self-contained season used by the demo commands.
type Demo struct {
	Races  []race.Race
	Riders []roster.Rider
	Users  []roster.User
	Teams  []DemoTeam
}

type DemoTeam struct {
	Team    roster.Team
	Members []roster.TeamMember
}

// DemoSeason builds one elite race with two teams sharing a small rider pool.
func DemoSeason(now time.Time) Demo {
	riders := []roster.Rider{
		{ID: "m1", Name: "Tom Pidcock", Gender: roster.GenderMale, Cost: 30},
		{ID: "m2", Name: "Victor Koretzky", Gender: roster.GenderMale, Cost: 25},
		{ID: "m3", Name: "Alan Hatherly", Gender: roster.GenderMale, Cost: 24},
		{ID: "m4", Name: "Nino Schurter", Gender: roster.GenderMale, Cost: 20},
		{ID: "f1", Name: "Pauline Ferrand-Prevot", Gender: roster.GenderFemale, Cost: 30},
		{ID: "f2", Name: "Jenny Rissveds", Gender: roster.GenderFemale, Cost: 26},
		{ID: "f3", Name: "Evie Richards", Gender: roster.GenderFemale, Cost: 22},
		{ID: "f-bench", Name: "Alessandra Keller", Gender: roster.GenderFemale, Cost: 18},
	}
	for idx := range riders {
		riders[idx].UpdatedAt = now
	}

	slot := func(idx int) *int { return &idx }
	member := func(rider roster.Rider, idx *int) roster.TeamMember {
		role := roster.RoleStarter
		if idx == nil {
			role = roster.RoleBench
		}
		return roster.TeamMember{RiderID: rider.ID, Role: role, StarterIndex: idx, Gender: rider.Gender, CostAtSave: rider.Cost}
	}

	return Demo{
		Races: []race.Race{{
			ID:         DemoRaceID,
			SeasonID:   DemoSeasonID,
			Name:       "Nove Mesto na Morave",
			Discipline: "XCO",
			StartsAt:   now.Add(time.Hour),
			EndsAt:     now.Add(48 * time.Hour),
			LockAt:     now,
			TeamTypes:  []roster.TeamType{roster.TeamTypeElite},
			GameStatus: race.StatusScheduled,
			CreatedAt:  now,
			UpdatedAt:  now,
		}},
		Riders: riders,
		Users: []roster.User{
			{ID: "user-1", DisplayName: "Rider One"},
			{ID: "user-2", DisplayName: "Rider Two"},
		},
		Teams: []DemoTeam{
			{
				Team: roster.Team{ID: "team-1", SeasonID: DemoSeasonID, UserID: "user-1", Name: "Singletrack Syndicate", TeamType: roster.TeamTypeElite, BudgetCap: 200, SwapsRemaining: 3, CreatedAt: now, UpdatedAt: now},
				Members: []roster.TeamMember{
					member(riders[0], slot(0)),
					member(riders[1], slot(1)),
					member(riders[2], slot(2)),
					member(riders[3], slot(3)),
					member(riders[4], slot(4)),
					member(riders[5], slot(5)),
					member(riders[7], nil),
				},
			},
			{
				Team: roster.Team{ID: "team-2", SeasonID: DemoSeasonID, UserID: "user-2", Name: "Rock Garden", TeamType: roster.TeamTypeElite, BudgetCap: 200, SwapsRemaining: 3, CreatedAt: now, UpdatedAt: now},
				Members: []roster.TeamMember{
					member(riders[1], slot(0)),
					member(riders[3], slot(1)),
					member(riders[6], slot(2)),
					member(riders[5], slot(3)),
				},
			},
		},
	}
}

// SeedDemo loads DemoSeason into the store.
func SeedDemo(s *Store, now time.Time) {
	demo := DemoSeason(now)
	s.SeedRace(demo.Races...)
	s.SeedRider(demo.Riders...)
	s.SeedUser(demo.Users...)
	for _, item := range demo.Teams {
		s.SeedTeam(item.Team, item.Members...)
	}
}
