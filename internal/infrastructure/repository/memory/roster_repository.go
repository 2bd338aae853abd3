package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
)

type rosterRepository struct {
	st *state
}

func (r *rosterRepository) ListTeamsBySeason(_ context.Context, seasonID string) ([]roster.Team, error) {
	out := make([]roster.Team, 0)
	for _, item := range r.st.teams {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *rosterRepository) ListMembersByTeamIDs(_ context.Context, teamIDs []string) ([]roster.TeamMember, error) {
	out := make([]roster.TeamMember, 0)
	for _, teamID := range teamIDs {
		out = append(out, r.st.members[teamID]...)
	}
	return out, nil
}

func (r *rosterRepository) MarkTeamsLocked(_ context.Context, teamIDs []string, lockedAt time.Time) error {
	for _, teamID := range teamIDs {
		item, ok := r.st.teams[teamID]
		if !ok {
			continue
		}
		item.IsLocked = true
		at := lockedAt
		item.LockedAt = &at
		item.UpdatedAt = lockedAt
		r.st.teams[teamID] = item
	}
	return nil
}

func (r *rosterRepository) AddTeamPoints(_ context.Context, teamID string, delta int) error {
	item, ok := r.st.teams[teamID]
	if !ok {
		return fmt.Errorf("add team points: team %s not found", teamID)
	}
	item.TotalPoints += delta
	r.st.teams[teamID] = item
	return nil
}

func (r *rosterRepository) ListRidersByIDs(_ context.Context, riderIDs []string) ([]roster.Rider, error) {
	out := make([]roster.Rider, 0, len(riderIDs))
	for _, riderID := range riderIDs {
		if item, ok := r.st.riders[riderID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *rosterRepository) UpdateRiderCost(_ context.Context, riderID string, cost int64, updatedAt time.Time) error {
	item, ok := r.st.riders[riderID]
	if !ok {
		return fmt.Errorf("update rider cost: rider %s not found", riderID)
	}
	item.Cost = cost
	item.UpdatedAt = updatedAt
	r.st.riders[riderID] = item
	return nil
}

func (r *rosterRepository) ListUsersByIDs(_ context.Context, userIDs []string) ([]roster.User, error) {
	out := make([]roster.User, 0, len(userIDs))
	for _, userID := range userIDs {
		if item, ok := r.st.users[userID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *rosterRepository) DeleteSwapsByRace(_ context.Context, raceID string) (int64, error) {
	var n int64
	for swapID, item := range r.st.swaps {
		if item.RaceID == raceID {
			delete(r.st.swaps, swapID)
			n++
		}
	}
	return n, nil
}
