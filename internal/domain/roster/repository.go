package roster

import (
	"context"
	"time"
)

// Repository exposes the roster store: teams, their members, riders and users.
type Repository interface {
	ListTeamsBySeason(ctx context.Context, seasonID string) ([]Team, error)
	ListMembersByTeamIDs(ctx context.Context, teamIDs []string) ([]TeamMember, error)
	MarkTeamsLocked(ctx context.Context, teamIDs []string, lockedAt time.Time) error
	AddTeamPoints(ctx context.Context, teamID string, delta int) error

	ListRidersByIDs(ctx context.Context, riderIDs []string) ([]Rider, error)
	UpdateRiderCost(ctx context.Context, riderID string, cost int64, updatedAt time.Time) error

	ListUsersByIDs(ctx context.Context, userIDs []string) ([]User, error)

	DeleteSwapsByRace(ctx context.Context, raceID string) (int64, error)
}
