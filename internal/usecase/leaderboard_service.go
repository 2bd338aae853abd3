package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/cache"
	"go.opentelemetry.io/otel/attribute"
)

type LeaderboardService struct {
	uow   uow.UnitOfWork
	table scoring.PointsTable
	cache *cache.Store[[]leaderboard.Entry]
}

func NewLeaderboardService(unit uow.UnitOfWork, table scoring.PointsTable) *LeaderboardService {
	return &LeaderboardService{uow: unit, table: table}
}

// WithCache serves Build from store until the season is invalidated.
func (s *LeaderboardService) WithCache(store *cache.Store[[]leaderboard.Entry]) *LeaderboardService {
	s.cache = store
	return s
}

// Invalidate drops every cached standing of the season.
func (s *LeaderboardService) Invalidate(ctx context.Context, seasonID string) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, leaderboardCacheKey(seasonID, ""))
}

func leaderboardCacheKey(seasonID string, teamType roster.TeamType) string {
	return "leaderboard:" + seasonID + ":" + string(teamType)
}

// Build ranks the season's teams. Last-round points come from the most
// recently settled race. An empty teamType includes every team type.
func (s *LeaderboardService) Build(ctx context.Context, seasonID, teamType string) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Build",
		attribute.String("season.id", seasonID),
		attribute.String("team.type", teamType),
	)
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	var filter roster.TeamType
	if strings.TrimSpace(teamType) != "" {
		parsed, err := roster.ParseTeamType(teamType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter = parsed
	}

	if s.cache == nil {
		return s.build(ctx, seasonID, filter)
	}
	entries, err := s.cache.GetOrLoad(ctx, leaderboardCacheKey(seasonID, filter), func(ctx context.Context) ([]leaderboard.Entry, error) {
		return s.build(ctx, seasonID, filter)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("leaderboard.entries", len(entries)))
	return append([]leaderboard.Entry(nil), entries...), nil
}

func (s *LeaderboardService) build(ctx context.Context, seasonID string, filter roster.TeamType) ([]leaderboard.Entry, error) {
	var out []leaderboard.Entry
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		teams, err := repos.Rosters.ListTeamsBySeason(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("list season teams: %w", err)
		}
		selected := make([]roster.Team, 0, len(teams))
		teamIDs := make([]string, 0, len(teams))
		userIDs := make([]string, 0, len(teams))
		for _, team := range teams {
			if filter != "" && team.TeamType != filter {
				continue
			}
			selected = append(selected, team)
			teamIDs = append(teamIDs, team.ID)
			userIDs = append(userIDs, team.UserID)
		}

		members, err := repos.Rosters.ListMembersByTeamIDs(ctx, teamIDs)
		if err != nil {
			return fmt.Errorf("list team members: %w", err)
		}
		membersByTeam := make(map[string][]roster.TeamMember, len(selected))
		for _, member := range members {
			membersByTeam[member.TeamID] = append(membersByTeam[member.TeamID], member)
		}

		users, err := repos.Rosters.ListUsersByIDs(ctx, userIDs)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		usersByID := make(map[string]roster.User, len(users))
		for _, user := range users {
			usersByID[user.ID] = user
		}

		latest, err := s.latestRoundPoints(ctx, repos, seasonID)
		if err != nil {
			return err
		}

		entries := make([]leaderboard.TeamEntry, 0, len(selected))
		for _, team := range selected {
			user, ok := usersByID[team.UserID]
			if !ok {
				user = roster.User{ID: team.UserID}
			}
			entries = append(entries, leaderboard.TeamEntry{
				Team:    team,
				User:    user,
				Members: membersByTeam[team.ID],
			})
		}
		out = leaderboard.BuildEntries(entries, latest)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LeaderboardService) latestRoundPoints(ctx context.Context, repos uow.Repositories, seasonID string) (map[string]int, error) {
	races, err := repos.Races.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season races: %w", err)
	}

	var latest *race.Race
	for idx := range races {
		item := &races[idx]
		if item.GameStatus != race.StatusSettled {
			continue
		}
		if latest == nil || laterRace(*item, *latest) {
			latest = item
		}
	}
	if latest == nil {
		return map[string]int{}, nil
	}

	rows, err := repos.Results.ListByRace(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("list latest race results: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.RiderID] = s.table.ForOutcome(row.Outcome)
	}
	return out, nil
}

func laterRace(a, b race.Race) bool {
	if !a.StartsAt.Equal(b.StartsAt) {
		return a.StartsAt.After(b.StartsAt)
	}
	return a.ID > b.ID
}
