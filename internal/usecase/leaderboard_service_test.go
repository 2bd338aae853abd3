package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/cache"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
)

func TestLeaderboardService_Build(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx := context.Background()
	p.lockAndImport(t)
	if _, err := p.settlements.SettleRace(ctx, testRaceID, SettleOptions{}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	entries, err := p.leaderboard.Build(ctx, testSeasonID, "elite")
	if err != nil {
		t.Fatalf("build leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("unexpected entry count: %d", len(entries))
	}

	first := entries[0]
	if first.Rank != 1 || first.TeamID != "team-1" || first.TotalPoints != 220 || first.UserName != "One" {
		t.Fatalf("unexpected leader: %+v", first)
	}
	if first.LastRoundPoints != 220 {
		t.Fatalf("last round points = %d, want 220", first.LastRoundPoints)
	}
	if entries[1].TeamID != "team-2" || entries[1].TotalPoints != 180 {
		t.Fatalf("unexpected runner up: %+v", entries[1])
	}
	if entries[2].TeamID != "team-4" || entries[2].Rank != 3 || entries[2].TotalPoints != 0 {
		t.Fatalf("unexpected last entry: %+v", entries[2])
	}

	all, err := p.leaderboard.Build(ctx, testSeasonID, "")
	if err != nil {
		t.Fatalf("build leaderboard for all types: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("empty team type should include every team, got %d", len(all))
	}
}

func TestLeaderboardService_BuildValidates(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	if _, err := p.leaderboard.Build(context.Background(), " ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty season, got %v", err)
	}
	if _, err := p.leaderboard.Build(context.Background(), testSeasonID, "masters"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown team type, got %v", err)
	}
}

func TestLeaderboardService_CacheInvalidatedOnSeasonChange(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx := context.Background()
	p.leaderboard.WithCache(cache.NewStore[[]leaderboard.Entry](0))
	p.settlements.OnSeasonChange(p.leaderboard.Invalidate)

	var deleted []string
	p.races.OnSeasonChange(p.leaderboard.Invalidate)
	p.races.OnSeasonChange(func(_ context.Context, seasonID string) {
		deleted = append(deleted, seasonID)
	})

	before, err := p.leaderboard.Build(ctx, testSeasonID, "elite")
	if err != nil {
		t.Fatalf("build leaderboard: %v", err)
	}
	for _, entry := range before {
		if entry.TotalPoints != 0 {
			t.Fatalf("unexpected points before settlement: %+v", entry)
		}
	}
	before[0].TeamID = "mutated"

	p.lockAndImport(t)
	cached, err := p.leaderboard.Build(ctx, testSeasonID, "elite")
	if err != nil {
		t.Fatalf("build cached leaderboard: %v", err)
	}
	if cached[0].TeamID == "mutated" {
		t.Fatalf("callers must not share the cached slice")
	}
	if cached[0].TotalPoints != 0 {
		t.Fatalf("imports without settlement should not change standings: %+v", cached[0])
	}

	if _, err := p.settlements.SettleRace(ctx, testRaceID, SettleOptions{}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	after, err := p.leaderboard.Build(ctx, testSeasonID, "elite")
	if err != nil {
		t.Fatalf("build leaderboard after settle: %v", err)
	}
	if after[0].TeamID != "team-1" || after[0].TotalPoints != 220 {
		t.Fatalf("settlement should invalidate the cached standings, got %+v", after[0])
	}

	if _, err := p.races.DeleteRace(ctx, testRaceID); err != nil {
		t.Fatalf("delete race: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != testSeasonID {
		t.Fatalf("delete should notify season %q, got %v", testSeasonID, deleted)
	}
	gone, err := p.leaderboard.Build(ctx, testSeasonID, "elite")
	if err != nil {
		t.Fatalf("build leaderboard after delete: %v", err)
	}
	if gone[0].TotalPoints != 0 {
		t.Fatalf("delete should drop the race from cached standings, got %+v", gone[0])
	}
}

func TestScheduler_TickLocksAndSettles(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx := context.Background()
	p.store.SeedRace(race.Race{ID: "race-0", SeasonID: testSeasonID, LockAt: testStart.Add(-time.Hour), GameStatus: race.StatusScheduled})
	p.lockAndImport(t)

	scheduler := NewScheduler(p.locks, p.settlements, time.Minute, 2, logging.NewNop())
	report := scheduler.Tick(ctx)
	if report.LockErr != nil || report.SettleErr != nil {
		t.Fatalf("unexpected sweep errors: lock=%v settle=%v", report.LockErr, report.SettleErr)
	}
	if len(report.Locks) != 1 || report.Locks[0].RaceID != "race-0" {
		t.Fatalf("unexpected lock sweep: %+v", report.Locks)
	}
	if len(report.Settlements) != 1 || report.Settlements[0].RaceID != testRaceID {
		t.Fatalf("unexpected settlement sweep: %+v", report.Settlements)
	}

	idle := scheduler.Tick(ctx)
	if len(idle.Locks) != 0 || len(idle.Settlements) != 0 {
		t.Fatalf("second tick should be idle: %+v", idle)
	}
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scheduler := NewScheduler(p.locks, p.settlements, time.Hour, 1, logging.NewNop())
	if err := scheduler.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
