package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"go.uber.org/zap/zapcore"
)

func TestLockService_LockRaceIsIdempotent(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx := context.Background()

	first, err := p.locks.LockRace(ctx, testRaceID, LockOptions{})
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if first.LockedTeams != 2 || first.SkippedTeams != 0 {
		t.Fatalf("first lock = %+v, want 2 locked 0 skipped", first)
	}

	second, err := p.locks.LockRace(ctx, testRaceID, LockOptions{})
	if err != nil {
		t.Fatalf("second lock: %v", err)
	}
	if second.LockedTeams != 0 || second.SkippedTeams != 2 {
		t.Fatalf("second lock = %+v, want 0 locked 2 skipped", second)
	}

	snapshots, err := p.races.ListSnapshots(ctx, testRaceID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("unexpected snapshot count: %d", len(snapshots))
	}
	for _, snapshot := range snapshots {
		if snapshot.TeamType != roster.TeamTypeElite {
			t.Fatalf("junior team must not be snapshotted: %+v", snapshot)
		}
	}

	item, err := p.races.GetRace(ctx, testRaceID)
	if err != nil {
		t.Fatalf("get race: %v", err)
	}
	if item.GameStatus != race.StatusLocked {
		t.Fatalf("unexpected race status: %s", item.GameStatus)
	}
	if team := p.team(t, "team-1"); !team.IsLocked || team.LockedAt == nil {
		t.Fatalf("team-1 should be locked: %+v", team)
	}
	if team := p.team(t, "team-3"); team.IsLocked {
		t.Fatalf("junior team should stay unlocked")
	}
}

func TestLockService_SnapshotFreezesRoster(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx := context.Background()
	if _, err := p.locks.LockRace(ctx, testRaceID, LockOptions{}); err != nil {
		t.Fatalf("lock: %v", err)
	}

	var snapshot scoring.RaceSnapshot
	p.view(t, func(ctx context.Context, repos uow.Repositories) {
		got, exists, err := repos.Scoring.GetSnapshot(ctx, scoring.Key{RaceID: testRaceID, UserID: "user-1", TeamType: roster.TeamTypeElite})
		if err != nil || !exists {
			t.Fatalf("get snapshot: exists=%v err=%v", exists, err)
		}
		snapshot = got
	})

	if len(snapshot.Starters) != 6 {
		t.Fatalf("unexpected starters: %d", len(snapshot.Starters))
	}
	if snapshot.Starters[0].RiderID != "m1" || snapshot.Starters[5].RiderID != "f2" {
		t.Fatalf("starters out of slot order: %+v", snapshot.Starters)
	}
	if snapshot.Bench == nil || snapshot.Bench.RiderID != "f-bench" {
		t.Fatalf("unexpected bench: %+v", snapshot.Bench)
	}
	if snapshot.TotalCostAtLock != 30+25+24+20+30+26+18 {
		t.Fatalf("unexpected total cost at lock: %d", snapshot.TotalCostAtLock)
	}
	if snapshot.SnapshotHash == "" {
		t.Fatalf("snapshot hash must be set")
	}
}

func TestLockService_ForceResnapshotsChangedRosters(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx := context.Background()
	if _, err := p.locks.LockRace(ctx, testRaceID, LockOptions{}); err != nil {
		t.Fatalf("lock: %v", err)
	}
	before, err := p.races.ListSnapshots(ctx, testRaceID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}

	unchanged, err := p.locks.LockRace(ctx, testRaceID, LockOptions{Force: true})
	if err != nil {
		t.Fatalf("force lock without changes: %v", err)
	}
	if unchanged.LockedTeams != 0 || unchanged.SkippedTeams != 2 {
		t.Fatalf("force lock without changes = %+v", unchanged)
	}

	r := testRiders
	p.store.SeedTeam(
		roster.Team{ID: "team-2", SeasonID: testSeasonID, UserID: "user-2", Name: "Apex Hunters", TeamType: roster.TeamTypeElite},
		starterOf(r["m2"], 0),
		starterOf(r["f2"], 1),
	)

	changed, err := p.locks.LockRace(ctx, testRaceID, LockOptions{Force: true})
	if err != nil {
		t.Fatalf("force lock: %v", err)
	}
	if changed.LockedTeams != 1 || changed.SkippedTeams != 1 {
		t.Fatalf("force lock = %+v, want 1 locked 1 skipped", changed)
	}

	after, err := p.races.ListSnapshots(ctx, testRaceID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("force lock must not duplicate snapshots: before=%d after=%d", len(before), len(after))
	}
	ids := map[string]struct{}{}
	for _, item := range before {
		ids[item.ID] = struct{}{}
	}
	for _, item := range after {
		if _, ok := ids[item.ID]; !ok {
			t.Fatalf("snapshot id changed on relock: %s", item.ID)
		}
	}

	if len(p.logs.FilterMessage("race locked with force").FilterLevelExact(zapcore.WarnLevel).All()) != 2 {
		t.Fatalf("forced locks should be logged at warn level")
	}
}

func TestLockService_WindowClosed(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	p.clock = testStart.Add(72 * time.Hour)

	_, err := p.locks.LockRace(context.Background(), testRaceID, LockOptions{})
	if !errors.Is(err, ErrRaceWindowClosed) {
		t.Fatalf("expected ErrRaceWindowClosed, got %v", err)
	}

	res, err := p.locks.LockRace(context.Background(), testRaceID, LockOptions{Force: true})
	if err != nil {
		t.Fatalf("forced lock after window: %v", err)
	}
	if res.LockedTeams != 2 {
		t.Fatalf("unexpected forced lock result: %+v", res)
	}
}

func TestLockService_Errors(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)

	if _, err := p.locks.LockRace(context.Background(), "missing", LockOptions{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := p.locks.LockRace(context.Background(), "  ", LockOptions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLockService_LockDueRaces(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	p.store.SeedRace(
		race.Race{ID: "race-0", SeasonID: testSeasonID, LockAt: testStart.Add(-time.Hour), EndsAt: testStart.Add(time.Hour), GameStatus: race.StatusScheduled},
		race.Race{ID: "race-later", SeasonID: testSeasonID, LockAt: testStart.Add(24 * time.Hour), GameStatus: race.StatusScheduled},
		race.Race{ID: "race-missed", SeasonID: testSeasonID, LockAt: testStart.Add(-72 * time.Hour), EndsAt: testStart.Add(-24 * time.Hour), GameStatus: race.StatusScheduled},
	)

	items, err := p.locks.LockDueRaces(context.Background(), 2)
	if err != nil {
		t.Fatalf("lock due races: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("unexpected sweep items: %+v", items)
	}
	if items[0].RaceID != "race-0" || items[1].RaceID != testRaceID {
		t.Fatalf("sweep items not ordered by race id: %+v", items)
	}
	for _, item := range items {
		if item.Err != nil {
			t.Fatalf("race %s failed: %v", item.RaceID, item.Err)
		}
	}

	later, err := p.races.GetRace(context.Background(), "race-later")
	if err != nil {
		t.Fatalf("get race: %v", err)
	}
	if later.GameStatus != race.StatusScheduled {
		t.Fatalf("race not yet due must stay scheduled, got %s", later.GameStatus)
	}

	missed, err := p.races.GetRace(context.Background(), "race-missed")
	if err != nil {
		t.Fatalf("get race: %v", err)
	}
	if missed.GameStatus != race.StatusScheduled {
		t.Fatalf("race with a closed window must be left for a forced lock, got %s", missed.GameStatus)
	}

	again, err := p.locks.LockDueRaces(context.Background(), 2)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("locked races must not be swept again: %+v", again)
	}
}

func TestLockService_TeamAddedAfterSettlement(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	ctx := context.Background()
	p.lockAndImport(t)
	if _, err := p.settlements.SettleRace(ctx, testRaceID, SettleOptions{}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	r := testRiders
	p.store.SeedUser(roster.User{ID: "user-4", DisplayName: "Four"})
	p.store.SeedTeam(
		roster.Team{ID: "team-5", SeasonID: testSeasonID, UserID: "user-4", Name: "Late Entry", TeamType: roster.TeamTypeElite},
		starterOf(r["m2"], 0),
		starterOf(r["f1"], 1),
	)

	repeat, err := p.locks.LockRace(ctx, testRaceID, LockOptions{})
	if err != nil {
		t.Fatalf("repeat lock: %v", err)
	}
	if repeat.LockedTeams != 0 || repeat.SkippedTeams != 3 || repeat.NeedsResettle {
		t.Fatalf("repeat lock after settlement must be a no-op: %+v", repeat)
	}
	snapshots, err := p.races.ListSnapshots(ctx, testRaceID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("late team must not be snapshotted without force: %d snapshots", len(snapshots))
	}

	forced, err := p.locks.LockRace(ctx, testRaceID, LockOptions{Force: true})
	if err != nil {
		t.Fatalf("force lock: %v", err)
	}
	if forced.LockedTeams != 1 || !forced.NeedsResettle {
		t.Fatalf("forced lock of a settled race should flag resettle: %+v", forced)
	}
	item, err := p.races.GetRace(ctx, testRaceID)
	if err != nil {
		t.Fatalf("get race: %v", err)
	}
	if !item.NeedsResettle || item.GameStatus != race.StatusSettled {
		t.Fatalf("unexpected race after forced lock: %+v", item)
	}

	items, err := p.settlements.SettlePending(ctx)
	if err != nil {
		t.Fatalf("settle pending: %v", err)
	}
	if len(items) != 1 || items[0].Err != nil || items[0].Result.UpdatedScores != 1 {
		t.Fatalf("sweep should score only the late team: %+v", items)
	}
	scores, err := p.races.ListScores(ctx, testRaceID)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("every snapshot should have a score, got %d", len(scores))
	}
	if got := p.team(t, "team-5").TotalPoints; got != 15 {
		t.Fatalf("team-5 points = %d, want 15", got)
	}
}
