package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/race"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"github.com/riskibarqy/fantasy-cycling/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/id"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testSeasonID = "season-2026"
	testRaceID   = "race-1"
)

var testStart = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type pipeline struct {
	store       *memory.Store
	logs        *observer.ObservedLogs
	locks       *LockService
	imports     *ResultImportService
	settlements *SettlementService
	races       *RaceService
	leaderboard *LeaderboardService
	clock       time.Time
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.FromZap(zap.New(core))
	store := memory.NewStore()
	cfg := DefaultSettlementConfig()
	metrics := NewMetrics()

	p := &pipeline{
		store:       store,
		logs:        logs,
		locks:       NewLockService(store, &id.SequenceGenerator{Prefix: "snap-"}, logger, metrics),
		imports:     NewResultImportService(store, &id.SequenceGenerator{Prefix: "imp-"}, cfg.Policy, logger, metrics),
		settlements: NewSettlementService(store, &id.SequenceGenerator{Prefix: "score-"}, cfg, logger, metrics),
		races:       NewRaceService(store, cfg.Pricing, logger),
		leaderboard: NewLeaderboardService(store, cfg.Calculator.Table),
		clock:       testStart,
	}
	now := func() time.Time { return p.clock }
	p.locks.now = now
	p.races.now = now
	p.imports.now = now
	p.settlements.now = now

	seedPipeline(store)
	return p
}

func slotIdx(idx int) *int { return &idx }

func starterOf(rider roster.Rider, idx int) roster.TeamMember {
	return roster.TeamMember{RiderID: rider.ID, Role: roster.RoleStarter, StarterIndex: slotIdx(idx), Gender: rider.Gender, CostAtSave: rider.Cost}
}

func benchOf(rider roster.Rider) roster.TeamMember {
	return roster.TeamMember{RiderID: rider.ID, Role: roster.RoleBench, Gender: rider.Gender, CostAtSave: rider.Cost}
}

var testRiders = map[string]roster.Rider{
	"m1":      {ID: "m1", Gender: roster.GenderMale, Cost: 30},
	"m2":      {ID: "m2", Gender: roster.GenderMale, Cost: 25},
	"m3":      {ID: "m3", Gender: roster.GenderMale, Cost: 24},
	"m4":      {ID: "m4", Gender: roster.GenderMale, Cost: 20},
	"f1":      {ID: "f1", Gender: roster.GenderFemale, Cost: 30},
	"f2":      {ID: "f2", Gender: roster.GenderFemale, Cost: 26},
	"f-bench": {ID: "f-bench", Gender: roster.GenderFemale, Cost: 18},
	"j1":      {ID: "j1", Gender: roster.GenderMale, Cost: 10},
}

func seedPipeline(store *memory.Store) {
	store.SeedRace(race.Race{
		ID:         testRaceID,
		SeasonID:   testSeasonID,
		Name:       "Nove Mesto",
		Discipline: "XCO",
		StartsAt:   testStart.Add(time.Hour),
		EndsAt:     testStart.Add(48 * time.Hour),
		LockAt:     testStart,
		TeamTypes:  []roster.TeamType{roster.TeamTypeElite},
		GameStatus: race.StatusScheduled,
	})

	for _, rider := range testRiders {
		store.SeedRider(rider)
	}
	store.SeedUser(
		roster.User{ID: "user-1", DisplayName: "One"},
		roster.User{ID: "user-2", DisplayName: "Two"},
		roster.User{ID: "user-3", DisplayName: "Three"},
	)

	r := testRiders
	store.SeedTeam(
		roster.Team{ID: "team-1", SeasonID: testSeasonID, UserID: "user-1", Name: "Berm Burners", TeamType: roster.TeamTypeElite},
		starterOf(r["m1"], 0),
		starterOf(r["m2"], 1),
		starterOf(r["m3"], 2),
		starterOf(r["m4"], 3),
		starterOf(r["f1"], 4),
		starterOf(r["f2"], 5),
		benchOf(r["f-bench"]),
	)
	store.SeedTeam(
		roster.Team{ID: "team-2", SeasonID: testSeasonID, UserID: "user-2", Name: "Apex Hunters", TeamType: roster.TeamTypeElite},
		starterOf(r["m1"], 0),
		starterOf(r["f2"], 1),
	)
	store.SeedTeam(
		roster.Team{ID: "team-3", SeasonID: testSeasonID, UserID: "user-3", Name: "Juniors", TeamType: roster.TeamTypeJunior},
		starterOf(r["j1"], 0),
	)
	store.SeedTeam(
		roster.Team{ID: "team-4", SeasonID: testSeasonID, UserID: "user-3", Name: "Bench Only", TeamType: roster.TeamTypeElite},
		benchOf(r["m4"]),
	)
}

func position(p int) *int { return &p }

func eliteMen(final bool) ImportInput {
	return ImportInput{
		Gender:     "M",
		Category:   "elite",
		Discipline: "XCO",
		IsFinal:    final,
		Results: []ImportEntry{
			{RiderID: "m1", Status: "FIN", Position: position(1)},
			{RiderID: "m2", Status: "FIN", Position: position(10)},
			{RiderID: "m3", Status: "DNS"},
			{RiderID: "m4", Status: "DSQ"},
		},
	}
}

func eliteWomen(final bool, f2Position int) ImportInput {
	return ImportInput{
		Gender:     "F",
		Category:   "elite",
		Discipline: "XCO",
		SourceURL:  "https://www.uci.org/results/xco-nove-mesto",
		IsFinal:    final,
		Results: []ImportEntry{
			{RiderID: "f1", Status: "DNS"},
			{RiderID: "f2", Status: "FIN", Position: position(f2Position)},
			{RiderID: "f-bench", Status: "FIN", Position: position(8)},
		},
	}
}

func (p *pipeline) lockAndImport(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := p.locks.LockRace(ctx, testRaceID, LockOptions{}); err != nil {
		t.Fatalf("lock race: %v", err)
	}
	if _, err := p.imports.UpsertRaceResults(ctx, testRaceID, eliteMen(true)); err != nil {
		t.Fatalf("import elite men: %v", err)
	}
	if _, err := p.imports.UpsertRaceResults(ctx, testRaceID, eliteWomen(true, 2)); err != nil {
		t.Fatalf("import elite women: %v", err)
	}
}

func (p *pipeline) view(t *testing.T, fn func(ctx context.Context, repos uow.Repositories)) {
	t.Helper()
	err := p.store.Do(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		fn(ctx, repos)
		return nil
	})
	if err != nil {
		t.Fatalf("view store: %v", err)
	}
}

func (p *pipeline) team(t *testing.T, teamID string) roster.Team {
	t.Helper()
	var out roster.Team
	p.view(t, func(ctx context.Context, repos uow.Repositories) {
		teams, err := repos.Rosters.ListTeamsBySeason(ctx, testSeasonID)
		if err != nil {
			t.Fatalf("list teams: %v", err)
		}
		for _, item := range teams {
			if item.ID == teamID {
				out = item
			}
		}
	})
	return out
}

func (p *pipeline) rider(t *testing.T, riderID string) roster.Rider {
	t.Helper()
	var out roster.Rider
	p.view(t, func(ctx context.Context, repos uow.Repositories) {
		riders, err := repos.Rosters.ListRidersByIDs(ctx, []string{riderID})
		if err != nil || len(riders) != 1 {
			t.Fatalf("get rider %s: %v", riderID, err)
		}
		out = riders[0]
	})
	return out
}
