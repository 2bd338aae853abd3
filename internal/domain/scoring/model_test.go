package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/result"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(riderID string, role roster.Role, idx *int, gender roster.Gender, cost int64) roster.TeamMember {
	return roster.TeamMember{TeamID: "team-1", RiderID: riderID, Role: role, StarterIndex: idx, Gender: gender, CostAtSave: cost}
}

func TestNewSnapshot(t *testing.T) {
	team := roster.Team{ID: "team-1", UserID: "user-1", TeamType: roster.TeamTypeElite}
	capturedAt := time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC)
	members := []roster.TeamMember{
		member("r3", roster.RoleStarter, slot(2), roster.GenderFemale, 12),
		member("bench", roster.RoleBench, nil, roster.GenderMale, 5),
		member("r1", roster.RoleStarter, slot(0), roster.GenderMale, 20),
		member("r2", roster.RoleStarter, slot(1), roster.GenderMale, 15),
	}

	got, err := NewSnapshot("race-1", team, members, capturedAt)
	require.NoError(t, err)

	assert.Equal(t, Key{RaceID: "race-1", UserID: "user-1", TeamType: roster.TeamTypeElite}, got.Key())
	require.Len(t, got.Starters, 3)
	assert.Equal(t, "r1", got.Starters[0].RiderID)
	assert.Equal(t, "r2", got.Starters[1].RiderID)
	assert.Equal(t, "r3", got.Starters[2].RiderID)
	require.NotNil(t, got.Bench)
	assert.Equal(t, "bench", got.Bench.RiderID)
	assert.Equal(t, int64(52), got.TotalCostAtLock)
	assert.NotEmpty(t, got.SnapshotHash)

	again, err := NewSnapshot("race-1", team, []roster.TeamMember{members[3], members[2], members[1], members[0]}, capturedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, got.SnapshotHash, again.SnapshotHash)

	members[0].RiderID = "r9"
	changed, err := NewSnapshot("race-1", team, members, capturedAt)
	require.NoError(t, err)
	assert.NotEqual(t, got.SnapshotHash, changed.SnapshotHash)
}

func TestNewSnapshot_EmptyRoster(t *testing.T) {
	team := roster.Team{ID: "team-1", UserID: "user-1", TeamType: roster.TeamTypeElite}
	_, err := NewSnapshot("race-1", team, []roster.TeamMember{
		member("bench", roster.RoleBench, nil, roster.GenderMale, 5),
	}, time.Now())
	if !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}
}

func TestRaceScore_UpToDate(t *testing.T) {
	score := RaceScore{SnapshotHashUsed: "snap", ResultsHashUsed: "res"}
	assert.True(t, score.UpToDate("snap", "res"))
	assert.False(t, score.UpToDate("snap", "res-2"))
	assert.False(t, score.UpToDate("snap-2", "res"))
	assert.False(t, RaceScore{}.UpToDate("", ""))
}

func TestPointsTable(t *testing.T) {
	table, err := ParsePointsTable("10, 8,6,,4")
	require.NoError(t, err)
	assert.Equal(t, PointsTable{10, 8, 6, 4}, table)
	assert.Equal(t, 10, table.ForPosition(1))
	assert.Equal(t, 0, table.ForPosition(5))
	assert.Equal(t, 0, table.ForPosition(0))
	assert.Equal(t, 6, table.ForOutcome(result.Finished{Position: 3}))
	assert.Equal(t, 0, table.ForOutcome(result.NotFinished{Reason: result.StatusDidNotFinish}))

	_, err = ParsePointsTable("5,10")
	assert.ErrorIs(t, err, ErrInvalidPointsTable)
	_, err = ParsePointsTable("5,-1")
	assert.ErrorIs(t, err, ErrInvalidPointsTable)
	_, err = ParsePointsTable("")
	assert.ErrorIs(t, err, ErrInvalidPointsTable)
	assert.NoError(t, DefaultPointsTable().Validate())
}

func TestSettlementPolicy_Missing(t *testing.T) {
	policy := DefaultSettlementPolicy()
	imports := []result.Import{
		{Category: result.CategoryElite, Gender: roster.GenderMale, IsFinal: true},
		{Category: result.CategoryElite, Gender: roster.GenderFemale, IsFinal: false},
		{Category: result.CategoryJunior, Gender: roster.GenderMale, IsFinal: false},
	}

	missing := policy.Missing(imports)
	require.Len(t, missing, 1)
	assert.Equal(t, "elite/F", missing[0].String())
	assert.False(t, policy.Complete(imports))

	imports[1].IsFinal = true
	assert.True(t, policy.Complete(imports))
}
