package result

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewOutcome(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		position  *int
		want      Outcome
		targetErr error
	}{
		{name: "finished with position", status: StatusFinished, position: intPtr(4), want: Finished{Position: 4}},
		{name: "finished without position", status: StatusFinished, targetErr: ErrInvalidPosition},
		{name: "finished with zero position", status: StatusFinished, position: intPtr(0), targetErr: ErrInvalidPosition},
		{name: "dnf ignores position", status: StatusDidNotFinish, position: intPtr(12), want: NotFinished{Reason: StatusDidNotFinish}},
		{name: "dsq", status: StatusDisqualified, want: NotFinished{Reason: StatusDisqualified}},
		{name: "unknown status", status: Status("XYZ"), targetErr: ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewOutcome(tt.status, tt.position)
			if tt.targetErr != nil {
				if !errors.Is(err, tt.targetErr) {
					t.Fatalf("expected error %v, got %v", tt.targetErr, err)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSetKey(t *testing.T) {
	key, err := ParseSetKey("Elite:f")
	require.NoError(t, err)
	assert.Equal(t, SetKey{Category: CategoryElite, Gender: roster.GenderFemale}, key)
	assert.Equal(t, "elite/F", key.String())

	_, err = ParseSetKey("elite")
	assert.Error(t, err)
	_, err = ParseSetKey("masters:M")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestHash_IgnoresRowOrderAndMetadata(t *testing.T) {
	rows := []RaceResult{
		{RaceID: "race-1", RiderID: "r2", Category: CategoryElite, Outcome: NotFinished{Reason: StatusDidNotStart}},
		{RaceID: "race-1", RiderID: "r1", Category: CategoryElite, Outcome: Finished{Position: 1}},
	}
	reordered := []RaceResult{rows[1], rows[0]}
	reordered[0].Discipline = "road"

	first, err := Hash(rows)
	require.NoError(t, err)
	second, err := Hash(reordered)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rows[1].Outcome = Finished{Position: 2}
	changed, err := Hash(rows)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestBatchHash_IncludesFinality(t *testing.T) {
	batch := Batch{
		Category: CategoryElite,
		Gender:   roster.GenderMale,
		Entries:  []Entry{{RiderID: "r1", Outcome: Finished{Position: 1}}},
	}
	provisional, err := BatchHash(batch)
	require.NoError(t, err)

	batch.IsFinal = true
	final, err := BatchHash(batch)
	require.NoError(t, err)

	assert.NotEqual(t, provisional, final)
}
