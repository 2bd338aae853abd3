package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches wrapped no rows", func(t *testing.T) {
		if !isNotFound(fmt.Errorf("get race: %w", sql.ErrNoRows)) {
			t.Fatalf("expected true for wrapped sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(fakeErr("pq: relation races does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestNullableHelpers(t *testing.T) {
	t.Run("zero time is null", func(t *testing.T) {
		if nullTimeOf(time.Time{}).Valid {
			t.Fatalf("expected zero time to map to NULL")
		}
	})

	t.Run("time round trips as utc", func(t *testing.T) {
		local := time.Date(2026, 5, 10, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
		got := timePtr(nullTimeOf(local))
		if got == nil || !got.Equal(local) || got.Location() != time.UTC {
			t.Fatalf("unexpected time: %v", got)
		}
	})

	t.Run("starter index round trips", func(t *testing.T) {
		idx := 3
		got := intPtr(nullInt(&idx))
		if got == nil || *got != 3 {
			t.Fatalf("unexpected starter index: %v", got)
		}
		if intPtr(nullInt(nil)) != nil {
			t.Fatalf("expected nil for bench rider")
		}
	})
}

func TestJSONText(t *testing.T) {
	t.Run("nil bench is null", func(t *testing.T) {
		var bench *scoring.SnapshotRider
		got, err := nullJSONText(bench)
		if err != nil {
			t.Fatalf("encode nil bench: %v", err)
		}
		if got.Valid {
			t.Fatalf("expected NULL for nil bench, got %q", got.String)
		}
	})

	t.Run("encodes starters", func(t *testing.T) {
		got, err := jsonText([]scoring.SnapshotRider{{RiderID: "m1", Gender: roster.GenderMale, CostAtSave: 30}})
		if err != nil {
			t.Fatalf("encode starters: %v", err)
		}
		want := `[{"riderId":"m1","gender":"M","costAtSave":30}]`
		if got != want {
			t.Fatalf("unexpected json: got=%s want=%s", got, want)
		}
	})
}

func TestStringsOf(t *testing.T) {
	got := stringsOf([]roster.TeamType{roster.TeamTypeElite, roster.TeamTypeJunior})
	if len(got) != 2 || got[0] != "elite" || got[1] != "junior" {
		t.Fatalf("unexpected strings: %v", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
