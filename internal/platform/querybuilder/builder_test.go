package querybuilder

import (
	"strings"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("race_id", "rider_id").
		From("race_results").
		Where(Eq("race_id", "race-1"), Expr("status <> ?", "FIN")).
		OrderBy("rider_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT race_id, rider_id FROM race_results WHERE race_id = $1 AND status <> $2 ORDER BY rider_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "race-1" || args[1] != "FIN" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_AnyAndLte(t *testing.T) {
	ids := []string{"t1", "t2"}
	query, args, err := Select("*").
		From("races").
		Where(Eq("game_status", "scheduled"), Lte("lock_at", 42), Any("id", ids)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM races WHERE game_status = $1 AND lock_at <= $2 AND id = ANY($3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[1] != 42 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExpr_KeepsUnboundPlaceholders(t *testing.T) {
	query, args, err := Select("id").From("races").Where(Expr("a = ? OR b = ?", 1)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM races WHERE a = $1 OR b = ?" || len(args) != 1 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}
}

func TestInsertBuilder_MultiRowUpsert(t *testing.T) {
	query, args, err := InsertInto("race_results").
		Columns("race_id", "rider_id", "status").
		Values("race-1", "m1", "FIN").
		Values("race-1", "m2", "DNF").
		OnConflict("race_id", "rider_id").
		DoUpdate("status").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO race_results (race_id, rider_id, status) VALUES ($1, $2, $3), ($4, $5, $6)" +
		" ON CONFLICT (race_id, rider_id) DO UPDATE SET status = EXCLUDED.status"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[4] != "m2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RejectsShortRow(t *testing.T) {
	_, _, err := InsertInto("race_results").Columns("race_id", "rider_id").Values("race-1").ToSQL()
	if err == nil || !strings.Contains(err.Error(), "row 0") {
		t.Fatalf("expected row length error, got %v", err)
	}
}

type snapshotRow struct {
	ID         string `db:"id"`
	RaceID     string `db:"race_id"`
	UserID     string `db:"user_id"`
	TeamID     string `db:"team_id,omitempty"`
	Skipped    string `db:"-"`
	NoTag      string
	unexported string
}

func TestInsertModel_DoUpdateAllExcept(t *testing.T) {
	row := snapshotRow{ID: "snap-1", RaceID: "race-1", UserID: "u1", TeamID: "team-1", unexported: "x"}
	query, args, err := InsertModel("race_snapshots", row, &row).
		OnConflict("race_id", "user_id").
		DoUpdateAllExcept("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO race_snapshots (id, race_id, user_id, team_id) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)" +
		" ON CONFLICT (race_id, user_id) DO UPDATE SET team_id = EXCLUDED.team_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 8 || args[0] != "snap-1" || args[7] != "team-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_Errors(t *testing.T) {
	type other struct {
		ID string `db:"id"`
	}
	var nilRow *snapshotRow

	cases := []struct {
		name    string
		builder *InsertBuilder
	}{
		{name: "nil pointer", builder: InsertModel("race_snapshots", nilRow)},
		{name: "not a struct", builder: InsertModel("race_snapshots", "row")},
		{name: "mixed types", builder: InsertModel("race_snapshots", snapshotRow{}, other{})},
		{name: "no rows", builder: InsertModel("race_snapshots")},
		{name: "update without target", builder: InsertModel("race_snapshots", snapshotRow{}).DoUpdate("team_id")},
		{name: "target without action", builder: InsertModel("race_snapshots", snapshotRow{}).OnConflict("id")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.builder.ToSQL(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestInsertBuilder_DoNothing(t *testing.T) {
	query, _, err := InsertInto("riders").Columns("id").Values("m1").OnConflict("id").DoNothing().ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}
	if query != "INSERT INTO riders (id) VALUES ($1) ON CONFLICT (id) DO NOTHING" {
		t.Fatalf("unexpected query %q", query)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("teams").
		Set("name", "new").
		SetExpr("total_points", "total_points + ?", 25).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "team-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE teams SET name = $1, total_points = total_points + $2, updated_at = NOW() WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "new" || args[1] != 25 || args[2] != "team-1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Update("teams").Set("name", "x").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional update")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("race_scores").
		Where(Eq("race_id", "race-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM race_scores WHERE race_id = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "race-1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("race_scores").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}
