package logstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rkuiv/ticktally/internal/logstore"
	"github.com/rkuiv/ticktally/internal/model"
)

func newStore() *logstore.Store {
	return logstore.NewStore(zerolog.Nop())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	newStore().Ensure(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Ensure did not create file: %v", err)
	}
	want := "date,start_time,end_time,duration_seconds,goal_seconds\n"
	if string(data) != want {
		t.Errorf("header = %q, want %q", string(data), want)
	}
}

func TestAppendThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	s := newStore()

	entries := []model.Entry{
		{Date: "2024-05-01", Start: "08:00:00", End: "08:45:00", Duration: 2700, Goal: 7200},
		{Date: "2024-05-01", Start: "10:00:00", End: "10:30:00", Duration: 1800, Goal: 7200},
		{Date: "2024-05-02", Start: "N/A", End: "N/A", Duration: 600, Goal: 3600},
	}
	for _, e := range entries {
		if err := s.Append(path, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	res, err := s.Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.NeedsMigration {
		t.Error("canonical file reported NeedsMigration")
	}
	if len(res.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(res.Entries))
	}
	if res.Totals["2024-05-01"] != 4500 || res.Totals["2024-05-02"] != 600 {
		t.Errorf("totals = %v, want 2024-05-01:4500 2024-05-02:600", res.Totals)
	}
	if res.Goals["2024-05-01"] != 7200 || res.Goals["2024-05-02"] != 3600 {
		t.Errorf("goals = %v", res.Goals)
	}
	for i, e := range res.Entries {
		if e != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, entries[i])
		}
	}
}

func TestLoadLegacyTimeColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	writeFile(t, path, "date,time,duration_seconds\n2024-05-01,08:00:00,2700\n")

	res, err := newStore().Load(path, 5400)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.NeedsMigration {
		t.Error("legacy time column not flagged for migration")
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Start != "08:00:00" {
		t.Errorf("start = %q, want reinterpreted time column", e.Start)
	}
	if e.End != "08:45:00" {
		t.Errorf("end = %q, want start+duration", e.End)
	}
	if e.Goal != 5400 {
		t.Errorf("goal = %d, want fallback 5400", e.Goal)
	}
}

func TestLoadLegacyMissingEndTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	writeFile(t, path,
		"date,start_time,duration_seconds,goal_seconds\n"+
			"2024-05-01,08:00:00,2700,7200\n"+
			"2024-05-02,N/A,600,7200\n")

	res, err := newStore().Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.NeedsMigration {
		t.Error("missing end_time not flagged for migration")
	}
	if res.Entries[0].End != "08:45:00" {
		t.Errorf("end = %q, want computed 08:45:00", res.Entries[0].End)
	}
	if res.Entries[1].End != "N/A" {
		t.Errorf("end = %q, want N/A when start is N/A", res.Entries[1].End)
	}
}

func TestLoadSkipsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	writeFile(t, path,
		"date,start_time,end_time,duration_seconds,goal_seconds\n"+
			"2024-05-01,08:00:00,08:45:00,notanumber,7200\n"+
			"2024-05-01,09:00:00,09:00:00,-5,7200\n"+
			"2024-05-01,10:00:00,10:10:00,600,7200\n"+
			",,,"+"100,7200\n")

	res, err := newStore().Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.NeedsMigration {
		t.Error("canonical file reported NeedsMigration")
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 (bad rows skipped)", len(res.Entries))
	}
	if res.Totals["2024-05-01"] != 600 {
		t.Errorf("total = %d, want 600", res.Totals["2024-05-01"])
	}
}

func TestLoadGoalMarkerAndLastRowWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	writeFile(t, path,
		"date,start_time,end_time,duration_seconds,goal_seconds\n"+
			"2024-05-01,08:00:00,08:45:00,2700,3600\n"+
			"2024-05-01,goal,goal,0,7200\n")

	res, err := newStore().Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 (marker is not an entry)", len(res.Entries))
	}
	if res.Goals["2024-05-01"] != 7200 {
		t.Errorf("goal = %d, want last-row value 7200", res.Goals["2024-05-01"])
	}
	if res.Totals["2024-05-01"] != 2700 {
		t.Errorf("total = %d, want 2700 (marker adds no time)", res.Totals["2024-05-01"])
	}
}

func TestRewriteMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	writeFile(t, path, "date,time,duration_seconds\n2024-05-01,08:00:00,2700\n")
	s := newStore()

	first, err := s.Load(path, 5400)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !first.NeedsMigration {
		t.Fatal("expected migration flag on legacy file")
	}
	if err := s.Rewrite(path, first.Entries, first.Goals); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	second, err := s.Load(path, 5400)
	if err != nil {
		t.Fatalf("Load after rewrite: %v", err)
	}
	if second.NeedsMigration {
		t.Error("migrated file still reports NeedsMigration")
	}
	if len(second.Entries) != len(first.Entries) {
		t.Fatalf("entries = %d, want %d", len(second.Entries), len(first.Entries))
	}
	for i := range first.Entries {
		if second.Entries[i] != first.Entries[i] {
			t.Errorf("entry %d changed across migration: %+v vs %+v",
				i, second.Entries[i], first.Entries[i])
		}
	}
	for key, total := range first.Totals {
		if second.Totals[key] != total {
			t.Errorf("total[%s] = %d, want %d", key, second.Totals[key], total)
		}
	}

	// Rewriting an already-canonical file must not change the bytes.
	before, _ := os.ReadFile(path)
	if err := s.Rewrite(path, second.Entries, second.Goals); err != nil {
		t.Fatalf("second Rewrite: %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("rewrite of canonical file changed its contents")
	}
}

func TestRewriteBackfillsMissingGoal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	s := newStore()

	entries := []model.Entry{{Date: "2024-05-01", Start: "08:00:00", End: "08:45:00", Duration: 2700}}
	goals := model.Goals{"2024-05-01": 7200}
	if err := s.Rewrite(path, entries, goals); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	res, err := s.Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Entries[0].Goal != 7200 {
		t.Errorf("goal = %d, want backfilled 7200", res.Entries[0].Goal)
	}
}

func TestAppendGoalMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	s := newStore()

	if err := s.AppendGoalMarker(path, "2024-05-01", 7200); err != nil {
		t.Fatalf("AppendGoalMarker: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "date,start_time,end_time,duration_seconds,goal_seconds\n" +
		"2024-05-01,goal,goal,0,7200\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", string(data), want)
	}
}
