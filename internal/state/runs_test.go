package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func finishedContext() *pipeline.Context {
	pc := pipeline.NewContext("/tmp/target", 5)
	pc.State = models.StateFixSucceeded
	pc.Iteration = 3
	pc.HealingAttempts = 1
	pc.Issues = []models.Issue{{File: "calc.py", Kind: "logic_error", Severity: models.SeverityCritical}}
	pc.AppliedFixes = []models.FixRecord{
		{File: "calc.py", Summary: "use addition", Iteration: 2, AppliedAt: time.Now()},
		{File: "calc.py", Summary: "retry fix", Iteration: 3, Healing: true, AppliedAt: time.Now()},
	}
	pc.EndedAt = time.Now()
	return pc
}

func TestSaveAndListRuns(t *testing.T) {
	db := openTestDB(t)
	pc := finishedContext()
	if err := db.SaveRun(pc); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != pc.RunID || r.FinalState != "fix_succeeded" {
		t.Errorf("run = %+v", r)
	}
	if r.Iterations != 3 || r.HealingAttempts != 1 || r.FixCount != 2 {
		t.Errorf("counts = %+v", r)
	}
}

func TestRunFixes(t *testing.T) {
	db := openTestDB(t)
	pc := finishedContext()
	if err := db.SaveRun(pc); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	fixes, err := db.RunFixes(pc.RunID)
	if err != nil {
		t.Fatalf("RunFixes: %v", err)
	}
	if len(fixes) != 2 {
		t.Fatalf("got %d fixes, want 2", len(fixes))
	}
	if fixes[0].Summary != "use addition" || fixes[1].Healing != true {
		t.Errorf("fixes = %+v", fixes)
	}
}

func TestPurgeOldRuns(t *testing.T) {
	db := openTestDB(t)
	pc := finishedContext()
	pc.StartedAt = time.Now().Add(-48 * time.Hour)
	if err := db.SaveRun(pc); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	n, err := db.PurgeOldRuns(24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOldRuns: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d runs, want 1", n)
	}
	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("runs remaining after purge: %d", len(runs))
	}
}
