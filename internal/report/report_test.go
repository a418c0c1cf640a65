package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/pkg/models"
)

func finishedContext() *pipeline.Context {
	pc := pipeline.NewContext("/tmp/target", 5)
	pc.State = models.StateFixSucceeded
	pc.Iteration = 3
	pc.HealingAttempts = 1
	pc.Issues = []models.Issue{{File: "calc.py", Kind: "logic_error", Severity: models.SeverityCritical}}
	pc.AppliedFixes = []models.FixRecord{{File: "calc.py", Summary: "use addition", Iteration: 2}}
	pc.StartedAt = time.Now().Add(-time.Minute)
	pc.EndedAt = time.Now()
	return pc
}

func TestFromContext(t *testing.T) {
	r := FromContext(finishedContext())
	if !r.StopSucceeded {
		t.Error("fix_succeeded should count as success")
	}
	if r.Iterations != 3 || r.HealingAttempts != 1 {
		t.Errorf("report = %+v", r)
	}
	if r.Duration <= 0 {
		t.Error("duration should be positive")
	}

	aborted := finishedContext()
	aborted.State = models.StateAborted
	if FromContext(aborted).StopSucceeded {
		t.Error("aborted should not count as success")
	}
}

func TestWriteFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := FromContext(finishedContext()).WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.FinalState != models.StateFixSucceeded {
		t.Errorf("final state = %q", decoded.FinalState)
	}
}

func TestWriteFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := FromContext(finishedContext()).WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Iterations != 3 {
		t.Errorf("iterations = %d", decoded.Iterations)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	r := FromContext(finishedContext())
	r.Errors = []string{"corrector: rejected change"}
	r.Render(&buf)

	out := buf.String()
	for _, want := range []string{"iterations: 3/5", "healing retries", "fixes:      1", "rejected change"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}
