package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/mendworks/mend/pkg/models"
)

func TestNextStageTable(t *testing.T) {
	tests := []struct {
		name      string
		pc        *Context
		wantStage models.Stage
		wantOK    bool
	}{
		{
			name:      "idle dispatches analyzer",
			pc:        &Context{State: models.StateIdle, MaxIterations: 3},
			wantStage: models.StageAnalyzer,
			wantOK:    true,
		},
		{
			name:      "issues detected dispatches corrector",
			pc:        &Context{State: models.StateIssuesDetected, MaxIterations: 3},
			wantStage: models.StageCorrector,
			wantOK:    true,
		},
		{
			name:      "validating dispatches validator",
			pc:        &Context{State: models.StateValidating, MaxIterations: 3},
			wantStage: models.StageValidator,
			wantOK:    true,
		},
		{
			name: "fix succeeded with validated issues stops",
			pc: &Context{
				State:  models.StateFixSucceeded,
				Issues: []models.Issue{{File: "a.py", Kind: "bug"}},
				Validations: []models.ValidationRecord{
					{Passed: true, Iteration: 2},
				},
				MaxIterations: 3,
			},
			wantOK: false,
		},
		{
			name: "fix succeeded with unvalidated issues redispatches corrector",
			pc: &Context{
				State:         models.StateFixSucceeded,
				Issues:        []models.Issue{{File: "a.py", Kind: "bug"}},
				MaxIterations: 3,
				Iteration:     1,
			},
			wantStage: models.StageCorrector,
			wantOK:    true,
		},
		{
			name: "fix failed within budget retries corrector",
			pc: &Context{
				State:         models.StateFixFailed,
				Iteration:     2,
				MaxIterations: 3,
			},
			wantStage: models.StageCorrector,
			wantOK:    true,
		},
		{
			name: "fix failed at budget stops",
			pc: &Context{
				State:         models.StateFixFailed,
				Iteration:     3,
				MaxIterations: 3,
			},
			wantOK: false,
		},
		{
			name:   "completed is terminal",
			pc:     &Context{State: models.StateCompleted, MaxIterations: 3},
			wantOK: false,
		},
		{
			name:   "aborted is terminal",
			pc:     &Context{State: models.StateAborted, MaxIterations: 3},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, ok := NextStage(tt.pc)
			if ok != tt.wantOK {
				t.Fatalf("NextStage ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && stage != tt.wantStage {
				t.Errorf("NextStage = %q, want %q", stage, tt.wantStage)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		pc         *Context
		wantStop   bool
		wantReason string
	}{
		{
			name:       "budget exhausted",
			pc:         &Context{State: models.StateFixFailed, Iteration: 3, MaxIterations: 3},
			wantStop:   true,
			wantReason: "max iterations reached",
		},
		{
			name:       "completed",
			pc:         &Context{State: models.StateCompleted, Iteration: 1, MaxIterations: 3},
			wantStop:   true,
			wantReason: "resolved",
		},
		{
			name: "aborted reports last error",
			pc: &Context{
				State: models.StateAborted, Iteration: 1, MaxIterations: 3,
				ErrorLog: []string{"first", "analyzer: boom"},
			},
			wantStop:   true,
			wantReason: "analyzer: boom",
		},
		{
			name:       "aborted without error log",
			pc:         &Context{State: models.StateAborted, Iteration: 1, MaxIterations: 3},
			wantStop:   true,
			wantReason: "unknown error",
		},
		{
			name:       "clean listening state",
			pc:         &Context{State: models.StateListening, Iteration: 1, MaxIterations: 3},
			wantStop:   true,
			wantReason: "clean, no issues",
		},
		{
			name: "all fixes validated",
			pc: &Context{
				State: models.StateFixSucceeded, Iteration: 2, MaxIterations: 3,
				Issues:      []models.Issue{{File: "a.py", Kind: "bug"}},
				Validations: []models.ValidationRecord{{Passed: true}},
			},
			wantStop:   true,
			wantReason: "all fixes validated",
		},
		{
			name:     "mid-run state continues",
			pc:       &Context{State: models.StateIssuesDetected, Iteration: 1, MaxIterations: 3},
			wantStop: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop, reason := Evaluate(tt.pc)
			if stop != tt.wantStop {
				t.Fatalf("Evaluate stop = %v, want %v", stop, tt.wantStop)
			}
			if reason != tt.wantReason {
				t.Errorf("Evaluate reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

// The graph must agree with the transition function on every state it can
// observe, since its predicates delegate to it.
func TestGraphMatchesTransitionFunction(t *testing.T) {
	g := NewGraph()
	batons := []*Context{
		{State: models.StateIdle, MaxIterations: 3},
		{State: models.StateIssuesDetected, MaxIterations: 3},
		{State: models.StateValidating, MaxIterations: 3},
		{State: models.StateFixFailed, Iteration: 1, MaxIterations: 3},
		{State: models.StateFixFailed, Iteration: 3, MaxIterations: 3},
		{
			State: models.StateFixSucceeded, Iteration: 2, MaxIterations: 3,
			Issues: []models.Issue{{File: "a.py", Kind: "bug"}},
		},
		{
			State: models.StateFixSucceeded, Iteration: 2, MaxIterations: 3,
			Issues:      []models.Issue{{File: "a.py", Kind: "bug"}},
			Validations: []models.ValidationRecord{{Passed: true}},
		},
		{State: models.StateCompleted, MaxIterations: 3},
		{State: models.StateAborted, MaxIterations: 3},
	}
	for _, pc := range batons {
		wantStage, wantOK := NextStage(pc)
		gotStage, gotOK := g.Next(pc)
		if gotOK != wantOK || gotStage != wantStage {
			t.Errorf("state %q: graph = (%q, %v), transition = (%q, %v)",
				pc.State, gotStage, gotOK, wantStage, wantOK)
		}
	}
}

func TestGraphRenderings(t *testing.T) {
	g := NewGraph()

	dot := g.DOT()
	for _, want := range []string{"digraph mend", `"idle"`, `"issues_detected" -> "correcting"`, "peripheries=2"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}

	ascii := g.ASCII()
	if !strings.Contains(ascii, "terminal states") || !strings.Contains(ascii, "analyzer") {
		t.Errorf("unexpected ASCII rendering:\n%s", ascii)
	}
}

func TestContextClone(t *testing.T) {
	pc := NewContext("/tmp/target", 3)
	pc.Issues = []models.Issue{{File: "a.py", Kind: "bug"}}
	pc.TestFailureLogs = []string{"FAILED test_a"}
	pc.StartedAt = time.Now()

	cp := pc.Clone()
	cp.Issues[0].File = "b.py"
	cp.TestFailureLogs = append(cp.TestFailureLogs, "FAILED test_b")

	if pc.Issues[0].File != "a.py" {
		t.Error("clone shares the issues slice with the original")
	}
	if len(pc.TestFailureLogs) != 1 {
		t.Error("clone shares the failure logs slice with the original")
	}
}
