package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mendworks/mend/pkg/models"
)

// Graph is the declarative form of the pipeline's state machine: states are
// nodes, stage dispatches are edges. Edge predicates delegate to NextStage,
// so the graph can never disagree with the relay loop about which stage
// runs next.
type Graph struct {
	nodes []models.State
	edges []Edge
}

// Edge is one conditional transition in the pipeline graph.
type Edge struct {
	// From is the state the edge leaves.
	From models.State
	// Stage is the capability dispatched when the edge is taken.
	Stage models.Stage
	// To is the state entered on dispatch.
	To models.State
	// Label describes the condition under which the edge is taken.
	Label string
	// taken reports whether the edge applies to the given baton. It
	// calls NextStage rather than restating the decision.
	taken func(pc *Context) bool
}

// Taken reports whether this edge would be followed for the given baton.
func (e Edge) Taken(pc *Context) bool {
	if pc.State != e.From {
		return false
	}
	return e.taken(pc)
}

// NewGraph builds the pipeline graph. The node and edge sets are fixed;
// only edge conditions depend on the baton.
func NewGraph() *Graph {
	dispatches := func(stage models.Stage) func(pc *Context) bool {
		return func(pc *Context) bool {
			next, ok := NextStage(pc)
			return ok && next == stage
		}
	}
	return &Graph{
		nodes: []models.State{
			models.StateIdle, models.StateListening, models.StateIssuesDetected,
			models.StateCorrecting, models.StateValidating, models.StateFixSucceeded,
			models.StateFixFailed, models.StateCompleted, models.StateAborted,
		},
		edges: []Edge{
			{
				From: models.StateIdle, Stage: models.StageAnalyzer,
				To: models.StateListening, Label: "start",
				taken: dispatches(models.StageAnalyzer),
			},
			{
				From: models.StateIssuesDetected, Stage: models.StageCorrector,
				To: models.StateCorrecting, Label: "issues found",
				taken: dispatches(models.StageCorrector),
			},
			{
				From: models.StateValidating, Stage: models.StageValidator,
				To: models.StateValidating, Label: "corrections pending",
				taken: dispatches(models.StageValidator),
			},
			{
				From: models.StateFixSucceeded, Stage: models.StageCorrector,
				To: models.StateCorrecting, Label: "unresolved issues remain",
				taken: dispatches(models.StageCorrector),
			},
			{
				From: models.StateFixFailed, Stage: models.StageCorrector,
				To: models.StateCorrecting, Label: "healing retry, budget remains",
				taken: dispatches(models.StageCorrector),
			},
		},
	}
}

// Next returns the stage the graph dispatches for the baton, mirroring
// NextStage exactly.
func (g *Graph) Next(pc *Context) (models.Stage, bool) {
	for _, e := range g.edges {
		if e.Taken(pc) {
			return e.Stage, true
		}
	}
	return "", false
}

// Nodes returns the graph's states in display order.
func (g *Graph) Nodes() []models.State {
	return append([]models.State(nil), g.nodes...)
}

// Edges returns the graph's conditional transitions.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// DOT renders the graph in Graphviz dot format.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph mend {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")
	for _, n := range g.nodes {
		attrs := ""
		if n.Terminal() {
			attrs = " [peripheries=2]"
		}
		fmt.Fprintf(&b, "  %q%s;\n", n, attrs)
	}
	for _, e := range g.edges {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From, e.To, fmt.Sprintf("%s: %s", e.Stage, e.Label))
	}
	b.WriteString("}\n")
	return b.String()
}

// ASCII renders a readable transition listing for terminal output.
func (g *Graph) ASCII() string {
	edges := g.Edges()
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].From < edges[j].From })
	var b strings.Builder
	b.WriteString("pipeline transitions:\n")
	for _, e := range edges {
		fmt.Fprintf(&b, "  %-16s --[%s]--> %-12s (%s)\n", e.From, e.Stage, e.To, e.Label)
	}
	b.WriteString("terminal states: completed, aborted\n")
	return b.String()
}
