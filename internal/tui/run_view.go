// Package tui provides the live terminal view of a pipeline run.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/pkg/models"
)

// EventMsg wraps a relay event for the TUI.
type EventMsg struct {
	Event pipeline.Event
}

// RunDoneMsg signals that the pipeline run has completed.
type RunDoneMsg struct {
	Success bool
	State   models.State
	Message string
}

// logLine is one entry in the scrolling event log.
type logLine struct {
	at   time.Time
	text string
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	healStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// RunView is the bubbletea model for a live pipeline run.
type RunView struct {
	target string

	spin      spinner.Model
	stage     models.Stage
	state     models.State
	iteration int
	healing   int
	logs      []logLine

	done       bool
	success    bool
	finalState models.State
	message    string
	quitting   bool
	width      int
}

// NewRunView creates the run view for a target directory.
func NewRunView(target string) *RunView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &RunView{target: target, spin: sp}
}

// NewProgram wraps the run view in a tea program.
func NewProgram(target string) (*tea.Program, *RunView) {
	view := NewRunView(target)
	return tea.NewProgram(view), view
}

// Init implements tea.Model.
func (v *RunView) Init() tea.Cmd {
	return v.spin.Tick
}

// Update implements tea.Model.
func (v *RunView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			v.quitting = true
			return v, tea.Quit
		}

	case tea.WindowSizeMsg:
		v.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case EventMsg:
		v.handleEvent(msg.Event)

	case RunDoneMsg:
		v.done = true
		v.success = msg.Success
		v.finalState = msg.State
		v.message = msg.Message
	}
	return v, nil
}

func (v *RunView) handleEvent(ev pipeline.Event) {
	v.state = ev.State
	if ev.Iteration > 0 {
		v.iteration = ev.Iteration
	}
	switch ev.Type {
	case pipeline.EventHandover:
		v.stage = ev.Stage
		v.addLog(fmt.Sprintf("iteration %d: %s takes over", ev.Iteration, ev.Stage))
	case pipeline.EventStageDone:
		if ev.Message != "" {
			v.addLog(fmt.Sprintf("%s failed: %s", ev.Stage, ev.Message))
		} else {
			v.addLog(fmt.Sprintf("%s done, state %s", ev.Stage, ev.State))
		}
	case pipeline.EventHealing:
		v.healing++
		v.addLog(healStyle.Render(ev.Message))
	case pipeline.EventRunFinished:
		v.addLog(fmt.Sprintf("finished: %s (%s)", ev.State, ev.Message))
	}
}

func (v *RunView) addLog(text string) {
	v.logs = append(v.logs, logLine{at: time.Now(), text: text})
	const keep = 12
	if len(v.logs) > keep {
		v.logs = v.logs[len(v.logs)-keep:]
	}
}

// View implements tea.Model.
func (v *RunView) View() string {
	if v.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("mend "+v.target) + "\n\n")

	if v.done {
		verdict := failureStyle.Render(string(v.finalState))
		if v.success {
			verdict = successStyle.Render(string(v.finalState))
		}
		fmt.Fprintf(&b, "%s  %s\n", verdict, v.message)
	} else {
		stage := "starting"
		if v.stage != "" {
			stage = string(v.stage)
		}
		fmt.Fprintf(&b, "%s %s  iteration %d", v.spin.View(), stageStyle.Render(stage), v.iteration)
		if v.healing > 0 {
			fmt.Fprintf(&b, "  %s", healStyle.Render(fmt.Sprintf("healing x%d", v.healing)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, l := range v.logs {
		fmt.Fprintf(&b, "%s %s\n", dimStyle.Render(l.at.Format("15:04:05")), l.text)
	}

	b.WriteString("\n" + dimStyle.Render("press q to quit") + "\n")
	return b.String()
}

var _ tea.Model = (*RunView)(nil)
