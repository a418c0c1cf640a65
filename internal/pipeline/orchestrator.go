package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mendworks/mend/pkg/models"
)

// ErrStageNotRegistered is returned by Run when the transition function
// selects a stage that was never registered.
var ErrStageNotRegistered = errors.New("pipeline: stage not registered")

// Relay drives the analyze, correct, validate loop. It owns the baton
// between handovers, enforces the iteration budget, and is the only writer
// of HealingAttempts.
type Relay struct {
	stages  map[models.Stage]Stage
	events  chan Event
	verbose bool
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithEventBuffer gives the relay an event channel with the given capacity.
// Without it the relay emits no events.
func WithEventBuffer(n int) RelayOption {
	return func(r *Relay) { r.events = make(chan Event, n) }
}

// WithVerbose enables per-step logging.
func WithVerbose() RelayOption {
	return func(r *Relay) { r.verbose = true }
}

// NewRelay creates an empty relay. Stages are bound with RegisterStage
// before Run.
func NewRelay(opts ...RelayOption) *Relay {
	r := &Relay{stages: make(map[models.Stage]Stage)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterStage binds an implementation to a pipeline role, replacing any
// previous binding for that role.
func (r *Relay) RegisterStage(s Stage) {
	r.stages[s.Name()] = s
}

// Events returns the relay's event channel, or nil if none was configured.
// The channel is closed when Run returns.
func (r *Relay) Events() <-chan Event { return r.events }

// Run drives the pipeline to completion and returns the final baton. Run
// never returns an error for outcomes the pipeline models: validation
// failures, budget exhaustion, and stage crashes are all reported through
// the final context's state and error log. The returned context is always
// non-nil and carries a terminal or outcome state.
func (r *Relay) Run(ctx context.Context, pc *Context) *Context {
	pc.StartedAt = time.Now()
	r.emit(Event{Type: EventRunStarted, RunID: pc.RunID, State: pc.State})

	reason := r.loop(ctx, pc)

	pc.EndedAt = time.Now()
	pc.CurrentStage = ""
	if !pc.State.Outcome() {
		pc.State = models.StateCompleted
	}
	r.emit(Event{
		Type: EventRunFinished, RunID: pc.RunID,
		State: pc.State, Iteration: pc.Iteration, Message: reason,
	})
	if r.events != nil {
		close(r.events)
	}
	r.logf("run %s finished: state=%s reason=%q iterations=%d healing=%d",
		pc.RunID, pc.State, reason, pc.Iteration, pc.HealingAttempts)
	return pc
}

// loop is one full relay execution. It mutates pc in place and returns the
// stop reason.
func (r *Relay) loop(ctx context.Context, pc *Context) string {
	for {
		if err := ctx.Err(); err != nil {
			pc.ErrorLog = append(pc.ErrorLog, err.Error())
			pc.State = models.StateAborted
			return "canceled"
		}

		next, ok := NextStage(pc)
		if !ok {
			if stop, reason := Evaluate(pc); stop {
				return reason
			}
			// Unreachable for conforming stages: every exit state
			// either maps to a next stage or satisfies a stop rule.
			pc.ErrorLog = append(pc.ErrorLog, fmt.Sprintf("pipeline stalled in state %q", pc.State))
			pc.State = models.StateAborted
			return "stalled"
		}

		// Analyzer and corrector dispatches are work passes and spend
		// the budget. The validator rides on the pass it judges.
		if next != models.StageValidator {
			if pc.Iteration >= pc.MaxIterations {
				return "max iterations reached"
			}
			pc.Iteration++
		}

		impl, bound := r.stages[next]
		if !bound {
			pc.ErrorLog = append(pc.ErrorLog, fmt.Sprintf("%s: %s", ErrStageNotRegistered, next))
			pc.State = models.StateAborted
			return fmt.Sprintf("stage %s not registered", next)
		}

		// Handover: the stage takes ownership of the baton.
		pc.CurrentStage = next
		pc.State = next.EnteringState()
		r.emit(Event{
			Type: EventHandover, RunID: pc.RunID,
			Stage: next, State: pc.State, Iteration: pc.Iteration,
		})
		r.logf("run %s iteration %d: -> %s", pc.RunID, pc.Iteration, next)

		out, err := impl.Execute(ctx, pc.Clone())
		if err != nil {
			pc.ErrorLog = append(pc.ErrorLog, fmt.Sprintf("%s: %v", next, err))
			pc.State = models.StateAborted
			r.emit(Event{
				Type: EventStageDone, RunID: pc.RunID,
				Stage: next, State: pc.State, Iteration: pc.Iteration,
				Message: err.Error(),
			})
			return fmt.Sprintf("stage %s failed: %v", next, err)
		}
		*pc = *out
		pc.CurrentStage = ""

		// Single writer for the healing counter: the relay, here.
		if next == models.StageValidator && pc.State == models.StateFixFailed {
			pc.HealingAttempts++
			r.emit(Event{
				Type: EventHealing, RunID: pc.RunID,
				State: pc.State, Iteration: pc.Iteration,
				Message: fmt.Sprintf("validation failed, healing attempt %d", pc.HealingAttempts),
			})
		}
		r.emit(Event{
			Type: EventStageDone, RunID: pc.RunID,
			Stage: next, State: pc.State, Iteration: pc.Iteration,
		})
	}
}

func (r *Relay) logf(format string, args ...any) {
	if r.verbose {
		log.Printf("[relay] "+format, args...)
	}
}
