package pipeline

import (
	"time"

	"github.com/mendworks/mend/pkg/models"
)

// EventType identifies what happened inside the relay.
type EventType string

const (
	// EventRunStarted fires once when the relay loop begins.
	EventRunStarted EventType = "run_started"
	// EventHandover fires when the baton is handed to a stage.
	EventHandover EventType = "handover"
	// EventStageDone fires when a stage returns the baton.
	EventStageDone EventType = "stage_done"
	// EventHealing fires when a validation failure triggers a retry.
	EventHealing EventType = "healing"
	// EventRunFinished fires once with the stop reason.
	EventRunFinished EventType = "run_finished"
)

// Event is a progress notification emitted by the relay. Consumers that
// fall behind lose events rather than blocking the pipeline.
type Event struct {
	Type      EventType    `json:"type"`
	RunID     string       `json:"run_id"`
	Stage     models.Stage `json:"stage,omitempty"`
	State     models.State `json:"state,omitempty"`
	Iteration int          `json:"iteration"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func (r *Relay) emit(ev Event) {
	if r.events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case r.events <- ev:
	default:
	}
}
