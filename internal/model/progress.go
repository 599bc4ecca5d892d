package model

// EventType distinguishes progress notifications.
type EventType string

const (
	EventStageStarted  EventType = "stage_started"
	EventStageComplete EventType = "stage_complete"
	EventComplete      EventType = "complete"
	EventFailed        EventType = "failed"
)

// ProgressEvent is an ephemeral, ordered notification emitted by the
// orchestrator as stages run. Not persisted; delivered at most once to the
// current subscriber. Exactly one terminal event (complete or failed) ends
// every stream.
type ProgressEvent struct {
	Type    EventType `json:"type"`
	Stage   string    `json:"stage,omitempty"`
	Message string    `json:"message"`
	Percent int       `json:"percent"`

	// Result is set only on the terminal complete event.
	Result *FinalAnalysis `json:"result,omitempty"`

	// Error is set only on the terminal failed event.
	Error string `json:"error,omitempty"`
}

// Terminal reports whether this event ends the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventFailed
}
