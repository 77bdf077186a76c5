package websocket

import "github.com/polisure/certprep-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// Request carries every client action; unused fields stay empty.
type Request struct {
	Action Action   `json:"action"`
	QID    string   `json:"q_id,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick      Event = "tick"
	EventSaved     Event = "saved"
	EventSubmitted Event = "section_submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// TickResponse is pushed once a second while a section is active.
type TickResponse struct {
	Event         Event  `json:"event"`
	State         string `json:"state"`
	SectionIndex  int    `json:"section_index"`
	RemainingSecs int    `json:"remaining_seconds"`
}

type SavedResponse struct {
	Event Event  `json:"event"`
	QID   string `json:"q_id"`
}

// SubmittedResponse announces a graded section, whether the client
// submitted it or the timer ran out.
type SubmittedResponse struct {
	Event     Event               `json:"event"`
	AutoByTTL bool                `json:"auto_by_timeout"`
	Section   model.SectionResult `json:"section"`
	HasMore   bool                `json:"has_more_sections"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
