package websocket

import "github.com/sparx365/homework-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionExtract Action = "extract"
	ActionPing    Action = "ping"
)

// ExtractRequest asks the server to extract an assignment and stream the
// sections back as they are assembled.
type ExtractRequest struct {
	Action Action `json:"action"`
	URL    string `json:"url"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSection Event = "section"
	EventDone    Event = "done"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// SectionEvent carries one completed section, in document order.
type SectionEvent struct {
	Event   Event         `json:"event"`
	Index   int           `json:"index"`
	Section model.Section `json:"section"`
}

// DoneEvent closes an extraction stream with its summary.
type DoneEvent struct {
	Event         Event  `json:"event"`
	Title         string `json:"title"`
	SectionCount  int    `json:"section_count"`
	QuestionCount int    `json:"question_count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
