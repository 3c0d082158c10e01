package websocket

import "github.com/lakshyaprep/lakshya-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionChat Action = "chat"
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ChatRequest is sent by the client to run one tutoring turn. Messages
// carries the whole conversation so far; the server holds no state.
type ChatRequest struct {
	Action   Action              `json:"action"`
	Messages []model.ChatMessage `json:"messages"`
	Subject  string              `json:"subject,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventDelta Event = "delta"
	EventDone  Event = "done"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// DeltaResponse streams one chunk of the tutor's reply.
type DeltaResponse struct {
	Event   Event  `json:"event"`
	Content string `json:"content"`
}

// DoneResponse closes a turn with the full accumulated reply.
type DoneResponse struct {
	Event Event  `json:"event"`
	Reply string `json:"reply"`
	Model string `json:"model"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
