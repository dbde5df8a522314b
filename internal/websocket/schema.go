package websocket

import "github.com/stemsi/quizgate/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionQuestions Action = "questions"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestPayload is every client message. Fields beyond Action are used by
// the actions that need them.
type RequestPayload struct {
	Action  Action                  `json:"action"`
	Session string                  `json:"session,omitempty"`
	Answers []model.SubmittedAnswer `json:"answers,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventQuestions Event = "questions"
	EventGraded    Event = "graded"
	EventPong      Event = "pong"
)

// ResponsePayload wraps every server message.
type ResponsePayload struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
