package models

// Event types pushed to session subscribers.
const (
	EventTurn   = "turn"
	EventTyping = "typing"
	EventToast  = "toast"
)

// Severity of a toast notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Event is the envelope written to WebSocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notification is a fire-and-forget toast. It is never part of a transcript.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

type TypingState struct {
	Pending bool `json:"pending"`
}
