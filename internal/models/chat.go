package models

import "time"

// Sender identifies who produced a turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// TurnKind is a display hint on assistant turns. It has no behavioral effect.
type TurnKind string

const (
	KindInsight        TurnKind = "insight"
	KindCalculation    TurnKind = "calculation"
	KindRecommendation TurnKind = "recommendation"
)

// Turn is one entry of a conversation transcript.
type Turn struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
	Kind      TurnKind  `json:"kind,omitempty"`
}

// SessionState is a point-in-time copy of a session.
type SessionState struct {
	ID         string `json:"id"`
	Transcript []Turn `json:"transcript"`
	Pending    bool   `json:"pending"`
	Input      string `json:"input"`
}

// Suggestion is a canned question offered next to the chat box.
type Suggestion struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// SubmitRequest is the payload of the message endpoint. An empty Text
// submits the session's input buffer.
type SubmitRequest struct {
	Text string `json:"text"`
}

// SubmitResponse reports whether a submission started an exchange.
type SubmitResponse struct {
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason,omitempty"`
	UserTurn  *Turn  `json:"user_turn,omitempty"`
	ReplyTurn *Turn  `json:"reply_turn,omitempty"`
}

// InputRequest replaces the unsent input buffer.
type InputRequest struct {
	Text string `json:"text"`
}

// CreateSessionResponse carries the new session and the bearer token bound to it.
type CreateSessionResponse struct {
	Session SessionState `json:"session"`
	Token   string       `json:"token"`
}
