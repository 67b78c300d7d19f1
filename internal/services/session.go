package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"fi-advisor-backend/internal/models"
)

const (
	GreetingText = "Hello! I'm your AI financial advisor. I have access to your complete financial profile through Fi's MCP Server. Ask me anything about your finances - from investment performance to future planning!"

	// ApologyText replaces the assistant reply whenever the provider fails.
	ApologyText = "I'm sorry, I encountered an error while processing your request. Please check your API key and try again."
)

type SessionOptions struct {
	Provider  ResponseProvider
	Publisher EventPublisher
	// Timeout bounds a single provider call. Zero means no limit.
	Timeout time.Duration
	Clock   func() time.Time
}

// Session is one advisory conversation. It allows a single outstanding
// provider call; submissions made while it is outstanding are ignored.
type Session struct {
	id        uuid.UUID
	provider  ResponseProvider
	publisher EventPublisher
	timeout   time.Duration
	now       func() time.Time

	mu         sync.Mutex
	transcript []models.Turn
	pending    bool
	input      string
	lastActive time.Time
}

func NewSession(id uuid.UUID, opts SessionOptions) *Session {
	if opts.Publisher == nil {
		opts.Publisher = discardPublisher{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Session{
		id:         id,
		provider:   opts.Provider,
		publisher:  opts.Publisher,
		timeout:    opts.Timeout,
		now:        opts.Clock,
		transcript: make([]models.Turn, 0, 16),
	}
	s.lastActive = s.now()
	s.appendLocked(models.SenderAssistant, GreetingText, models.KindInsight)
	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Exchange is the handle for one accepted submission.
type Exchange struct {
	user  models.Turn
	done  chan struct{}
	reply models.Turn
	err   error
}

// User is the turn committed when the submission was accepted.
func (e *Exchange) User() models.Turn {
	return e.user
}

// Done is closed once the provider call settled and the reply is in the
// transcript.
func (e *Exchange) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the exchange settles and returns the assistant turn. The
// error is non-nil only when ctx ends first.
func (e *Exchange) Wait(ctx context.Context) (models.Turn, error) {
	select {
	case <-e.done:
		return e.reply, nil
	case <-ctx.Done():
		return models.Turn{}, ctx.Err()
	}
}

// Err is the provider failure behind an apology turn, nil on success. Only
// meaningful after Done is closed.
func (e *Exchange) Err() error {
	select {
	case <-e.done:
		return e.err
	default:
		return nil
	}
}

// Submit commits text as a user turn and starts the provider call. It returns
// false, changing nothing, when text is blank or a call is already pending.
func (s *Session) Submit(ctx context.Context, text string) (*Exchange, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, false
	}
	userTurn := s.appendLocked(models.SenderUser, text, "")
	s.pending = true
	s.input = ""
	s.lastActive = s.now()
	s.mu.Unlock()

	s.publish(ctx, models.Event{Type: models.EventTurn, Payload: userTurn})
	s.publish(ctx, models.Event{Type: models.EventTyping, Payload: models.TypingState{Pending: true}})

	ex := &Exchange{user: userTurn, done: make(chan struct{})}
	go s.resolve(context.WithoutCancel(ctx), ex, text)
	return ex, true
}

// SubmitInput submits the current input buffer.
func (s *Session) SubmitInput(ctx context.Context) (*Exchange, bool) {
	s.mu.Lock()
	text := s.input
	s.mu.Unlock()
	return s.Submit(ctx, text)
}

// SelectSuggestion places text in the input buffer without sending it.
func (s *Session) SelectSuggestion(text string) {
	s.SetInput(text)
}

func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.lastActive = s.now()
	s.mu.Unlock()
}

func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Transcript returns a copy of the turns so far.
func (s *Session) Transcript() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyTranscriptLocked()
}

func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()
	return models.SessionState{
		ID:         s.id.String(),
		Transcript: s.copyTranscriptLocked(),
		Pending:    s.pending,
		Input:      s.input,
	}
}

// IdleSince reports the last time the session was used.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Notify pushes a toast to the session's subscribers.
func (s *Session) Notify(ctx context.Context, n models.Notification) {
	s.publish(ctx, models.Event{Type: models.EventToast, Payload: n})
}

func (s *Session) resolve(ctx context.Context, ex *Exchange, question string) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.provider.Generate(ctx, question)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.id.String()).Msg("advisor provider failed")
		reply = ApologyText
	}

	s.mu.Lock()
	turn := s.appendLocked(models.SenderAssistant, reply, models.KindInsight)
	s.pending = false
	s.lastActive = s.now()
	s.mu.Unlock()

	s.publish(ctx, models.Event{Type: models.EventTurn, Payload: turn})
	if err != nil {
		s.Notify(ctx, FailureNotification(err))
	}
	s.publish(ctx, models.Event{Type: models.EventTyping, Payload: models.TypingState{Pending: false}})

	ex.reply = turn
	ex.err = err
	close(ex.done)
}

// appendLocked adds a turn, never letting CreatedAt go backwards.
func (s *Session) appendLocked(sender models.Sender, text string, kind models.TurnKind) models.Turn {
	createdAt := s.now().UTC()
	if n := len(s.transcript); n > 0 && createdAt.Before(s.transcript[n-1].CreatedAt) {
		createdAt = s.transcript[n-1].CreatedAt
	}
	turn := models.Turn{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		CreatedAt: createdAt,
		Kind:      kind,
	}
	s.transcript = append(s.transcript, turn)
	return turn
}

func (s *Session) copyTranscriptLocked() []models.Turn {
	copied := make([]models.Turn, len(s.transcript))
	copy(copied, s.transcript)
	return copied
}

func (s *Session) publish(ctx context.Context, event models.Event) {
	if err := s.publisher.Publish(ctx, s.id, event); err != nil {
		log.Warn().Err(err).Str("session_id", s.id.String()).Str("event", event.Type).Msg("failed to publish session event")
	}
}

// FailureNotification describes a provider failure for the toast channel.
func FailureNotification(err error) models.Notification {
	n := models.Notification{Severity: models.SeverityError}

	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrMissingCredential):
		n.Title = "API Key Required"
		n.Description = "Add your Gemini API key to get AI-powered answers."
	case errors.As(err, &upstream):
		n.Title = "AI Response Failed"
		switch {
		case upstream.StatusCode >= 400:
			n.Description = fmt.Sprintf("Gemini returned %d %s. Check your API key and try again.",
				upstream.StatusCode, http.StatusText(upstream.StatusCode))
		case upstream.StatusCode != 0:
			n.Description = "Gemini returned an unexpected response. Please try again."
		default:
			n.Description = "Could not reach Gemini. Check your connection and try again."
		}
	default:
		n.Title = "Something Went Wrong"
		n.Description = "The advisor could not answer right now. Please try again."
	}
	return n
}
