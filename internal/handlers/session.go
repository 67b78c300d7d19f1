package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"fi-advisor-backend/internal/middleware"
	"fi-advisor-backend/internal/models"
	"fi-advisor-backend/internal/services"
)

type sessionStore interface {
	Create(ctx context.Context) *services.Session
	Get(ctx context.Context, id uuid.UUID) (*services.Session, error)
}

type tokenIssuer interface {
	GenerateSessionToken(sessionID uuid.UUID) (string, error)
}

const (
	RejectEmpty = "empty"
	RejectBusy  = "busy"
)

type SessionHandler struct {
	sessions    sessionStore
	tokens      tokenIssuer
	waitTimeout time.Duration
}

// NewSessionHandler serves the session routes. waitTimeout caps how long a
// ?wait=true submission blocks for its reply; zero waits for the request
// context only.
func NewSessionHandler(sessions sessionStore, tokens tokenIssuer, waitTimeout time.Duration) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokens: tokens, waitTimeout: waitTimeout}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create(r.Context())

	token, err := h.tokens.GenerateSessionToken(session.ID())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{
		Session: session.State(),
		Token:   token,
	})
}

func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	session, ok := h.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.State())
}

// SetInput places a suggestion (or any draft) in the input buffer.
func (h *SessionHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	session, ok := h.current(w, r)
	if !ok {
		return
	}

	var req models.InputRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session.SelectSuggestion(req.Text)
	writeJSON(w, http.StatusOK, session.State())
}

// Submit sends text, or the input buffer when text is empty. Guarded
// submissions are not errors: they answer 200 with accepted=false.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.current(w, r)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	var (
		ex       *services.Exchange
		accepted bool
		draft    = req.Text
	)
	if strings.TrimSpace(req.Text) == "" {
		draft = session.Input()
		ex, accepted = session.SubmitInput(r.Context())
	} else {
		ex, accepted = session.Submit(r.Context(), req.Text)
	}

	if !accepted {
		reason := RejectBusy
		if strings.TrimSpace(draft) == "" {
			reason = RejectEmpty
		}
		writeJSON(w, http.StatusOK, models.SubmitResponse{Accepted: false, Reason: reason})
		return
	}

	user := ex.User()
	resp := models.SubmitResponse{Accepted: true, UserTurn: &user}

	if r.URL.Query().Get("wait") == "true" {
		ctx := r.Context()
		if h.waitTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.waitTimeout)
			defer cancel()
		}
		if reply, err := ex.Wait(ctx); err == nil {
			resp.ReplyTurn = &reply
		}
	}

	writeJSON(w, http.StatusAccepted, resp)
}

func (h *SessionHandler) current(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, err := h.sessions.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}
	return session, true
}
