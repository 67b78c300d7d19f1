package handlers

import (
	"net/http"
	"strings"

	"fi-advisor-backend/internal/middleware"
	"fi-advisor-backend/internal/models"
	"fi-advisor-backend/internal/services"
)

type CredentialHandler struct {
	store    services.CredentialStore
	sessions sessionStore
}

func NewCredentialHandler(store services.CredentialStore, sessions sessionStore) *CredentialHandler {
	return &CredentialHandler{store: store, sessions: sessions}
}

// Status reports whether a key is configured. The key itself is never returned.
func (h *CredentialHandler) Status(w http.ResponseWriter, r *http.Request) {
	value, err := h.store.Load(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CredentialStatus{Configured: strings.TrimSpace(value) != ""})
}

func (h *CredentialHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.store.Save(r.Context(), req.APIKey); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if session, err := h.sessions.Get(r.Context(), middleware.GetSessionID(r.Context())); err == nil {
		session.Notify(r.Context(), models.Notification{
			Title:       "API Key Saved",
			Description: "Your Gemini API key has been saved successfully.",
			Severity:    models.SeveritySuccess,
		})
	}

	writeJSON(w, http.StatusOK, models.CredentialStatus{Configured: true})
}
