package handlers

import (
	"net/http"

	"fi-advisor-backend/internal/models"
	"fi-advisor-backend/internal/services"
)

// AdvisorHandler serves the read-only advisor data.
type AdvisorHandler struct {
	profile models.FinancialProfile
}

func NewAdvisorHandler(profile models.FinancialProfile) *AdvisorHandler {
	return &AdvisorHandler{profile: profile}
}

func (h *AdvisorHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": services.Suggestions(),
	})
}

func (h *AdvisorHandler) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.profile)
}
