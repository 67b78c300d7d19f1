package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fi-advisor-backend/internal/handlers"
	"fi-advisor-backend/internal/middleware"
	"fi-advisor-backend/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	messageLimiter *middleware.RateLimiter,
	sessionHandler *handlers.SessionHandler,
	credentialHandler *handlers.CredentialHandler,
	advisorHandler *handlers.AdvisorHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Public advisor data ────
		r.Get("/suggestions", advisorHandler.Suggestions)
		r.Get("/profile", advisorHandler.Profile)

		// ──── Sessions ────
		r.Post("/sessions", sessionHandler.Create)

		r.Route("/session", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/", sessionHandler.State)
			r.Put("/input", sessionHandler.SetInput)

			r.Group(func(r chi.Router) {
				r.Use(messageLimiter.Middleware)
				r.Post("/messages", sessionHandler.Submit)
			})
		})

		// ──── Credential ────
		r.Route("/credential", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/", credentialHandler.Status)
			r.With(messageLimiter.Middleware).Put("/", credentialHandler.Save)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
