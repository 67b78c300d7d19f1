package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"fi-advisor-backend/internal/config"
	"fi-advisor-backend/internal/database"
	"fi-advisor-backend/internal/handlers"
	"fi-advisor-backend/internal/logging"
	"fi-advisor-backend/internal/middleware"
	"fi-advisor-backend/internal/repository"
	"fi-advisor-backend/internal/router"
	"fi-advisor-backend/internal/services"
	"fi-advisor-backend/internal/websocket"
)

const submitWaitTimeout = 30 * time.Second

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.MustLoadServer()
	logging.Setup(cfg.LogLevel, cfg.Env)
	log.Info().Msg("🚀 Starting Fi Advisor Backend...")
	log.Info().Str("env", cfg.Env).Msg("✓ Environment variables loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Initialize Redis Clients (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		var err error
		redisClients, err = database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("✗ Redis connection failed")
		}
		defer redisClients.Close()
		log.Info().Msg("✓ Redis connected")
	} else {
		log.Info().Msg("✓ Redis not configured, using in-process event delivery")
	}

	// ──── Step 3: Credential Store ────
	credentials := newCredentialStore(cfg, redisClients)
	if err := seedCredential(ctx, credentials, cfg.GeminiAPIKey); err != nil {
		log.Fatal().Err(err).Msg("✗ Credential seeding failed")
	}
	log.Info().Msg("✓ Credential store ready")

	// ──── Step 4: Response Provider ────
	provider, err := services.NewProvider(services.ProviderOptions{
		Kind:        cfg.Provider,
		Credentials: credentials,
		Endpoint:    cfg.GeminiEndpoint,
		Model:       cfg.GeminiModel,
		LocalDelay:  cfg.LocalResponseDelay,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Advisor provider initialization failed")
	}
	log.Info().Str("provider", cfg.Provider).Msg("✓ Advisor provider initialized")

	// ──── Step 5: Start WebSocket Hub ────
	sessionAuth := middleware.NewSessionAuth(cfg.JWTSecret, cfg.SessionTTL)

	var pubsubClient *redis.Client
	if redisClients != nil {
		pubsubClient = redisClients.PubSub
	}
	wsHub := websocket.NewHub(pubsubClient, sessionAuth)
	defer wsHub.Close()

	var publisher services.EventPublisher = wsHub
	if redisClients != nil {
		publisher = services.NewRedisPublisher(redisClients.Store)
	}
	log.Info().Msg("✓ WebSocket hub started")

	// ──── Step 6: Session Manager ────
	sessions := services.NewSessionManager(services.SessionOptions{
		Provider:  provider,
		Publisher: publisher,
		Timeout:   cfg.AdvisorTimeout,
	}, cfg.SessionTTL)
	wsHub.UseSessions(sessions)
	sessions.Start()
	defer sessions.Stop()
	log.Info().Msg("✓ Session manager started")

	messageLimiter := middleware.NewRateLimiter(cfg.MessageRateLimit, time.Minute, middleware.BySession)
	defer messageLimiter.Stop()

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(sessions, sessionAuth, submitWaitTimeout)
	credentialHandler := handlers.NewCredentialHandler(credentials, sessions)
	advisorHandler := handlers.NewAdvisorHandler(services.DefaultProfile())

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		messageLimiter,
		sessionHandler,
		credentialHandler,
		advisorHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: submitWaitTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msgf("✓ Fi Advisor Backend ready on http://localhost:%s", cfg.Port)
		log.Info().Msgf("  API: http://localhost:%s/api/v1", cfg.Port)
		log.Info().Msgf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}

func newCredentialStore(cfg *config.Config, redisClients *database.RedisClients) services.CredentialStore {
	switch {
	case redisClients != nil:
		return repository.NewRedisCredentialRepo(redisClients.Store, cfg.CredentialKey)
	case cfg.CredentialsFile != "":
		return repository.NewFileCredentialRepo(cfg.CredentialsFile, cfg.CredentialKey)
	default:
		return repository.NewMemoryCredentialRepo("")
	}
}

// seedCredential stores the environment key only when nothing is saved yet,
// so a key set through the API survives restarts.
func seedCredential(ctx context.Context, store services.CredentialStore, envKey string) error {
	if strings.TrimSpace(envKey) == "" {
		return nil
	}
	current, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(current) != "" {
		return nil
	}
	return store.Save(ctx, envKey)
}
