package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionSweepInterval = 5 * time.Minute

// SessionManager owns every live Session and evicts idle ones.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	opts     SessionOptions
	ttl      time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates sessions with opts. Sessions idle for longer than
// ttl are dropped by the sweeper; ttl <= 0 keeps them forever.
func NewSessionManager(opts SessionOptions, ttl time.Duration) *SessionManager {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		sessions: make(map[uuid.UUID]*Session),
		opts:     opts,
		ttl:      ttl,
		now:      now,
		stopChan: make(chan struct{}),
	}
}

func (m *SessionManager) Create(_ context.Context) *Session {
	session := NewSession(uuid.New(), m.opts)

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	log.Debug().Str("session_id", session.ID().String()).Msg("session created")
	return session
}

func (m *SessionManager) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many went.
// A session with a pending call is never removed.
func (m *SessionManager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if session.Pending() || !session.IdleSince().Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	return removed
}

// Start runs the sweeper until Stop is called.
func (m *SessionManager) Start() {
	if m.ttl <= 0 {
		return
	}
	go m.loop()
	log.Info().Dur("ttl", m.ttl).Msg("session sweeper started")
}

func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *SessionManager) loop() {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				log.Info().Int("removed", n).Msg("swept idle sessions")
			}
		}
	}
}
