package game

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

// LobbySessionName is the reserved name of the well-known lobby endpoint. It
// is never handed out as a playable session.
const LobbySessionName = "session-1"

// Registry owns the pool of game sessions under a capacity bound. Its own
// mutex serializes acquisition, creation and removal, so two racing callers
// never both create a session for the last free slot and never double-seat
// the same half-filled session.
type Registry struct {
	logger *slog.Logger

	capacity    int
	rematchWait time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	counter  int
}

func NewRegistry(logger *slog.Logger, capacity int, rematchWait time.Duration) *Registry {
	return &Registry{
		logger:      logger,
		capacity:    capacity,
		rematchWait: rematchWait,
		sessions:    make(map[string]*Session),
		counter:     1, // session-1 is the reserved lobby slot
	}
}

// AcquireSession - returns the name of a session waiting for an opponent if
// one exists, otherwise creates a fresh session while the pool has capacity.
func (that *Registry) AcquireSession() (string, error) {
	log := that.logger.With("method", "AcquireSession")

	that.mu.Lock()
	defer that.mu.Unlock()

	for name, session := range that.sessions {
		if name == LobbySessionName {
			continue
		}

		if session.Joinable() {
			log.Info("reusing waiting session", "name", name)
			return name, nil
		}
	}

	if len(that.sessions) >= that.capacity {
		return "", apperror.ErrSessionsFull
	}

	that.counter++
	name := fmt.Sprintf("session-%d", that.counter)
	that.sessions[name] = NewSession(that.logger, name, that.rematchWait, func() {
		that.Release(name)
	})

	log.Info("created new session", "name", name)

	return name, nil
}

// Lookup - resolves a session name to its instance.
func (that *Registry) Lookup(name string) (*Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, name)
	}

	return session, nil
}

// Release - removes a session and frees its capacity slot. Invoked by a
// session's own cleanup hook once it becomes empty. Idempotent.
func (that *Registry) Release(name string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[name]; !ok {
		return
	}

	delete(that.sessions, name)

	that.logger.Info("session released", "name", name)
}

// Count - number of sessions currently in the pool.
func (that *Registry) Count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.sessions)
}
