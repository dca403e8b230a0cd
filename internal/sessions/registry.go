// Package sessions tracks live quiz WebSocket connections.
package sessions

import (
	"sync"
	"time"
)

// Session is one connected learner
type Session struct {
	ID          string
	UserID      int
	QuizID      int
	ConnectedAt time.Time
}

// Registry is safe for concurrent use by connection goroutines
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Session),
	}
}

// Add registers a session, replacing any session with the same ID
func (r *Registry) Add(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// SetQuiz records the quiz a session is playing. It reports false for unknown sessions.
func (r *Registry) SetQuiz(id string, quizID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.QuizID = quizID
	r.sessions[id] = s
	return true
}

// Remove drops a session. Removing an unknown ID is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CountByUser returns the number of live sessions of one user
func (r *Registry) CountByUser(userID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}
