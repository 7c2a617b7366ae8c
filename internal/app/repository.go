package app

import "sync"

// maxClosedSessions bounds how many completed sessions are remembered for late commands.
const maxClosedSessions = 1024

// InMemoryRepository keeps live sessions indexed by id and by participant. Completed
// sessions removed from it stay reachable by their former participants until those users
// are saved into a new session or the closed list overflows.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[string]string

	closed      map[string]*Session
	closedOrder []string
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
		closed:   make(map[string]*Session),
	}
}

// FindByUserID returns the session the user was last saved into.
func (r *InMemoryRepository) FindByUserID(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// FindByID returns the session with the given id.
func (r *InMemoryRepository) FindByID(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Save stores the session and points each participant at it.
func (r *InMemoryRepository) Save(session *Session) {
	users := session.Participants()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
	for _, id := range users {
		r.byUser[id] = session.ID()
		delete(r.closed, id)
	}
}

// FindClosedByUserID returns the completed session userID last played in, if it was
// removed and the user has not joined another session since.
func (r *InMemoryRepository) FindClosedByUserID(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.closed[userID]
	return s, ok
}

// RemoveByID drops the session. Participants already moved to another session keep
// their newer index entry; the rest keep a closed entry if the session completed.
func (r *InMemoryRepository) RemoveByID(sessionID string) {
	r.mu.RLock()
	session := r.sessions[sessionID]
	r.mu.RUnlock()
	completed := session != nil && session.State() == StateCompleted

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	remembered := false
	for user, id := range r.byUser {
		if id != sessionID {
			continue
		}
		delete(r.byUser, user)
		if completed {
			r.closed[user] = session
			remembered = true
		}
	}
	if remembered {
		r.closedOrder = append(r.closedOrder, sessionID)
		r.evictClosed()
	}
}

func (r *InMemoryRepository) evictClosed() {
	for len(r.closedOrder) > maxClosedSessions {
		oldest := r.closedOrder[0]
		r.closedOrder = r.closedOrder[1:]
		for user, s := range r.closed {
			if s.ID() == oldest {
				delete(r.closed, user)
			}
		}
	}
}

// Len returns the number of stored sessions.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
