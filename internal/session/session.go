// Package session keeps per-visitor page state in memory.
package session

import (
	"sync"
	"time"

	"github.com/BerylCAtieno/rfm-workbench/internal/dataset"
	"github.com/BerylCAtieno/rfm-workbench/internal/models"
	"github.com/google/uuid"
)

// Session is the state one visitor's handlers read and replace.
// Callers hold Lock for the duration of an action.
type Session struct {
	sync.Mutex

	ID           string
	Dataset      *dataset.Table
	Report       []models.CustomerRFM
	LastExchange *models.Exchange

	lastSeen time.Time
}

// SetDataset replaces the held dataset and drops the report derived from the old one.
func (s *Session) SetDataset(t *dataset.Table) {
	s.Dataset = t
	s.Report = nil
}

// Store holds sessions keyed by id. Idle sessions are evicted when the store is next touched.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the live session for id, or a fresh one when id is unknown or expired.
// The second result reports whether a new session was created.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.evict(now)

	if s, ok := st.sessions[id]; ok {
		s.lastSeen = now
		return s, false
	}
	s := &Session{ID: uuid.New().String(), lastSeen: now}
	st.sessions[s.ID] = s
	return s, true
}

// Delete drops a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) evict(now time.Time) {
	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
}
