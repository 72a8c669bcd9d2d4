package session

import (
	"sync"
	"time"

	"quotewatch/internal/domain/watchlist"
)

// Session is the signed-in user context. At most one user is active at a
// time; the watchlist store is owned by the session and emptied on End.
type Session struct {
	mu        sync.RWMutex
	userID    string
	userName  string
	startedAt time.Time
	store     *watchlist.Store
}

// New returns a logged out session with an empty store
func New() *Session {
	return &Session{store: watchlist.NewStore()}
}

// Begin marks userID as signed in
func (s *Session) Begin(userID, userName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.userName = userName
	s.startedAt = time.Now()
}

// End signs the user out and clears the store
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.userName = ""
	s.startedAt = time.Time{}
	s.store.Clear()
}

// UserID returns the signed-in user, false when logged out
func (s *Session) UserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}

// UserName returns the display name given at login
func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// LoggedIn reports whether a user is signed in
func (s *Session) LoggedIn() bool {
	_, ok := s.UserID()
	return ok
}

// StartedAt returns the login time, zero when logged out
func (s *Session) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// Store returns the session's watchlists
func (s *Session) Store() *watchlist.Store {
	return s.store
}
