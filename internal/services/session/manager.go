package session

import (
	"context"
	"fmt"
	"strings"

	"quotewatch/internal/domain/session"
	"quotewatch/internal/domain/watchlist"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// DefaultSymbols seed the first watchlist of a user with nothing stored
var DefaultSymbols = []string{"AAPL", "GOOG", "MSFT"}

// Manager drives the login/logout lifecycle: load or seed on login, flush
// and clear on logout
type Manager struct {
	session *session.Session
	repo    watchlist.Repository
	tracker errors.Tracker
	log     *logger.Logger
}

// NewManager creates a session manager
func NewManager(sess *session.Session, repo watchlist.Repository, tracker errors.Tracker, log *logger.Logger) *Manager {
	return &Manager{
		session: sess,
		repo:    repo,
		tracker: tracker,
		log:     log.With("component", "session_manager"),
	}
}

// SeedName returns the name of the watchlist created for a new user
func SeedName(displayName string) string {
	return fmt.Sprintf("%s's first list", displayName)
}

// Login signs userID in and loads their watchlists. A load failure degrades
// to an empty collection, which is then seeded. Logging in while another user
// is signed in flushes that session first.
func (m *Manager) Login(ctx context.Context, userID, displayName string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.NewValidationError("user_id", "user id is required", userID)
	}

	if m.session.LoggedIn() {
		if err := m.Logout(ctx); err != nil {
			m.log.Warnw("Failed to flush previous session", "error", err)
		}
	}

	m.session.Begin(userID, displayName)
	m.tracker.SetUser(ctx, userID)
	log := m.log.With("user_id", userID)

	data, err := m.repo.LoadAll(ctx, userID)
	if err != nil {
		log.Errorw("Failed to load watchlists, starting empty", "error", err)
		data = nil
	}

	store := m.session.Store()
	if renamed := store.LoadFrom(data); len(renamed) > 0 {
		log.Warnw("Stored watchlists shared a name, kept under their keys", "renamed", renamed)
	}

	if store.Len() == 0 {
		seed := watchlist.New(SeedName(displayName), nil, 0)
		for _, symbol := range DefaultSymbols {
			seed.Add(symbol)
		}
		store.Reset([]watchlist.Watchlist{seed}, seed.Name)
		log.Infow("Seeded first watchlist", "watchlist", seed.Name, "symbols", seed.Symbols())
	}

	log.Infow("Logged in", "watchlists", store.Len(), "current", store.Current())
	return nil
}

// Save flushes the current collection without ending the session
func (m *Manager) Save(ctx context.Context) error {
	userID, ok := m.session.UserID()
	if !ok {
		return errors.ErrNotLoggedIn
	}
	if err := m.repo.SaveAll(ctx, userID, m.session.Store().SerializeAll()); err != nil {
		return errors.Wrapf(err, "failed to save watchlists: user_id=%s", userID)
	}
	return nil
}

// Logout flushes every watchlist and clears the session. The session is
// cleared even when the flush fails; the flush error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	userID, ok := m.session.UserID()
	if !ok {
		return errors.ErrNotLoggedIn
	}

	err := m.Save(ctx)
	m.session.End()
	m.tracker.SetUser(ctx, "")

	if err != nil {
		m.log.Errorw("Failed to flush watchlists on logout", "user_id", userID, "error", err)
		return err
	}

	m.log.Infow("Logged out", "user_id", userID)
	return nil
}

// Session returns the managed session
func (m *Manager) Session() *session.Session {
	return m.session
}
