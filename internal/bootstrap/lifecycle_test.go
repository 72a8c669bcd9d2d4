package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/adapters/errors/noop"
	"quotewatch/internal/domain/session"
	sessionsvc "quotewatch/internal/services/session"
	"quotewatch/pkg/logger"
)

type memoryRepo struct {
	saved   map[string]string
	saveErr error
}

func (m *memoryRepo) LoadAll(context.Context, string) (map[string]string, error) {
	return nil, nil
}

func (m *memoryRepo) SaveAll(_ context.Context, _ string, data map[string]string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = data
	return nil
}

func (m *memoryRepo) Clear(context.Context, string) error { return nil }
func (m *memoryRepo) Health(context.Context) error { return nil }

func loggedIn(t *testing.T, repo *memoryRepo) *sessionsvc.Manager {
	t.Helper()
	m := sessionsvc.NewManager(session.New(), repo, noop.New(), logger.NewNop())
	require.NoError(t, m.Login(context.Background(), "u-1", "Ann"))
	return m
}

func TestShutdown_Empty(t *testing.T) {
	assert.NoError(t, NewLifecycle().Shutdown(Components{}, logger.NewNop()))
}

func TestShutdown_SavesSession(t *testing.T) {
	repo := &memoryRepo{}
	manager := loggedIn(t, repo)

	err := NewLifecycle().Shutdown(Components{Session: manager, ErrorTracker: noop.New()}, logger.NewNop())
	require.NoError(t, err)

	assert.Contains(t, repo.saved, "Ann's first list")
	assert.False(t, manager.Session().LoggedIn())
}

func TestShutdown_ReportsLostWatchlists(t *testing.T) {
	repo := &memoryRepo{saveErr: assert.AnError}
	manager := loggedIn(t, repo)

	err := NewLifecycle().Shutdown(Components{Session: manager}, logger.NewNop())
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, manager.Session().LoggedIn())
}
