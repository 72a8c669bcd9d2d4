package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/domain/session"
	"quotewatch/internal/domain/watchlist"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

type mockRepo struct {
	data    map[string]map[string]string
	loadErr error
	saveErr error
	saves   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[string]map[string]string)}
}

func (m *mockRepo) LoadAll(_ context.Context, userID string) (map[string]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[string]string)
	for k, v := range m.data[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *mockRepo) SaveAll(_ context.Context, userID string, data map[string]string) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[userID] = data
	return nil
}

func (m *mockRepo) Clear(_ context.Context, userID string) error {
	delete(m.data, userID)
	return nil
}

func (m *mockRepo) Health(context.Context) error { return nil }

type mockTracker struct {
	users []string
}

func (m *mockTracker) CaptureError(context.Context, error, map[string]string) error { return nil }
func (m *mockTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}
func (m *mockTracker) SetUser(_ context.Context, userID string) { m.users = append(m.users, userID) }
func (m *mockTracker) Flush(context.Context) error               { return nil }

func newManager(repo *mockRepo) (*Manager, *mockTracker) {
	tracker := &mockTracker{}
	return NewManager(session.New(), repo, tracker, logger.NewNop()), tracker
}

func TestManager_LoginSeedsNewUser(t *testing.T) {
	m, tracker := newManager(newMockRepo())

	require.NoError(t, m.Login(context.Background(), "u-1", "Ann"))

	store := m.Session().Store()
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "Ann's first list", store.Current())

	w, ok := store.Get("Ann's first list")
	require.True(t, ok)
	assert.Equal(t, 0, w.DisplayOrder)
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, w.Symbols())
	assert.Equal(t, quote.Unknown, w.Quotes[0].LastPrice)
	assert.Equal(t, []string{"u-1"}, tracker.users)
}

func TestManager_LoginLoadsStored(t *testing.T) {
	repo := newMockRepo()
	repo.data["u-1"] = map[string]string{
		"A": watchlist.Encode(watchlist.New("A", []quote.Quote{quote.New("TSLA")}, 1)),
		"B": watchlist.Encode(watchlist.New("B", nil, 0)),
	}
	m, _ := newManager(repo)

	require.NoError(t, m.Login(context.Background(), "u-1", "Ann"))

	store := m.Session().Store()
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, "B", store.Current())
}

func TestManager_LoginLoadFailureFallsBackToSeed(t *testing.T) {
	repo := newMockRepo()
	repo.loadErr = errors.Join(errors.ErrPersistence, assert.AnError)
	m, _ := newManager(repo)

	require.NoError(t, m.Login(context.Background(), "u-1", "Bob"))
	assert.True(t, m.Session().LoggedIn())
	assert.Equal(t, "Bob's first list", m.Session().Store().Current())
}

func TestManager_LoginRequiresUser(t *testing.T) {
	m, _ := newManager(newMockRepo())
	assert.ErrorIs(t, m.Login(context.Background(), " ", "x"), errors.ErrInvalidInput)
}

func TestManager_LogoutFlushesAndClears(t *testing.T) {
	repo := newMockRepo()
	m, tracker := newManager(repo)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "u-1", "Ann"))
	_, err := m.Session().Store().Create("Second")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))

	assert.False(t, m.Session().LoggedIn())
	assert.Equal(t, 0, m.Session().Store().Len())
	assert.Len(t, repo.data["u-1"], 2)
	assert.Equal(t, []string{"u-1", ""}, tracker.users)

	assert.ErrorIs(t, m.Logout(ctx), errors.ErrNotLoggedIn)
}

func TestManager_LogoutSaveFailureStillClears(t *testing.T) {
	repo := newMockRepo()
	m, _ := newManager(repo)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "u-1", "Ann"))
	repo.saveErr = errors.Join(errors.ErrPersistence, assert.AnError)

	err := m.Logout(ctx)
	assert.ErrorIs(t, err, errors.ErrPersistence)
	assert.False(t, m.Session().LoggedIn())
	assert.Equal(t, 0, m.Session().Store().Len())
}

func TestManager_LoginWhileLoggedInFlushesFirst(t *testing.T) {
	repo := newMockRepo()
	m, _ := newManager(repo)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "u-1", "Ann"))
	require.NoError(t, m.Login(ctx, "u-2", "Bob"))

	assert.Equal(t, 1, repo.saves)
	assert.Contains(t, repo.data["u-1"], "Ann's first list")

	id, _ := m.Session().UserID()
	assert.Equal(t, "u-2", id)
	assert.Equal(t, "Bob's first list", m.Session().Store().Current())
}

func TestManager_LoginLogoutRoundTrip(t *testing.T) {
	repo := newMockRepo()
	m, _ := newManager(repo)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "u-1", "Ann"))
	before := m.Session().Store().OrderedView()
	require.NoError(t, m.Logout(ctx))

	require.NoError(t, m.Login(ctx, "u-1", "Ann"))
	assert.Equal(t, before, m.Session().Store().OrderedView())
}
