package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCollector(t *testing.T) {
	c := NewSessionCollector(func() SessionStats {
		return SessionStats{LoggedIn: true, Watchlists: 2, Symbols: 5}
	})

	expected := `
# HELP quotewatch_session_watchlists Number of watchlists in the session
# TYPE quotewatch_session_watchlists gauge
quotewatch_session_watchlists 2
# HELP quotewatch_session_symbols Number of tracked symbols across all watchlists
# TYPE quotewatch_session_symbols gauge
quotewatch_session_symbols 5
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"quotewatch_session_watchlists", "quotewatch_session_symbols"))
	assert.Equal(t, 4, testutil.CollectAndCount(c))
}

func TestRecordRefreshPass(t *testing.T) {
	before := testutil.ToFloat64(RefreshPasses.WithLabelValues("in_progress"))
	RecordRefreshPass("in_progress", 0)
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshPasses.WithLabelValues("in_progress")))
}
