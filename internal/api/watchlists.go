package api

import (
	"context"
	"encoding/json"
	"net/http"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/domain/session"
	"quotewatch/internal/domain/watchlist"
	"quotewatch/internal/events"
	"quotewatch/internal/services/quotesync"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// Refresher runs an on-demand refresh pass
type Refresher interface {
	RefreshAll(ctx context.Context) (quotesync.Pass, error)
}

// WatchlistsHandler exposes the session's watchlists and the active-view flag
type WatchlistsHandler struct {
	session   *session.Session
	refresher Refresher
	notifier  events.Notifier
	view      *ActiveView
	log       *logger.Logger
}

// NewWatchlistsHandler creates the handler. notifier receives a data changed
// event after every successful on-demand refresh.
func NewWatchlistsHandler(sess *session.Session, refresher Refresher, notifier events.Notifier, view *ActiveView, log *logger.Logger) *WatchlistsHandler {
	if notifier == nil {
		notifier = events.Fanout{}
	}
	return &WatchlistsHandler{
		session:   sess,
		refresher: refresher,
		notifier:  notifier,
		view:      view,
		log:       log.With("component", "watchlists_api"),
	}
}

// QuoteView is one quote as rendered for clients
type QuoteView struct {
	Symbol      string `json:"symbol"`
	Bid         string `json:"bid"`
	Ask         string `json:"ask"`
	Last        string `json:"last"`
	LastDisplay string `json:"last_display,omitempty"`
}

// WatchlistView is one watchlist as rendered for clients
type WatchlistView struct {
	Name         string      `json:"name"`
	DisplayOrder int         `json:"display_order"`
	Quotes       []QuoteView `json:"quotes"`
}

// WatchlistsResponse is the body of GET /watchlists
type WatchlistsResponse struct {
	UserID     string          `json:"user_id"`
	Current    string          `json:"current"`
	Watchlists []WatchlistView `json:"watchlists"`
}

// NewWatchlistView renders w
func NewWatchlistView(w watchlist.Watchlist) WatchlistView {
	quotes := make([]QuoteView, 0, len(w.Quotes))
	for _, q := range w.Quotes {
		quotes = append(quotes, QuoteView{
			Symbol:      q.Symbol,
			Bid:         q.BidPrice,
			Ask:         q.AskPrice,
			Last:        q.LastPrice,
			LastDisplay: quote.FormatPrice(q.LastPrice),
		})
	}
	return WatchlistView{Name: w.Name, DisplayOrder: w.DisplayOrder, Quotes: quotes}
}

// HandleList returns every watchlist in display order
func (h *WatchlistsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := h.session.UserID()
	if !ok {
		writeError(w, http.StatusUnauthorized, errors.ErrNotLoggedIn.Error())
		return
	}

	store := h.session.Store()
	lists := store.OrderedView()
	resp := WatchlistsResponse{
		UserID:     userID,
		Current:    store.Current(),
		Watchlists: make([]WatchlistView, 0, len(lists)),
	}
	for _, wl := range lists {
		resp.Watchlists = append(resp.Watchlists, NewWatchlistView(wl))
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRefresh runs one refresh pass synchronously
func (h *WatchlistsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	pass, err := h.refresher.RefreshAll(r.Context())
	switch {
	case errors.Is(err, errors.ErrNotLoggedIn):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errors.ErrAlreadyInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errors.ErrNoWatchlists):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		h.log.Errorw("On-demand refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
	default:
		h.notifier.Notify(r.Context(), events.NewWatchlistsRefreshed(pass))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"pass_id":    pass.ID,
			"watchlists": pass.Watchlists,
			"updated":    pass.Updated,
			"failed":     pass.Failed,
		})
	}
}

// HandleView reads or sets the active-view flag
func (h *WatchlistsHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var body struct {
			Active *bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
			writeError(w, http.StatusBadRequest, `body must be {"active": true|false}`)
			return
		}
		h.view.Set(*body.Active)
		h.log.Debugw("Active view changed", "active", *body.Active)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"active": h.view.Active()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
