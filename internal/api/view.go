package api

import "sync/atomic"

// ActiveView tracks whether a client is currently showing the watchlists.
// Periodic refresh only acts while it is set.
type ActiveView struct {
	active atomic.Bool
}

// NewActiveView creates the flag in the given state
func NewActiveView(active bool) *ActiveView {
	v := &ActiveView{}
	v.active.Store(active)
	return v
}

// Active reports the current state
func (v *ActiveView) Active() bool {
	return v.active.Load()
}

// Set updates the state
func (v *ActiveView) Set(active bool) {
	v.active.Store(active)
}
