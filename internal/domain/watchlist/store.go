package watchlist

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"quotewatch/pkg/errors"
)

// Store holds one user's watchlists keyed by name plus the current selection.
// All methods are safe for concurrent use; returned watchlists are copies.
type Store struct {
	mu      sync.RWMutex
	lists   map[string]Watchlist
	current string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{lists: make(map[string]Watchlist)}
}

// OrderedView returns every watchlist sorted by display order ascending (ties by name)
func (s *Store) OrderedView() []Watchlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderedLocked()
}

func (s *Store) orderedLocked() []Watchlist {
	lists := make([]Watchlist, 0, len(s.lists))
	for _, w := range s.lists {
		lists = append(lists, w.Clone())
	}
	return Ordered(lists)
}

// Len returns the number of watchlists
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lists)
}

// Get returns the watchlist called name
func (s *Store) Get(name string) (Watchlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.lists[name]
	if !ok {
		return Watchlist{}, false
	}
	return w.Clone(), true
}

// Upsert inserts w or replaces the watchlist with the same name
func (s *Store) Upsert(w Watchlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[w.Name] = w.Clone()
}

// Create adds an empty watchlist placed after the existing ones
func (s *Store) Create(name string) (Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Watchlist{}, errors.NewValidationError("name", "watchlist name is required", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lists[name]; exists {
		return Watchlist{}, errors.Wrapf(errors.ErrDuplicateName, "watchlist %q", name)
	}

	w := New(name, nil, len(s.lists))
	s.lists[name] = w
	if s.current == "" {
		s.current = name
	}
	return w.Clone(), nil
}

// Remove deletes the watchlist called name. When it was selected the
// selection moves to the first remaining watchlist in display order.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[name]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "watchlist %q", name)
	}
	delete(s.lists, name)

	if s.current == name {
		s.current = s.firstLocked()
	}
	return nil
}

// Rename moves the watchlist oldName to newName keeping its quotes and
// display order. Renaming onto another existing name fails with ErrDuplicateName.
func (s *Store) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.NewValidationError("name", "watchlist name is required", newName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.lists[oldName]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "watchlist %q", oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.lists[newName]; exists {
		return errors.Wrapf(errors.ErrDuplicateName, "watchlist %q", newName)
	}

	delete(s.lists, oldName)
	w.Name = newName
	s.lists[newName] = w

	if s.current == oldName {
		s.current = newName
	}
	return nil
}

// Update applies fn to the stored watchlist called name under the store lock.
// The name cannot be changed through fn.
func (s *Store) Update(name string, fn func(w *Watchlist)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.lists[name]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "watchlist %q", name)
	}
	w = w.Clone()
	fn(&w)
	w.Name = name
	w.SetQuotes(w.Quotes)
	s.lists[name] = w
	return nil
}

// Select makes name the current watchlist
func (s *Store) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[name]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "watchlist %q", name)
	}
	s.current = name
	return nil
}

// Current returns the selected watchlist name, "" when nothing is selected
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LoadFrom replaces the content of the store with the decoded entries of
// serialized and selects the first watchlist in display order.
// An entry whose encoded name is empty is stored under its map key. When two
// entries decode to the same name, the one stored under that name as its key
// keeps it and the other is renamed to its own map key (or the key with a
// numeric suffix), so no entry is lost on the next save. The renamed entries
// are returned as their new names.
func (s *Store) LoadFrom(serialized map[string]string) (renamed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(serialized))
	decoded := make(map[string]Watchlist, len(serialized))
	for key, data := range serialized {
		w := Decode(data)
		if w.Name == "" {
			w.Name = key
		}
		keys = append(keys, key)
		decoded[key] = w
	}
	sort.Strings(keys)

	s.lists = make(map[string]Watchlist, len(serialized))
	var pending []string
	for _, key := range keys {
		if w := decoded[key]; w.Name == key {
			s.lists[key] = w
		} else {
			pending = append(pending, key)
		}
	}
	for _, key := range pending {
		w := decoded[key]
		if _, taken := s.lists[w.Name]; !taken {
			s.lists[w.Name] = w
			continue
		}
		w.Name = s.freeNameLocked(key)
		s.lists[w.Name] = w
		renamed = append(renamed, w.Name)
	}

	s.current = s.firstLocked()
	return renamed
}

func (s *Store) freeNameLocked(base string) string {
	if _, taken := s.lists[base]; !taken {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s (%d)", base, i)
		if _, taken := s.lists[name]; !taken {
			return name
		}
	}
}

// SerializeAll encodes every watchlist keyed by name
func (s *Store) SerializeAll() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.lists))
	for name, w := range s.lists {
		out[name] = Encode(w)
	}
	return out
}

// Reset replaces the content with lists and selects current
func (s *Store) Reset(lists []Watchlist, current string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = make(map[string]Watchlist, len(lists))
	for _, w := range lists {
		s.lists[w.Name] = w.Clone()
	}
	if _, ok := s.lists[current]; !ok {
		current = s.firstLocked()
	}
	s.current = current
}

// Clear drops every watchlist and the selection
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = make(map[string]Watchlist)
	s.current = ""
}

func (s *Store) firstLocked() string {
	ordered := s.orderedLocked()
	if len(ordered) == 0 {
		return ""
	}
	return ordered[0].Name
}
