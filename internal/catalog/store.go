package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Store owns the Catalog: the ordered, append-only list of menu items for
// the life of the process. Projections are computed on demand and never
// written back.
type Store struct {
	mu     sync.RWMutex
	Source Source
	items  []MenuItem
}

// NewStore returns an empty Store that loads from src.
func NewStore(src Source) *Store {
	return &Store{Source: src}
}

// Load fetches the remote item set once and appends every record.
// It does not dedupe, so a second call doubles the Catalog.
// On failure the Catalog is left untouched.
func (s *Store) Load(ctx context.Context) error {
	if s.Source == nil {
		return errors.New("catalog source not configured")
	}
	fetched, err := s.Source.Fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, fetched...)
	return nil
}

// Items returns a copy of the full Catalog in insertion order.
func (s *Store) Items() []MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MenuItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len is the current Catalog length.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) FilterByCategory(category string) []MenuItem {
	return FilterByCategory(s.Items(), category)
}

func (s *Store) Search(query string) []MenuItem {
	return Search(s.Items(), query)
}

// Add validates candidate and appends it with id = len(Catalog)+1.
// The id may collide with server-assigned ids.
func (s *Store) Add(candidate MenuItem) ([]MenuItem, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	item := MenuItem{
		Name: strings.TrimSpace(candidate.Name),
		Desc: strings.TrimSpace(candidate.Desc),
		Type: strings.TrimSpace(candidate.Type),
		URL:  strings.TrimSpace(candidate.URL),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = len(s.items) + 1
	s.items = append(s.items, item)
	out := make([]MenuItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Categories returns DefaultCategories followed by every other distinct
// type in the Catalog, in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(DefaultCategories))
	out := make([]string, 0, len(DefaultCategories))
	for _, c := range DefaultCategories {
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, it := range s.items {
		if it.Type == "" {
			continue
		}
		if _, ok := seen[it.Type]; ok {
			continue
		}
		seen[it.Type] = struct{}{}
		out = append(out, it.Type)
	}
	return out
}

// FilterByCategory returns items unchanged for CategoryAll, otherwise the
// subsequence whose type equals category exactly.
func FilterByCategory(items []MenuItem, category string) []MenuItem {
	if category == CategoryAll {
		return items
	}
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		if it.Type == category {
			out = append(out, it)
		}
	}
	return out
}

// Search returns the subsequence whose lower-cased name contains the
// lower-cased query. An empty query matches everything.
func Search(items []MenuItem, query string) []MenuItem {
	q := strings.ToLower(query)
	if q == "" {
		return items
	}
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}
