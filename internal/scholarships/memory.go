package scholarships

import (
	"context"
	"sync"

	"scholarship-tracker/internal/models"
)

type collection struct {
	order []string
	byID  map[string]models.Scholarship
}

// MemoryStore is the in-process Store used by tests and local runs.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]bool
	users    map[string]*collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]bool),
		users:    make(map[string]*collection),
	}
}

// AddProfile registers a profile row for userID.
func (m *MemoryStore) AddProfile(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = true
}

func (m *MemoryStore) ProfileExists(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID], nil
}

func (m *MemoryStore) coll(userID string) *collection {
	c, ok := m.users[userID]
	if !ok {
		c = &collection{byID: make(map[string]models.Scholarship)}
		m.users[userID] = c
	}
	return c
}

func (m *MemoryStore) List(ctx context.Context, userID string) ([]models.Scholarship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(userID)
	out := make([]models.Scholarship, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, userID, id string) (*models.Scholarship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.coll(userID).byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, userID string, s models.Scholarship, expectedVersion int64) (*models.Scholarship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(userID)
	existing, ok := c.byID[s.ID]
	if ok {
		if expectedVersion > 0 && existing.Version != expectedVersion {
			return nil, &ConflictError{ID: s.ID, Expected: expectedVersion, Actual: existing.Version}
		}
		s.Version = existing.Version + 1
	} else {
		s.Version = 1
		c.order = append(c.order, s.ID)
	}
	c.byID[s.ID] = s
	return &s, nil
}

func (m *MemoryStore) ReplaceMatched(ctx context.Context, userID string, matches []models.Scholarship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(userID)
	kept := c.order[:0:0]
	for _, id := range c.order {
		if c.byID[id].Status == models.StatusMatched {
			delete(c.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	for _, s := range matches {
		if _, exists := c.byID[s.ID]; exists {
			continue
		}
		s.Version = 1
		c.byID[s.ID] = s
		c.order = append(c.order, s.ID)
	}
	return nil
}
