package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"scholarship-tracker/internal/models"
)

type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]models.UserProfile
	reads    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]models.UserProfile)}
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, p models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.profiles[p.UserID]; ok {
		if p.Email == "" {
			p.Email = old.Email
		}
		if p.Phone == "" {
			p.Phone = old.Phone
		}
	}
	p.UpdatedAt = time.Now().UTC()
	m.profiles[p.UserID] = p
	return nil
}

func (m *MemoryStore) Ensure(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[userID]; !ok {
		m.profiles[userID] = models.UserProfile{UserID: userID, UpdatedAt: time.Now().UTC()}
	}
	return nil
}

func (m *MemoryStore) Contacts(ctx context.Context) ([]Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Contact
	for _, p := range m.profiles {
		if p.Email != "" || p.Phone != "" {
			out = append(out, Contact{UserID: p.UserID, Email: p.Email, Phone: p.Phone})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Reads counts store lookups, letting tests observe cache hits.
func (m *MemoryStore) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
