package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"scholarship-tracker/internal/models"
)

type MemoryStore struct {
	mu    sync.Mutex
	files map[string]models.FileRef
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]models.FileRef), now: time.Now}
}

func (m *MemoryStore) InsertPending(ctx context.Context, f models.FileRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.State = models.FileStatePending
	if f.UploadedAt.IsZero() {
		f.UploadedAt = m.now()
	}
	f.UpdatedAt = m.now()
	m.files[f.ID] = f
	return nil
}

func (m *MemoryStore) SetState(ctx context.Context, userID, id, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.UserID != userID {
		return ErrFileNotFound
	}
	f.State = state
	f.UpdatedAt = m.now()
	m.files[id] = f
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, id)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, userID, id string) (*models.FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.UserID != userID {
		return nil, ErrFileNotFound
	}
	return &f, nil
}

func (m *MemoryStore) ListConfirmed(ctx context.Context, userID string) ([]models.FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FileRef
	for _, f := range m.files {
		if f.UserID == userID && f.State == models.FileStateConfirmed {
			out = append(out, f)
		}
	}
	sortFiles(out)
	return out, nil
}

func (m *MemoryStore) ListStale(ctx context.Context, states []string, cutoff time.Time) ([]models.FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FileRef
	for _, f := range m.files {
		for _, s := range states {
			if f.State == s && f.UpdatedAt.Before(cutoff) {
				out = append(out, f)
			}
		}
	}
	sortFiles(out)
	return out, nil
}

// Seed inserts a row as-is. Tests use it to plant stale rows.
func (m *MemoryStore) Seed(f models.FileRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.ID] = f
}

// Len counts rows in any state.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func sortFiles(files []models.FileRef) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].Name < files[j].Name
		}
		return files[i].UploadedAt.Before(files[j].UploadedAt)
	})
}
