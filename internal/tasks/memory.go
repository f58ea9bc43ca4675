package tasks

import (
	"context"
	"sort"
	"sync"

	"scholarship-tracker/internal/models"
)

type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]models.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]models.Task)}
}

func (m *MemoryStore) Create(ctx context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.Subtasks = append([]models.Subtask(nil), task.Subtasks...)
	m.tasks[task.ID] = task
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, ErrTaskNotFound
	}
	t.Subtasks = append([]models.Subtask(nil), t.Subtasks...)
	return &t, nil
}

func (m *MemoryStore) List(ctx context.Context, userID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Task{}
	for _, t := range m.tasks {
		if t.UserID == userID {
			t.Subtasks = append([]models.Subtask(nil), t.Subtasks...)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return false, ErrTaskNotFound
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			m.tasks[taskID] = t
			return t.Subtasks[i].Completed, nil
		}
	}
	return false, ErrSubtaskNotFound
}

func (m *MemoryStore) Delete(ctx context.Context, userID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	return nil
}
