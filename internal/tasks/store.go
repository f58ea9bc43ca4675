// Package tasks tracks application checklists: one task per scholarship with
// ordered subtasks and a deadline.
package tasks

import (
	"context"
	"errors"

	"scholarship-tracker/internal/models"
)

var (
	ErrTaskNotFound    = errors.New("TASK_NOT_FOUND")
	ErrSubtaskNotFound = errors.New("SUBTASK_NOT_FOUND")
)

type Store interface {
	// Create stores the task together with its subtasks.
	Create(ctx context.Context, task models.Task) error
	Get(ctx context.Context, userID, taskID string) (*models.Task, error)
	List(ctx context.Context, userID string) ([]models.Task, error)
	// ToggleSubtask flips the flag atomically and returns the new value.
	ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (bool, error)
	// Delete removes the task and its subtasks together.
	Delete(ctx context.Context, userID, taskID string) error
}
