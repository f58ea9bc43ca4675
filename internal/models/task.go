// internal/models/task.go
package models

import "time"

// Task is the checklist projection of a scholarship the user is applying to.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	ScholarshipID string     `json:"scholarship_id"`
	Title         string     `json:"title,omitempty"`
	Deadline      *time.Time `json:"deadline"`
	Subtasks      []Subtask  `json:"subtasks"`
	Completed     bool       `json:"completed"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Subtask is one checklist item of a Task.
type Subtask struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Position    int    `json:"position"`
}

// IsComplete is true iff the task has at least one subtask and every subtask is done.
func IsComplete(subtasks []Subtask) bool {
	if len(subtasks) == 0 {
		return false
	}
	for _, st := range subtasks {
		if !st.Completed {
			return false
		}
	}
	return true
}

// Recompute refreshes the derived Completed flag.
func (t *Task) Recompute() {
	t.Completed = IsComplete(t.Subtasks)
}
