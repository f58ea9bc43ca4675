package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/validation"
	"scholarship-tracker/internal/models"

	"github.com/google/uuid"
)

// Filter selects which tasks ListTasks returns.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterProgress  Filter = "progress"
)

// ParseFilter maps a query value to a Filter. Empty means all.
func ParseFilter(v string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(v))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterProgress:
		return f, nil
	default:
		return "", apperrors.NewFieldValidationError("filter", "filter must be one of all, completed, progress")
	}
}

type SubtaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultChecklist is used when a task is created without subtasks.
var DefaultChecklist = []SubtaskInput{
	{Title: "Upload CV", Description: "Upload your latest CV to the documents section"},
	{Title: "Write statement of purpose", Description: "Draft and polish your SOP"},
	{Title: "Request recommendation letters", Description: "Ask your referees for letters"},
	{Title: "Upload transcripts", Description: "Add official transcripts"},
	{Title: "Submit application", Description: "Submit through the provider's portal"},
}

// NewTask describes a task to create.
type NewTask struct {
	ScholarshipID string         `json:"scholarship_id"`
	Title         string         `json:"title"`
	Deadline      *time.Time     `json:"deadline"`
	Subtasks      []SubtaskInput `json:"subtasks"`
}

type Service struct {
	store Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store: store,
		log:   logger.Component(log, "tasks"),
		now:   time.Now,
	}
}

// AddTask creates a task and returns its id.
func (s *Service) AddTask(ctx context.Context, userID string, in NewTask) (string, error) {
	if err := checkUser(userID); err != nil {
		return "", err
	}
	if err := validateTask(in); err != nil {
		return "", err
	}

	inputs := in.Subtasks
	if len(inputs) == 0 {
		inputs = DefaultChecklist
	}

	task := models.Task{
		ID:            uuid.NewString(),
		UserID:        userID,
		ScholarshipID: strings.TrimSpace(in.ScholarshipID),
		Title:         strings.TrimSpace(in.Title),
		Deadline:      in.Deadline,
		CreatedAt:     s.now().UTC(),
	}
	for i, st := range inputs {
		task.Subtasks = append(task.Subtasks, models.Subtask{
			ID:          uuid.NewString(),
			TaskID:      task.ID,
			Title:       strings.TrimSpace(st.Title),
			Description: strings.TrimSpace(st.Description),
			Position:    i,
		})
	}

	if err := s.store.Create(ctx, task); err != nil {
		return "", apperrors.NewDatabaseError("create task", err)
	}
	s.log.Info("task created", map[string]interface{}{
		"userId":        userID,
		"taskId":        task.ID,
		"scholarshipId": task.ScholarshipID,
		"subtasks":      len(task.Subtasks),
	})
	return task.ID, nil
}

// AddTaskFromScholarship creates the task for an added scholarship. Its
// checklist follows the application procedure, falling back to the default
// one. A scholarship has at most one task: a repeat call returns the
// existing task's id.
func (s *Service) AddTaskFromScholarship(ctx context.Context, userID string, sc models.Scholarship) (string, error) {
	if err := checkUser(userID); err != nil {
		return "", err
	}
	if !sc.IsAdded() {
		return "", apperrors.NewFieldValidationError("status", "add the scholarship to the dashboard before tracking it")
	}

	existing, err := s.store.List(ctx, userID)
	if err != nil {
		return "", apperrors.NewDatabaseError("list tasks", err)
	}
	for _, t := range existing {
		if t.ScholarshipID == sc.ID {
			return t.ID, nil
		}
	}

	in := NewTask{ScholarshipID: sc.ID, Title: sc.Title}
	if sc.Deadline != nil {
		if d, err := ParseDeadline(*sc.Deadline, time.UTC); err == nil {
			in.Deadline = &d
		}
	}
	for _, step := range sc.ApplicationProcedure {
		if step = strings.TrimSpace(step); step != "" {
			in.Subtasks = append(in.Subtasks, SubtaskInput{Title: step})
		}
	}
	return s.AddTask(ctx, userID, in)
}

// GetTask returns one task with its subtasks.
func (s *Service) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	t, err := s.store.Get(ctx, userID, taskID)
	if err != nil {
		return nil, mapStoreError(err, taskID, "")
	}
	t.Recompute()
	return t, nil
}

// ToggleSubtask flips one subtask and returns the task with its completion recomputed.
func (s *Service) ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (*models.Task, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	completed, err := s.store.ToggleSubtask(ctx, userID, taskID, subtaskID)
	if err != nil {
		return nil, mapStoreError(err, taskID, subtaskID)
	}
	s.log.Debug("subtask toggled", map[string]interface{}{
		"taskId":    taskID,
		"subtaskId": subtaskID,
		"completed": completed,
	})
	return s.GetTask(ctx, userID, taskID)
}

// DeleteTask removes the task and all its subtasks.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID, taskID); err != nil {
		return mapStoreError(err, taskID, "")
	}
	s.log.Info("task deleted", map[string]interface{}{"userId": userID, "taskId": taskID})
	return nil
}

// ListTasks returns the user's tasks narrowed by filter.
func (s *Service) ListTasks(ctx context.Context, userID string, filter Filter) ([]models.Task, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tasks", err)
	}
	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		t.Recompute()
		switch filter {
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		case FilterProgress:
			if t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// UpcomingDeadlines lists open tasks due within windowDays of now, overdue included.
func (s *Service) UpcomingDeadlines(ctx context.Context, userID string, now time.Time, windowDays int) ([]UpcomingEntry, error) {
	list, err := s.ListTasks(ctx, userID, FilterProgress)
	if err != nil {
		return nil, err
	}
	return Upcoming(list, now, windowDays), nil
}

func validateTask(in NewTask) error {
	f := &validation.Fields{}
	f.MaxLength("title", in.Title, 300)
	for _, st := range in.Subtasks {
		f.Required("subtasks.title", st.Title).MaxLength("subtasks.title", st.Title, 300)
	}
	return f.Err()
}

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewUnauthenticatedError("no active session")
	}
	return nil
}

func mapStoreError(err error, taskID, subtaskID string) error {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return apperrors.NewNotFoundError(apperrors.ErrCodeTaskNotFound, "task", taskID)
	case errors.Is(err, ErrSubtaskNotFound):
		return apperrors.NewNotFoundError(apperrors.ErrCodeSubtaskNotFound, "subtask", subtaskID)
	default:
		return apperrors.NewDatabaseError("task store", err)
	}
}
