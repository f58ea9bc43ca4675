package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarship-tracker/internal/common/auth"
	httpx "scholarship-tracker/internal/common/http"
	"scholarship-tracker/internal/models"
	"scholarship-tracker/internal/tasks"
)

type addTaskRequest struct {
	ScholarshipID string               `json:"scholarship_id"`
	Title         string               `json:"title"`
	Deadline      string               `json:"deadline"`
	Subtasks      []tasks.SubtaskInput `json:"subtasks"`
}

type tasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := tasks.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	list, err := s.deps.Tasks.ListTasks(r.Context(), auth.UserID(r.Context()), filter)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksResponse{Tasks: list})
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	userID := auth.UserID(r.Context())
	id, err := s.deps.Tasks.AddTask(r.Context(), userID, tasks.NewTask{
		ScholarshipID: req.ScholarshipID,
		Title:         req.Title,
		Deadline:      deadline,
		Subtasks:      req.Subtasks,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	s.writeTask(w, r, userID, id)
}

// addTaskFromScholarship builds the checklist from a tracked scholarship's application procedure.
func (s *Server) addTaskFromScholarship(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	sc, err := s.deps.Scholarships.Get(r.Context(), userID, chi.URLParam(r, "scholarshipID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	id, err := s.deps.Tasks.AddTaskFromScholarship(r.Context(), userID, *sc)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	s.writeTask(w, r, userID, id)
}

func (s *Server) writeTask(w http.ResponseWriter, r *http.Request, userID, taskID string) {
	t, err := s.deps.Tasks.GetTask(r.Context(), userID, taskID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Tasks.GetTask(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "taskID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Tasks.DeleteTask(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "taskID")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleSubtask(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Tasks.ToggleSubtask(r.Context(), auth.UserID(r.Context()),
		chi.URLParam(r, "taskID"), chi.URLParam(r, "subtaskID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (s *Server) upcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.deps.ReminderWindowDays)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	entries, err := s.deps.Tasks.UpcomingDeadlines(r.Context(), auth.UserID(r.Context()), s.now(), days)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"deadlines": entries})
}
