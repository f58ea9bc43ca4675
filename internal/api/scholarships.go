package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarship-tracker/internal/common/auth"
	httpx "scholarship-tracker/internal/common/http"
	"scholarship-tracker/internal/models"
	"scholarship-tracker/internal/search"
	"scholarship-tracker/internal/tasks"
)

type scholarshipsResponse struct {
	Scholarships []models.Scholarship `json:"scholarships"`
}

type persistMatchesRequest struct {
	Scholarships []models.Scholarship `json:"scholarships"`
}

func (s *Server) listScholarships(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Scholarships.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scholarshipsResponse{Scholarships: list})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Scholarships.Dashboard(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scholarshipsResponse{Scholarships: list})
}

func (s *Server) getScholarship(w http.ResponseWriter, r *http.Request) {
	sc, err := s.deps.Scholarships.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "scholarshipID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sc)
}

func (s *Server) addScholarship(w http.ResponseWriter, r *http.Request) {
	var sc models.Scholarship
	if err := httpx.DecodeJSON(r, &sc); err != nil {
		httpx.WriteError(w, err)
		return
	}
	userID := auth.UserID(r.Context())
	list, err := s.deps.Scholarships.AddOrPromote(r.Context(), userID, sc)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	// Adding starts the application checklist; a repeat add finds the same task.
	for _, entry := range list {
		if entry.ID != sc.ID {
			continue
		}
		if _, err := s.deps.Tasks.AddTaskFromScholarship(r.Context(), userID, entry); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, scholarshipsResponse{Scholarships: list})
}

func (s *Server) removeScholarship(w http.ResponseWriter, r *http.Request) {
	var sc models.Scholarship
	if err := httpx.DecodeJSON(r, &sc); err != nil {
		httpx.WriteError(w, err)
		return
	}
	list, err := s.deps.Scholarships.Demote(r.Context(), auth.UserID(r.Context()), sc)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scholarshipsResponse{Scholarships: list})
}

// persistMatches is the manual retry for matches whose storage failed after generation.
func (s *Server) persistMatches(w http.ResponseWriter, r *http.Request) {
	var req persistMatchesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	list, err := s.deps.Scholarships.PersistMatches(r.Context(), auth.UserID(r.Context()), req.Scholarships)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scholarshipsResponse{Scholarships: list})
}

func (s *Server) scholarshipDeadlines(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.deps.ReminderWindowDays)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	added, err := s.deps.Scholarships.Dashboard(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deadlines": tasks.ScholarshipDeadlines(added, s.now(), days),
	})
}

func (s *Server) searchScholarships(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	size, err := intParam(r, "size", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	from, err := intParam(r, "from", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	res, err := s.deps.Search.Search(r.Context(), auth.UserID(r.Context()), search.Query{
		Text:        qs.Get("q"),
		Country:     qs.Get("country"),
		DegreeLevel: qs.Get("degree_level"),
		Status:      qs.Get("status"),
		From:        from,
		Size:        size,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
