package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarship-tracker/internal/common/auth"
	httpx "scholarship-tracker/internal/common/http"
	"scholarship-tracker/internal/models"
)

type bookRequest struct {
	TimeslotID string `json:"timeslot_id"`
	Date       string `json:"date"`
}

type rateRequest struct {
	Stars int `json:"stars"`
}

type verifyRequest struct {
	Verified bool `json:"verified"`
}

func (s *Server) listMentors(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Mentors.ListVerified(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"mentors": list})
}

func (s *Server) registerMentor(w http.ResponseWriter, r *http.Request) {
	var in models.MentorProfile
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	p, _ := auth.FromContext(r.Context())
	if in.Email == "" {
		in.Email = p.Email
	}
	m, err := s.deps.Mentors.Register(r.Context(), p.UserID, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (s *Server) myMentorProfile(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Mentors.Me(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) updateMentor(w http.ResponseWriter, r *http.Request) {
	var in models.MentorProfile
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	m, err := s.deps.Mentors.UpdateProfile(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) getMentor(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Mentors.Get(r.Context(), chi.URLParam(r, "mentorID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) addTimeslot(w http.ResponseWriter, r *http.Request) {
	var in models.Timeslot
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	ts, err := s.deps.Mentors.AddTimeslot(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, ts)
}

func (s *Server) deleteTimeslot(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Mentors.DeleteTimeslot(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "timeslotID")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTimeslots(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Mentors.ListTimeslots(r.Context(), chi.URLParam(r, "mentorID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"timeslots": list})
}

func (s *Server) bookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	appt, err := s.deps.Mentors.Book(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "mentorID"), req.TimeslotID, req.Date)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, appt)
}

func (s *Server) rateMentor(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	m, err := s.deps.Mentors.Rate(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "mentorID"), req.Stars)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) mentorAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Mentors.ListAppointments(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"appointments": list})
}

func (s *Server) myBookings(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Mentors.ListBookings(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"appointments": list})
}

func (s *Server) adminListMentors(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Mentors.ListAll(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"mentors": list})
}

func (s *Server) verifyMentor(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	m, err := s.deps.Mentors.SetVerified(r.Context(), chi.URLParam(r, "mentorID"), req.Verified)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}
