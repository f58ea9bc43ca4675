package api

import (
	"net/http"

	"scholarship-tracker/internal/common/auth"
	apperrors "scholarship-tracker/internal/common/errors"
	httpx "scholarship-tracker/internal/common/http"
)

type generateRequest struct {
	Message     string `json:"message"`
	UserProfile string `json:"user_profile"`
}

type matchRequest struct {
	UserProfile string `json:"user_profile"`
}

// The generation routes answer failures with a plain {error} and status 500.
// Rate limiting is the one exception and keeps its 429.

func (s *Server) generateSOP(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrorStatus(w, http.StatusInternalServerError, "Failed to generate Statement of Purpose")
		return
	}
	if err := s.allow(r); err != nil {
		httpx.WriteError(w, err)
		return
	}
	sop, err := s.deps.Generator.GenerateSOP(r.Context(), req.Message, req.UserProfile)
	if err != nil {
		s.log.WithError(err).Error("sop generation failed", nil)
		httpx.WriteErrorStatus(w, http.StatusInternalServerError, "Failed to generate Statement of Purpose")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"sop": sop})
}

func (s *Server) generateLOR(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrorStatus(w, http.StatusInternalServerError, "Failed to generate Letter of Recommendation")
		return
	}
	if err := s.allow(r); err != nil {
		httpx.WriteError(w, err)
		return
	}
	lor, err := s.deps.Generator.GenerateLOR(r.Context(), req.Message, req.UserProfile)
	if err != nil {
		s.log.WithError(err).Error("lor generation failed", nil)
		httpx.WriteErrorStatus(w, http.StatusInternalServerError, "Failed to generate Letter of Recommendation")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"lor": lor})
}

func (s *Server) matchedScholarships(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		httpx.WriteErrorStatus(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req matchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrorStatus(w, http.StatusInternalServerError, "Failed to find matching scholarships")
		return
	}
	if err := s.allow(r); err != nil {
		httpx.WriteError(w, err)
		return
	}

	res, err := s.deps.Matches.Run(r.Context(), userID, req.UserProfile)
	if err != nil {
		s.log.WithError(err).Error("match generation failed", map[string]interface{}{
			"userId": userID,
			"code":   string(apperrors.Normalize(err).Code),
		})
		httpx.WriteErrorStatus(w, http.StatusInternalServerError, "Failed to find matching scholarships")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
