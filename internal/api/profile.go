package api

import (
	"context"
	"net/http"

	"scholarship-tracker/internal/common/auth"
	httpx "scholarship-tracker/internal/common/http"
	"scholarship-tracker/internal/genai"
	"scholarship-tracker/internal/models"
	"scholarship-tracker/internal/wizard"
)

type intakeRequest struct {
	Answers wizard.Answers `json:"answers"`
	Phone   string         `json:"phone,omitempty"`
}

type intakeResponse struct {
	Profile *models.UserProfile `json:"profile"`
	*genai.MatchResult
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Profiles.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	var in models.UserProfile
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	p, _ := auth.FromContext(r.Context())
	if in.Email == "" {
		in.Email = p.Email
	}
	saved, err := s.deps.Profiles.Save(r.Context(), p.UserID, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, saved)
}

func (s *Server) intakeQuestions(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"questions": wizard.Questions})
}

// intake replays the submitted answers through the wizard before any write,
// then makes sure the profile row exists, runs match generation once and
// saves the profile.
func (s *Server) intake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	wz, err := wizard.Replay(req.Answers)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	principal, _ := auth.FromContext(r.Context())
	ctx := r.Context()
	if err := s.deps.Profiles.Ensure(ctx, principal.UserID); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := s.allow(r); err != nil {
		httpx.WriteError(w, err)
		return
	}

	var match *genai.MatchResult
	res, matchErr := wz.Submit(ctx, wizard.MatcherFunc(func(ctx context.Context, profileText string) error {
		out, err := s.deps.Matches.Run(ctx, principal.UserID, profileText)
		match = out
		return err
	}))
	if res == nil {
		httpx.WriteError(w, matchErr)
		return
	}

	saved, err := s.deps.Profiles.Save(ctx, principal.UserID, models.UserProfile{
		ProfileText: res.ProfileText,
		DateOfBirth: res.DateOfBirth,
		Gender:      res.Gender,
		Nationality: res.Nationality,
		Email:       principal.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if matchErr != nil {
		httpx.WriteError(w, matchErr)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, intakeResponse{Profile: saved, MatchResult: match})
}
