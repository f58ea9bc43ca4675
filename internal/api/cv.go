package api

import (
	"net/http"

	httpx "scholarship-tracker/internal/common/http"
	"scholarship-tracker/internal/cvbuilder"
	"scholarship-tracker/internal/models"
)

func (s *Server) cvTemplates(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"templates": cvbuilder.Templates()})
}

// renderCV returns the CV as a downloadable HTML page.
func (s *Server) renderCV(w http.ResponseWriter, r *http.Request) {
	var data models.CVData
	if err := httpx.DecodeJSON(r, &data); err != nil {
		httpx.WriteError(w, err)
		return
	}
	templateID := r.URL.Query().Get("template")
	if templateID == "" {
		templateID = cvbuilder.DefaultTemplate
	}

	html, err := cvbuilder.Render(data, templateID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cv.html"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}
