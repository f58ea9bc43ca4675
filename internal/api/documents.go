package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarship-tracker/internal/common/auth"
	httpx "scholarship-tracker/internal/common/http"
)

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	overview, err := s.deps.Documents.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, overview)
}

func (s *Server) documentBundle(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.deps.Documents.Bundle(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"documents": bundle})
}

func (s *Server) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	uploads, err := readUploads(w, r, s.deps.MaxUploadBytes)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	list, err := s.deps.Documents.Upload(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "category"), uploads)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, list)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Documents.Delete(r.Context(), auth.UserID(r.Context()),
		chi.URLParam(r, "category"), chi.URLParam(r, "fileID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) downloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.deps.Documents.DownloadURL(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "fileID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}
