package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/store"
)

type resumeRequest struct {
	Content    ai.ResumeData `json:"content"`
	SourceFile string        `json:"source_file" validate:"max=255"`
}

type importResumeRequest struct {
	Text       string `json:"text" validate:"required,max=100000"`
	SourceFile string `json:"source_file" validate:"max=255"`
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	resumes, err := s.store.ListResumes(r.Context(), userID(r), includeArchived)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if resumes == nil {
		resumes = []store.Resume{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": resumes})
}

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "content.name is required")
		return
	}
	resume, err := s.store.CreateResume(r.Context(), userID(r), req.Content, req.SourceFile)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, resume)
}

func (s *Server) handleImportResume(w http.ResponseWriter, r *http.Request) {
	var req importResumeRequest
	if !decode(w, r, &req) {
		return
	}
	resume, err := s.resumes.Import(r.Context(), userID(r), req.Text, req.SourceFile)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, resume)
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	resume, err := s.store.GetResume(r.Context(), userID(r), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resume)
}

func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req resumeRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "content.name is required")
		return
	}
	resume, err := s.store.UpdateResumeContent(r.Context(), userID(r), id, req.Content)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resume)
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteResume(r.Context(), userID(r), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResumeTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	action := store.ResumeAction(chi.URLParam(r, "action"))
	switch action {
	case store.ActionPublish, store.ActionUnpublish, store.ActionArchive, store.ActionRestore:
	default:
		respondError(w, http.StatusNotFound, "not_found", "Unknown action")
		return
	}
	resume, err := s.store.TransitionResume(r.Context(), userID(r), id, action)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resume)
}
