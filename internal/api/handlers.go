package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/upfolio/internal/core"
	"github.com/baxromumarov/upfolio/internal/observability"
	"github.com/baxromumarov/upfolio/internal/store"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=120"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := s.store.CreateUser(r.Context(), req.Email, req.Name, req.Username, s.opts.InitialCredits)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), userID(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type scrapeRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":    res.Job,
		"method": res.Method,
		"url":    res.URL,
	})
}

type jobAssistantRequest struct {
	URL         string `json:"url" validate:"omitempty,max=2048"`
	Description string `json:"description" validate:"omitempty,max=50000"`
	Title       string `json:"title" validate:"omitempty,max=200"`
	Company     string `json:"company" validate:"omitempty,max=200"`
	Resume      bool   `json:"resume"`
	CoverLetter bool   `json:"cover_letter"`
	Tone        string `json:"tone" validate:"omitempty,max=40"`
}

func (s *Server) handleJobAssistant(w http.ResponseWriter, r *http.Request) {
	var req jobAssistantRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.assistant.Run(r.Context(), userID(r), core.JobAssistantRequest{
		Job: core.JobInput{
			URL:         req.URL,
			Description: req.Description,
			Title:       req.Title,
			Company:     req.Company,
		},
		Resume:      req.Resume,
		CoverLetter: req.CoverLetter,
		Tone:        req.Tone,
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	apps, total, err := s.store.ListApplications(r.Context(), userID(r), limit, offset)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	// Return empty list if nil to be JSON friendly
	if apps == nil {
		apps = []store.Application{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  apps,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	app, err := s.store.GetApplication(r.Context(), userID(r), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteApplication(r.Context(), userID(r), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid id")
		return 0, false
	}
	return id, true
}
