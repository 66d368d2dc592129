package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/core"
	"github.com/baxromumarov/upfolio/internal/store"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	profiles, total, err := s.store.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []store.ProfileSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  profiles,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type chatRequest struct {
	Message   string           `json:"message" validate:"required"`
	History   []ai.ChatMessage `json:"history" validate:"max=50"`
	SessionID string           `json:"session_id" validate:"omitempty,max=64"`
}

// handleChat is public: visitors talk to the profile, the owner pays.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	reply, err := s.chat.Reply(r.Context(), chi.URLParam(r, "username"), core.ChatInput{
		Message:   req.Message,
		History:   req.History,
		SessionID: req.SessionID,
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}
