package core

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/content"
	"github.com/baxromumarov/upfolio/internal/observability"
	"github.com/baxromumarov/upfolio/internal/store"
	"github.com/baxromumarov/upfolio/internal/urlutil"
)

const (
	maxHistoryTurns     = 10
	maxLinksPerMessage  = 2
	maxChatMessageChars = 2000
)

type ChatInput struct {
	Message   string           `json:"message"`
	History   []ai.ChatMessage `json:"history,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
}

type ChatReply struct {
	Reply     string                `json:"reply"`
	SessionID string                `json:"session_id"`
	Links     []content.LinkPreview `json:"links,omitempty"`
}

// ChatService answers recruiter questions on a public profile. Each reply
// costs the profile owner one credit.
type ChatService struct {
	store    *store.Store
	ai       ai.Client
	previews *LinkPreviewer
	logger   *slog.Logger
}

func NewChatService(st *store.Store, aiClient ai.Client, previews *LinkPreviewer, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{store: st, ai: aiClient, previews: previews, logger: logger}
}

func (s *ChatService) Reply(ctx context.Context, username string, in ChatInput) (*ChatReply, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if content.CharCount(message) > maxChatMessageChars {
		return nil, ErrMessageTooLong
	}

	owner, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	resume, err := s.store.GetPublishedResume(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	links := s.linkPreviews(ctx, message)

	if _, err := s.store.DeductCredit(ctx, owner.ID); err != nil {
		return nil, err
	}

	req := ai.ChatRequest{
		OwnerName: owner.Name,
		Resume:    resume.Content,
		History:   trimHistory(in.History),
		Message:   message,
	}
	for _, l := range links {
		req.Links = append(req.Links, ai.LinkContext{URL: l.URL, Title: l.Title, Summary: linkSummary(l)})
	}

	reply, err := s.ai.Chat(ctx, req)
	if err != nil {
		if _, rerr := s.store.AddCredits(context.Background(), owner.ID, 1); rerr != nil {
			s.logger.Error("credit refund failed", "user_id", owner.ID, "error", rerr)
		}
		observability.IncError(observability.ErrorAI, "chat")
		return nil, &AIError{Op: "chat", Err: err}
	}
	observability.IncChatReply()

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &ChatReply{Reply: reply, SessionID: sessionID, Links: links}, nil
}

// linkPreviews fetches previews for the first URLs in message. Failures are
// logged and skipped.
func (s *ChatService) linkPreviews(ctx context.Context, message string) []content.LinkPreview {
	if s.previews == nil {
		return nil
	}
	urls := urlutil.ExtractURLs(message, maxLinksPerMessage)
	if len(urls) == 0 {
		return nil
	}

	results := make([]*content.LinkPreview, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			preview, err := s.previews.Preview(ctx, u)
			if err != nil {
				s.logger.Info("link preview skipped", "url", u, "error", err)
				return nil
			}
			results[i] = &preview
			return nil
		})
	}
	_ = g.Wait()

	var previews []content.LinkPreview
	for _, p := range results {
		if p != nil {
			previews = append(previews, *p)
		}
	}
	return previews
}

func linkSummary(p content.LinkPreview) string {
	if p.JobPosting != nil {
		parts := []string{p.JobPosting.Title, p.JobPosting.Company, p.JobPosting.Location}
		var kept []string
		for _, part := range parts {
			if part != "" {
				kept = append(kept, part)
			}
		}
		summary := "Job posting: " + strings.Join(kept, ", ")
		if p.JobPosting.Description != "" {
			summary += ". " + p.JobPosting.Description
		}
		return summary
	}
	if p.Description != "" {
		return p.Description
	}
	return p.Text
}

// trimHistory keeps the last turns with a known role and non-empty content.
func trimHistory(history []ai.ChatMessage) []ai.ChatMessage {
	var kept []ai.ChatMessage
	for _, m := range history {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		text := strings.TrimSpace(m.Content)
		if text == "" || (role != "user" && role != "assistant") {
			continue
		}
		kept = append(kept, ai.ChatMessage{Role: role, Content: text})
	}
	if len(kept) > maxHistoryTurns {
		kept = kept[len(kept)-maxHistoryTurns:]
	}
	return kept
}
