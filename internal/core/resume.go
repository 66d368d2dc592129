package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/content"
	"github.com/baxromumarov/upfolio/internal/store"
)

// MinResumeChars is the shortest pasted résumé text worth parsing.
const MinResumeChars = 100

type ResumeService struct {
	store  *store.Store
	ai     ai.Client
	logger *slog.Logger
}

func NewResumeService(st *store.Store, aiClient ai.Client, logger *slog.Logger) *ResumeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumeService{store: st, ai: aiClient, logger: logger}
}

// Import parses résumé text and stores it as a new draft version.
func (s *ResumeService) Import(ctx context.Context, userID int64, text, sourceFile string) (*store.Resume, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	clean := content.PlainLines(text)
	if content.CharCount(clean) < MinResumeChars {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrResumeTooShort, MinResumeChars)
	}

	data, err := s.ai.ParseResume(ctx, clean)
	if err != nil {
		return nil, &AIError{Op: "parse_resume", Err: err}
	}
	if strings.TrimSpace(data.Name) == "" {
		s.logger.Info("parsed resume has no name", "user_id", userID)
	}

	return s.store.CreateResume(ctx, userID, data, strings.TrimSpace(sourceFile))
}
