package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	ProviderGemini          = "gemini"
	ProviderOpenAI          = "openai"
	ProviderLangChainOpenAI = "langchain-openai"
	ProviderLangChainGoogle = "langchain-googleai"
	ProviderMock            = "mock"
)

// Client is everything Upfolio asks of a language model.
type Client interface {
	ExtractJobInfo(ctx context.Context, text string) (JobInfo, error)
	ScoreFit(ctx context.Context, resume ResumeData, job JobPosting) (FitReport, error)
	GenerateDocuments(ctx context.Context, resume ResumeData, job JobPosting, opts DocumentOptions) (Documents, error)
	ParseResume(ctx context.Context, text string) (ResumeData, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewClient builds the client for cfg.Provider. A real provider without a
// key, or one that fails to initialise, falls back to the mock client.
func NewClient(cfg Config, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderMock
	}
	if provider != ProviderMock && cfg.APIKey == "" {
		logger.Warn("ai provider configured without api key, falling back to mock", "provider", provider)
		return NewMockClient()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	var completer Completer
	switch provider {
	case ProviderGemini:
		completer = NewGeminiCompleter(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
	case ProviderOpenAI:
		completer = NewOpenAICompleter(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
	case ProviderLangChainOpenAI, ProviderLangChainGoogle:
		lc, err := NewLangChainCompleter(context.Background(), provider, cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			logger.Warn("langchain provider unavailable, falling back to mock", "provider", provider, "error", err)
			return NewMockClient()
		}
		completer = lc
	case ProviderMock:
		logger.Info("using mock ai client")
		return NewMockClient()
	default:
		logger.Warn("unknown ai provider, falling back to mock", "provider", provider)
		return NewMockClient()
	}

	logger.Info("using ai provider", "provider", provider, "model", cfg.Model)
	return NewLLMClient(completer, logger)
}

type JobInfo struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

type JobPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description"`
}

type FitReport struct {
	Score     int      `json:"score"`
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

type DocumentOptions struct {
	Resume      bool   `json:"resume"`
	CoverLetter bool   `json:"cover_letter"`
	Tone        string `json:"tone,omitempty"`
}

type Documents struct {
	TailoredResume string `json:"tailored_resume,omitempty"`
	CoverLetter    string `json:"cover_letter,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LinkContext is a summary of a page the visitor linked to.
type LinkContext struct {
	URL     string
	Title   string
	Summary string
}

type ChatRequest struct {
	OwnerName string
	Resume    ResumeData
	History   []ChatMessage
	Message   string
	Links     []LinkContext
}
