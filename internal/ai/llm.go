package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"text/template"

	"github.com/baxromumarov/upfolio/internal/observability"
)

const (
	maxJobTextChars    = 8000
	maxResumeTextChars = 12000
	maxChatReplyTokens = 400
)

// LLMClient implements Client on top of a Completer using the embedded
// prompt templates.
type LLMClient struct {
	completer Completer
	logger    *slog.Logger
}

func NewLLMClient(completer Completer, logger *slog.Logger) *LLMClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClient{completer: completer, logger: logger}
}

func (c *LLMClient) ExtractJobInfo(ctx context.Context, text string) (JobInfo, error) {
	var info JobInfo
	err := c.completeJSON(ctx, "extract_job_info", extractJobInfoTemplate, map[string]any{
		"Text": truncateText(text, maxJobTextChars),
	}, 200, &info)
	if err != nil {
		return JobInfo{}, err
	}
	info.Title = strings.TrimSpace(info.Title)
	info.Company = strings.TrimSpace(info.Company)
	return info, nil
}

func (c *LLMClient) ScoreFit(ctx context.Context, resume ResumeData, job JobPosting) (FitReport, error) {
	// Models sometimes answer with a fractional score.
	var raw struct {
		Score     float64  `json:"score"`
		Summary   string   `json:"summary"`
		Strengths []string `json:"strengths"`
		Gaps      []string `json:"gaps"`
	}
	err := c.completeJSON(ctx, "score_fit", scoreFitTemplate, map[string]any{
		"Resume":      resume,
		"Job":         job,
		"Description": truncateText(job.Description, maxJobTextChars),
	}, 600, &raw)
	if err != nil {
		return FitReport{}, err
	}
	return FitReport{
		Score:     clampScore(int(math.Round(raw.Score))),
		Summary:   strings.TrimSpace(raw.Summary),
		Strengths: raw.Strengths,
		Gaps:      raw.Gaps,
	}, nil
}

func (c *LLMClient) GenerateDocuments(ctx context.Context, resume ResumeData, job JobPosting, opts DocumentOptions) (Documents, error) {
	if !opts.Resume && !opts.CoverLetter {
		return Documents{}, nil
	}
	var docs Documents
	err := c.completeJSON(ctx, "generate_documents", generateDocumentsTemplate, map[string]any{
		"Resume":      resume,
		"Job":         job,
		"Options":     opts,
		"Description": truncateText(job.Description, maxJobTextChars),
	}, 3000, &docs)
	if err != nil {
		return Documents{}, err
	}
	if !opts.Resume {
		docs.TailoredResume = ""
	}
	if !opts.CoverLetter {
		docs.CoverLetter = ""
	}
	return docs, nil
}

func (c *LLMClient) ParseResume(ctx context.Context, text string) (ResumeData, error) {
	var data ResumeData
	err := c.completeJSON(ctx, "parse_resume", parseResumeTemplate, map[string]any{
		"Text": truncateText(text, maxResumeTextChars),
	}, 3000, &data)
	if err != nil {
		return ResumeData{}, err
	}
	return data, nil
}

func (c *LLMClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	prompt, err := render(chatTemplate, req)
	if err != nil {
		return "", err
	}
	observability.IncAICall("chat")
	reply, err := c.completer.Complete(ctx, Request{
		Prompt:      prompt,
		Temperature: 0.4,
		MaxTokens:   maxChatReplyTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func (c *LLMClient) completeJSON(ctx context.Context, op string, tmpl *template.Template, data any, maxTokens int, out any) error {
	prompt, err := render(tmpl, data)
	if err != nil {
		return err
	}

	observability.IncAICall(op)
	response, err := c.completer.Complete(ctx, Request{
		Prompt:      prompt,
		JSON:        true,
		Temperature: 0.1,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}

	if err := json.Unmarshal([]byte(cleanJSON(response)), out); err != nil {
		c.logger.Debug("unparseable ai response", "op", op, "response", truncateText(response, 500))
		return fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	return nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
