package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/content"
	"github.com/baxromumarov/upfolio/internal/observability"
	"github.com/baxromumarov/upfolio/internal/scraper"
	"github.com/baxromumarov/upfolio/internal/store"
)

// MethodManual marks a job whose description was pasted by the user.
const MethodManual = "manual"

type JobScraper interface {
	Scrape(ctx context.Context, rawURL string) (scraper.Result, error)
}

type JobInput struct {
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
}

// PreparedJob is the posting the assistant works on, with any non-fatal
// problems met while assembling it.
type PreparedJob struct {
	Job      scraper.ScrapedJob `json:"job"`
	URL      string             `json:"url,omitempty"`
	Method   string             `json:"method"`
	Warnings []string           `json:"warnings,omitempty"`
}

type JobAssistantRequest struct {
	Job         JobInput
	Resume      bool
	CoverLetter bool
	Tone        string
}

type JobAssistantResult struct {
	Application      *store.Application `json:"application"`
	Method           string             `json:"method"`
	Warnings         []string           `json:"warnings,omitempty"`
	CreditsRemaining int                `json:"credits_remaining"`
}

type JobAssistantService struct {
	store   *store.Store
	scraper JobScraper
	ai      ai.Client
	logger  *slog.Logger
}

func NewJobAssistantService(st *store.Store, sc JobScraper, aiClient ai.Client, logger *slog.Logger) *JobAssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobAssistantService{store: st, scraper: sc, ai: aiClient, logger: logger}
}

// Prepare resolves the job from a URL, a pasted description, or both. A
// failed scrape is only fatal when there is no description to fall back on.
func (s *JobAssistantService) Prepare(ctx context.Context, in JobInput) (*PreparedJob, error) {
	rawURL := strings.TrimSpace(in.URL)
	manual := content.StripHTML(in.Description)
	if rawURL == "" && manual == "" {
		return nil, ErrMissingJobInput
	}

	prepared := &PreparedJob{URL: rawURL}
	if rawURL != "" {
		res, err := s.scraper.Scrape(ctx, rawURL)
		switch {
		case err == nil:
			prepared.Job = res.Job
			prepared.Method = res.Method
			prepared.URL = res.URL
		case manual == "":
			return nil, err
		default:
			s.logger.Info("scrape failed, using pasted description", "url", rawURL, "error", err)
			prepared.Warnings = append(prepared.Warnings, scraper.UserMessage(err))
		}
	}

	if prepared.Method == "" {
		if content.CharCount(manual) <= scraper.MinDescriptionChars {
			return nil, fmt.Errorf("%w: it must be longer than %d characters", ErrDescriptionTooShort, scraper.MinDescriptionChars)
		}
		prepared.Job.Description = manual
		prepared.Method = MethodManual
	}

	if title := content.CleanText(in.Title); title != "" {
		prepared.Job.Title = title
	}
	if company := content.CleanText(in.Company); company != "" {
		prepared.Job.Company = company
	}

	if prepared.Job.Title == "" || prepared.Job.Company == "" {
		info, err := s.ai.ExtractJobInfo(ctx, content.Truncate(prepared.Job.Description, scraper.AIInputMaxChars))
		if err != nil {
			s.logger.Warn("job info extraction failed", "error", err)
			prepared.Warnings = append(prepared.Warnings, "We couldn't detect the job title or company automatically.")
		} else {
			if prepared.Job.Title == "" {
				prepared.Job.Title = content.CleanText(info.Title)
			}
			if prepared.Job.Company == "" {
				prepared.Job.Company = content.CleanText(info.Company)
			}
		}
	}
	return prepared, nil
}

// Run prepares the job, charges one credit, scores the fit and writes the
// requested documents, then saves the result as an application. The credit
// is refunded when the AI calls or the save fail.
func (s *JobAssistantService) Run(ctx context.Context, userID int64, req JobAssistantRequest) (*JobAssistantResult, error) {
	prepared, err := s.Prepare(ctx, req.Job)
	if err != nil {
		return nil, err
	}

	resume, err := s.workingResume(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining, err := s.store.DeductCredit(ctx, userID)
	if err != nil {
		return nil, err
	}

	posting := ai.JobPosting{
		Title:       prepared.Job.Title,
		Company:     prepared.Job.Company,
		Location:    prepared.Job.Location,
		Description: prepared.Job.Description,
	}

	var (
		report ai.FitReport
		docs   ai.Documents
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.ai.ScoreFit(gctx, resume.Content, posting)
		if err != nil {
			return &AIError{Op: "score_fit", Err: err}
		}
		return nil
	})
	if req.Resume || req.CoverLetter {
		g.Go(func() error {
			var err error
			docs, err = s.ai.GenerateDocuments(gctx, resume.Content, posting, ai.DocumentOptions{
				Resume:      req.Resume,
				CoverLetter: req.CoverLetter,
				Tone:        req.Tone,
			})
			if err != nil {
				return &AIError{Op: "generate_documents", Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.refund(userID)
		observability.IncError(observability.ErrorAI, "job_assistant")
		return nil, err
	}

	app, err := s.store.SaveApplication(ctx, store.Application{
		UserID:           userID,
		ResumeID:         &resume.ID,
		JobURL:           prepared.URL,
		JobTitle:         posting.Title,
		Company:          posting.Company,
		Location:         posting.Location,
		JobDescription:   posting.Description,
		ExtractionMethod: prepared.Method,
		MatchScore:       report.Score,
		MatchSummary:     report.Summary,
		Strengths:        report.Strengths,
		Gaps:             report.Gaps,
		TailoredResume:   docs.TailoredResume,
		CoverLetter:      docs.CoverLetter,
	})
	if err != nil {
		s.refund(userID)
		return nil, fmt.Errorf("save application: %w", err)
	}
	observability.IncApplication()

	return &JobAssistantResult{
		Application:      app,
		Method:           prepared.Method,
		Warnings:         prepared.Warnings,
		CreditsRemaining: remaining,
	}, nil
}

// workingResume is the published version, or the newest draft when nothing
// is published.
func (s *JobAssistantService) workingResume(ctx context.Context, userID int64) (*store.Resume, error) {
	resume, err := s.store.GetPublishedResume(ctx, userID)
	if err == nil {
		return resume, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	resume, err = s.store.GetLatestResume(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoResume
	}
	return resume, err
}

func (s *JobAssistantService) refund(userID int64) {
	// the request context may already be cancelled
	if _, err := s.store.AddCredits(context.Background(), userID, 1); err != nil {
		s.logger.Error("credit refund failed", "user_id", userID, "error", err)
	}
}
