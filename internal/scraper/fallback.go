package scraper

import (
	"context"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/content"
	"github.com/baxromumarov/upfolio/internal/httpx"
)

// JobInfoExtractor identifies the title and company in free text.
type JobInfoExtractor interface {
	ExtractJobInfo(ctx context.Context, text string) (ai.JobInfo, error)
}

// AIFallback asks the AI extractor for title and company when no strategy
// matched. The description is the text it was given.
type AIFallback struct {
	extractor JobInfoExtractor
}

func NewAIFallback(extractor JobInfoExtractor) *AIFallback {
	return &AIFallback{extractor: extractor}
}

func (f *AIFallback) Extract(ctx context.Context, bodyText string) (ScrapedJob, error) {
	if n := content.CharCount(bodyText); n < MinBodyTextChars {
		return ScrapedJob{}, &httpx.EmptyContentError{Length: n}
	}
	if f == nil || f.extractor == nil {
		return ScrapedJob{}, &AIExtractionError{Err: errNoExtractor}
	}

	input := content.Truncate(bodyText, AIInputMaxChars)
	info, err := f.extractor.ExtractJobInfo(ctx, input)
	if err != nil {
		return ScrapedJob{}, &AIExtractionError{Err: err}
	}

	return ScrapedJob{
		Title:       content.CleanText(info.Title),
		Company:     content.CleanText(info.Company),
		Description: input,
	}, nil
}
