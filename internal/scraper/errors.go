package scraper

import (
	"errors"
	"fmt"
)

// UserFacing errors carry a message safe to show to the end user.
type UserFacing interface {
	UserMessage() string
}

const manualPasteMessage = "We couldn't read the job details from this page. Please paste the job description manually."

// UserMessage returns the end-user message of the outermost UserFacing error
// in err's chain, or a generic manual-paste prompt.
func UserMessage(err error) string {
	var uf UserFacing
	if errors.As(err, &uf) {
		return uf.UserMessage()
	}
	return manualPasteMessage
}

// ExtractionFailedError is terminal: no strategy matched and the AI fallback
// could not help either.
type ExtractionFailedError struct {
	URL   string
	Cause error
}

func (e *ExtractionFailedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("extract job from %s: no strategy matched", e.URL)
	}
	return fmt.Sprintf("extract job from %s: %v", e.URL, e.Cause)
}

func (e *ExtractionFailedError) Unwrap() error {
	return e.Cause
}

func (e *ExtractionFailedError) UserMessage() string {
	var uf UserFacing
	if e.Cause != nil && errors.As(e.Cause, &uf) {
		return uf.UserMessage()
	}
	return manualPasteMessage
}

func (e *ExtractionFailedError) ErrorKind() string {
	return "extraction"
}

// AIExtractionError wraps a failed call to the AI extractor.
type AIExtractionError struct {
	Err error
}

func (e *AIExtractionError) Error() string {
	return fmt.Sprintf("ai extraction failed: %v", e.Err)
}

func (e *AIExtractionError) Unwrap() error {
	return e.Err
}

func (e *AIExtractionError) UserMessage() string {
	return "We couldn't extract the job details automatically. Please paste the job description manually."
}

func (e *AIExtractionError) ErrorKind() string {
	return "ai"
}

var errNoExtractor = errors.New("no ai extractor configured")
