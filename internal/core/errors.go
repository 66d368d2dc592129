package core

import (
	"errors"
	"fmt"
)

var (
	ErrMissingJobInput     = errors.New("provide a job URL or a job description")
	ErrDescriptionTooShort = errors.New("job description is too short")
	ErrNoResume            = errors.New("no resume to work from")
	ErrResumeTooShort      = errors.New("resume text is too short")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrMessageTooLong      = errors.New("message is too long")
	ErrBlockedHost         = errors.New("host is blocked")
)

// AIError wraps a failed language model call made on the user's behalf.
type AIError struct {
	Op  string
	Err error
}

func (e *AIError) Error() string {
	return fmt.Sprintf("ai %s failed: %v", e.Op, e.Err)
}

func (e *AIError) Unwrap() error {
	return e.Err
}

func (e *AIError) UserMessage() string {
	return "The AI service is unavailable right now. Your credit was not used; please try again in a moment."
}

func (e *AIError) ErrorKind() string {
	return "ai"
}
