package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// FetchError reports a non-2xx response, or a transport failure when Status
// is zero.
type FetchError struct {
	Status int
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) UserMessage() string {
	switch e.Status {
	case 0:
		return "Could not reach the job website. Please check the URL or paste the job description manually."
	case http.StatusForbidden:
		return "This website is blocking automated access. Please copy and paste the job description manually."
	case http.StatusNotFound:
		return "Job posting not found. It may have been removed or the URL is incorrect."
	case http.StatusUnauthorized:
		return "This job posting requires you to sign in. Please copy and paste the job description manually."
	case http.StatusTooManyRequests:
		return "Too many requests to this website. Please wait a moment and try again, or paste the job description manually."
	case http.StatusInternalServerError:
		return "The job website is having server problems. Please try again later or paste the job description manually."
	default:
		return fmt.Sprintf("Failed to fetch the job posting (HTTP %d). Please paste the job description manually.", e.Status)
	}
}

// TimeoutError is returned when the page did not arrive within the fetch
// deadline. It unwraps to context.DeadlineExceeded.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch %s: timed out after %s", e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

func (e *TimeoutError) UserMessage() string {
	return fmt.Sprintf("The job website did not respond within %d seconds. Please try again or paste the job description manually.", int(e.Timeout.Seconds()))
}

type ContentTypeError struct {
	URL         string
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected content type %q", e.URL, e.ContentType)
}

func (e *ContentTypeError) UserMessage() string {
	return "This link does not point to a web page. Please paste the job description manually."
}

// EmptyContentError means the page (or its extracted text) is too short to
// hold a job posting.
type EmptyContentError struct {
	URL    string
	Length int
}

func (e *EmptyContentError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("content too short (%d characters)", e.Length)
	}
	return fmt.Sprintf("fetch %s: content too short (%d characters)", e.URL, e.Length)
}

func (e *EmptyContentError) UserMessage() string {
	return "The page appears to be empty or needs JavaScript to load. Please paste the job description manually."
}
