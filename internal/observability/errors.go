package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/baxromumarov/upfolio/internal/httpx"
	"github.com/baxromumarov/upfolio/internal/urlutil"
)

const (
	ErrorNetwork    = "network"
	ErrorTimeout    = "timeout"
	ErrorBlocked    = "blocked"
	ErrorNotFound   = "not_found"
	ErrorRateLimit  = "rate_limit"
	ErrorHTTP       = "http"
	ErrorContent    = "content"
	ErrorValidation = "validation"
	ErrorExtraction = "extraction"
	ErrorAI         = "ai"
	ErrorStore      = "store"
	ErrorUnknown    = "unknown"
)

// kinded is implemented by errors that know their own class.
type kinded interface {
	ErrorKind() string
}

func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var te *httpx.TimeoutError
	if errors.As(err, &te) {
		return ErrorTimeout
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.Status == 0:
			return ErrorNetwork
		case fe.Status == http.StatusTooManyRequests:
			return ErrorRateLimit
		case fe.Status == http.StatusForbidden || fe.Status == http.StatusUnauthorized:
			return ErrorBlocked
		case fe.Status == http.StatusNotFound:
			return ErrorNotFound
		default:
			return ErrorHTTP
		}
	}
	var ce *httpx.ContentTypeError
	var ee *httpx.EmptyContentError
	if errors.As(err, &ce) || errors.As(err, &ee) {
		return ErrorContent
	}
	var ie *urlutil.InvalidURLError
	if errors.As(err, &ie) {
		return ErrorValidation
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	return ErrorUnknown
}

// ClassifyScrapeError prefers transport classes, then the innermost error
// that declares its own kind.
func ClassifyScrapeError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if kind := ClassifyFetchError(err); kind != ErrorUnknown {
		return kind
	}
	kind := ErrorUnknown
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := e.(kinded); ok {
			kind = k.ErrorKind()
		}
	}
	return kind
}
