package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"github.com/baxromumarov/upfolio/internal/urlutil"
)

const (
	collyMaxBody   = 2 << 20
	collyAttempts  = 2
	collyRetryBase = 500 * time.Millisecond
)

// CollyFetcher fetches third-party pages for link previews. Unlike
// PageFetcher it honours robots.txt, limits requests per host and retries a
// 429 or 5xx once.
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration

	mu     sync.Mutex
	limits map[string]*rate.Limiter
	every  rate.Limit
	burst  int

	blocked *urlutil.HostMatcher
}

func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CollyFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		limits:    make(map[string]*rate.Limiter),
		every:     rate.Every(time.Second),
		burst:     2,
	}
}

// GuardRedirects refuses rawURL and any redirect hop whose host is matched
// by blocked.
func (f *CollyFetcher) GuardRedirects(blocked *urlutil.HostMatcher) {
	f.blocked = blocked
}

// Fetch visits rawURL. register attaches the caller's OnHTML callbacks to
// the collector before the request is made.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string, register func(*colly.Collector)) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &FetchError{URL: rawURL, Err: errors.New("not an absolute http(s) url")}
	}
	if pattern := f.blocked.Match(u.Hostname()); pattern != "" {
		return &urlutil.InvalidURLError{Raw: rawURL, Reason: "host matches blocked pattern " + pattern}
	}
	limiter := f.limiter(strings.ToLower(u.Hostname()))

	var (
		status  int
		lastErr error
	)
	for attempt := 0; attempt < collyAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, collyRetryBase<<(attempt-1)); err != nil {
				return err
			}
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		status, lastErr = f.visit(ctx, u.String(), register)
		if lastErr == nil {
			return nil
		}
		if status != http.StatusTooManyRequests && status < 500 {
			break
		}
	}
	var invalid *urlutil.InvalidURLError
	if errors.As(lastErr, &invalid) {
		return invalid
	}
	if fe, ok := lastErr.(*FetchError); ok {
		return fe
	}
	return &FetchError{Status: status, URL: u.String(), Err: lastErr}
}

func (f *CollyFetcher) visit(ctx context.Context, target string, register func(*colly.Collector)) (int, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.MaxBodySize(collyMaxBody),
	)
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(f.timeout)
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		return checkRedirect(f.blocked, req, via)
	})
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	if register != nil {
		register(c)
	}

	var (
		status int
		reqErr error
	)
	c.OnResponse(func(r *colly.Response) { status = r.StatusCode })
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	if err := c.Visit(target); err != nil {
		if ctx.Err() != nil {
			return status, ctx.Err()
		}
		if status >= 400 {
			return status, &FetchError{Status: status, URL: target, Err: err}
		}
		return status, err
	}
	if reqErr != nil {
		return status, reqErr
	}
	if status >= 400 {
		return status, &FetchError{Status: status, URL: target}
	}
	return status, nil
}

func (f *CollyFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limits[host]
	if !ok {
		l = rate.NewLimiter(f.every, f.burst)
		f.limits[host] = l
	}
	return l
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
