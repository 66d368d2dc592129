package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/baxromumarov/upfolio/internal/urlutil"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeout   = 15 * time.Second

	// MinBodyChars is the shortest decoded body accepted as a page.
	MinBodyChars = 100

	maxBodyBytes = 5 << 20
	maxRedirects = 10
)

// Page is a fetched HTML document decoded to UTF-8.
type Page struct {
	URL         string
	Status      int
	ContentType string
	HTML        string
}

// PageFetcher performs a single GET per page. It never retries.
type PageFetcher struct {
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	blocked    *urlutil.HostMatcher
}

func NewPageFetcher(userAgent string, timeout time.Duration) *PageFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &PageFetcher{
		userAgent: userAgent,
		timeout:   timeout,
	}
	f.httpClient = &http.Client{CheckRedirect: f.checkRedirect}
	return f
}

// WithHTTPClient swaps the underlying client (tests, proxies). Redirects
// are still checked against the blocked hosts.
func (f *PageFetcher) WithHTTPClient(c *http.Client) *PageFetcher {
	if c != nil {
		clone := *c
		clone.CheckRedirect = f.checkRedirect
		f.httpClient = &clone
	}
	return f
}

// GuardRedirects refuses any redirect to a host matched by blocked. Call it
// before the fetcher is shared.
func (f *PageFetcher) GuardRedirects(blocked *urlutil.HostMatcher) {
	f.blocked = blocked
}

func (f *PageFetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	return checkRedirect(f.blocked, req, via)
}

func checkRedirect(blocked *urlutil.HostMatcher, req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	_, err := blocked.CheckURL(req.URL.String())
	return err
}

func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, f.transportError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{Status: resp.StatusCode, URL: rawURL}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, &ContentTypeError{URL: rawURL, ContentType: contentType}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, f.transportError(ctx, rawURL, err)
	}

	body := DecodeHTML(raw, contentType)
	if n := utf8.RuneCountInString(strings.TrimSpace(body)); n < MinBodyChars {
		return nil, &EmptyContentError{URL: rawURL, Length: n}
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		Status:      resp.StatusCode,
		ContentType: contentType,
		HTML:        body,
	}, nil
}

// transportError maps a failed request or body read to TimeoutError when our
// own deadline fired. Cancellation by the caller passes through unchanged.
func (f *PageFetcher) transportError(parent context.Context, rawURL string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	var invalid *urlutil.InvalidURLError
	if errors.As(err, &invalid) {
		return invalid
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{URL: rawURL, Timeout: f.timeout}
	}
	return &FetchError{URL: rawURL, Err: err}
}

// DecodeHTML converts body to UTF-8 using the Content-Type charset, a <meta>
// declaration, or byte-level detection, in that order.
func DecodeHTML(body []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	// windows-1252 is the fallback when neither header nor markup declared a
	// charset and the bytes are not valid UTF-8.
	if !certain && name == "windows-1252" {
		if res, err := chardet.NewTextDetector().DetectBest(body); err == nil && res.Confidence >= 50 {
			if detected, detectedName := charset.Lookup(res.Charset); detected != nil {
				enc, name = detected, detectedName
			}
		}
	}
	if name == "utf-8" || enc == nil {
		return string(bytes.ToValidUTF8(body, []byte("�")))
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(bytes.ToValidUTF8(body, []byte("�")))
	}
	return string(decoded)
}
