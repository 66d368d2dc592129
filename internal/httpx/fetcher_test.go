package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baxromumarov/upfolio/internal/urlutil"
)

var jobPage = "<html><head><title>Backend Engineer</title></head><body><h1>Backend Engineer</h1><p>" +
	strings.Repeat("We build reliable distributed systems. ", 10) + "</p></body></html>"

func newPageServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_Success(t *testing.T) {
	var gotUA string
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(jobPage))
	})

	f := NewPageFetcher("upfolio-test/1.0", time.Second)
	page, err := f.Fetch(context.Background(), srv.URL+"/jobs/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA != "upfolio-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if !strings.Contains(page.HTML, "Backend Engineer") {
		t.Errorf("page body not returned: %q", page.HTML)
	}
	if page.Status != http.StatusOK {
		t.Errorf("status = %d", page.Status)
	}
}

func TestFetch_StatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusForbidden, "blocking"},
		{http.StatusNotFound, "not found"},
		{http.StatusUnauthorized, "sign in"},
		{http.StatusTooManyRequests, "Too many requests"},
		{http.StatusInternalServerError, "server problems"},
		{http.StatusBadGateway, "HTTP 502"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			calls := 0
			srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(tt.status)
				w.Write([]byte(jobPage))
			})

			_, err := NewPageFetcher("", time.Second).Fetch(context.Background(), srv.URL)
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %T (%v)", err, err)
			}
			if fe.Status != tt.status {
				t.Errorf("status = %d, want %d", fe.Status, tt.status)
			}
			if !strings.Contains(fe.UserMessage(), tt.message) {
				t.Errorf("message %q does not contain %q", fe.UserMessage(), tt.message)
			}
			if calls != 1 {
				t.Errorf("expected exactly one request, got %d", calls)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	start := time.Now()
	_, err := NewPageFetcher("", 50*time.Millisecond).Fetch(context.Background(), srv.URL)
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TimeoutError, got %T (%v)", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should unwrap to context.DeadlineExceeded")
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		t.Error("timeout must not be reported as FetchError")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fetch took %s, deadline not enforced", elapsed)
	}
}

func TestFetch_CallerCancel(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewPageFetcher("", time.Second).Fetch(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		t.Error("caller cancellation reported as timeout")
	}
}

func TestFetch_ContentType(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte(jobPage))
	})

	_, err := NewPageFetcher("", time.Second).Fetch(context.Background(), srv.URL)
	var ce *ContentTypeError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContentTypeError, got %T (%v)", err, err)
	}
	if ce.ContentType != "application/pdf" {
		t.Errorf("content type = %q", ce.ContentType)
	}
}

func TestFetch_EmptyContent(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body></body></html>"))
	})

	_, err := NewPageFetcher("", time.Second).Fetch(context.Background(), srv.URL)
	var ee *EmptyContentError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EmptyContentError, got %T (%v)", err, err)
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewPageFetcher("", time.Second).Fetch(context.Background(), addr)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T (%v)", err, err)
	}
	if fe.Status != 0 {
		t.Errorf("status = %d, want 0", fe.Status)
	}
}

func TestDecodeHTML_Latin1(t *testing.T) {
	body := []byte("<html><head><meta charset=\"iso-8859-1\"></head><body>Caf\xe9 manager</body></html>")
	got := DecodeHTML(body, "text/html")
	if !strings.Contains(got, "Café manager") {
		t.Fatalf("latin-1 body not decoded: %q", got)
	}
}

func TestDecodeHTML_HeaderCharsetWins(t *testing.T) {
	body := []byte("<html><body>Caf\xc3\xa9</body></html>")
	got := DecodeHTML(body, "text/html; charset=utf-8")
	if !strings.Contains(got, "Café") {
		t.Fatalf("utf-8 body mangled: %q", got)
	}
}

func redirectServer(t *testing.T, hit *atomic.Bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := newPageServer(t, mux.ServeHTTP)
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, strings.Replace(srv.URL, "127.0.0.1", "localhost", 1)+"/secret", http.StatusFound)
	})
	mux.HandleFunc("/secret", func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(jobPage))
	})
	return srv
}

func TestFetch_BlockedRedirect(t *testing.T) {
	var hit atomic.Bool
	srv := redirectServer(t, &hit)
	blocked, err := urlutil.NewHostMatcher([]string{"localhost"})
	if err != nil {
		t.Fatalf("NewHostMatcher: %v", err)
	}

	f := NewPageFetcher("", time.Second)
	f.GuardRedirects(blocked)
	_, err = f.Fetch(context.Background(), srv.URL+"/start")
	var invalid *urlutil.InvalidURLError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidURLError, got %T (%v)", err, err)
	}
	if hit.Load() {
		t.Error("blocked redirect target was fetched")
	}
}

func TestFetch_RedirectAllowed(t *testing.T) {
	var hit atomic.Bool
	srv := redirectServer(t, &hit)

	page, err := NewPageFetcher("", time.Second).Fetch(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit.Load() || !strings.HasSuffix(page.URL, "/secret") {
		t.Errorf("redirect not followed: url = %q", page.URL)
	}
}
