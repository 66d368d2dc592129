package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/baxromumarov/upfolio/internal/config"
	"github.com/baxromumarov/upfolio/internal/scraper"
)

func TestLockPath(t *testing.T) {
	tmpLock := filepath.Join(os.TempDir(), "upfolio-migrate.lock")
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@localhost/upfolio", tmpLock},
		{"postgresql://localhost/upfolio", tmpLock},
		{"sqlite:/var/lib/upfolio/app.db", "/var/lib/upfolio/app.db.migrate.lock"},
		{"file:data/app.db?_pragma=busy_timeout(1000)", "data/app.db.migrate.lock"},
		{"local.db", "local.db.migrate.lock"},
		{"sqlite::memory:", tmpLock},
	}
	for _, tt := range tests {
		if got := lockPath(tt.dsn); got != tt.want {
			t.Errorf("lockPath(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestRenderResult(t *testing.T) {
	out := renderResult(scraper.Result{
		Job:    scraper.ScrapedJob{Title: "Site Reliability Engineer", Company: "Acme", Description: strings.Repeat("word ", 200)},
		Method: "greenhouse",
		URL:    "https://boards.greenhouse.io/acme/jobs/1",
	})
	for _, want := range []string{"Site Reliability Engineer", "Acme", "greenhouse", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, scraper.Result{Job: scraper.ScrapedJob{Title: "T"}, Method: "ai", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"method": "ai"`) || !strings.Contains(buf.String(), `"title": "T"`) {
		t.Errorf("json = %s", buf.String())
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "upfolioctl dev\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestSecretsCommands(t *testing.T) {
	keyring.MockInit()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("sk-test-123\n"))
	rootCmd.SetArgs([]string{"secrets", "set-ai-key", "OpenAI"})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("set-ai-key: %v", err)
	}
	if key, err := config.GetAIKey("openai"); err != nil || key != "sk-test-123" {
		t.Fatalf("GetAIKey = %q, %v", key, err)
	}

	rootCmd.SetArgs([]string{"secrets", "delete-ai-key", "openai"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("delete-ai-key: %v", err)
	}
	if _, err := config.GetAIKey("openai"); err == nil {
		t.Error("key still present after delete")
	}

	rootCmd.SetArgs([]string{"secrets", "set-ai-key", "skynet"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("unknown provider accepted")
	}
}
