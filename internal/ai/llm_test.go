package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCompleter struct {
	reply string
	err   error
	last  Request
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, req Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

var testResume = ResumeData{
	Name:     "Ada Lovelace",
	Headline: "Backend engineer",
	Skills:   []string{"Go", "PostgreSQL", "Kubernetes"},
	Experience: []Experience{
		{Company: "Analytical Engines", Role: "Engineer", Start: "2019", End: "Present", Highlights: []string{"Built the scheduler"}},
	},
}

func TestExtractJobInfo_ParsesFencedJSON(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"title\": \" Staff Engineer \", \"company\": \"Acme\"}\n```"}
	client := NewLLMClient(fc, nil)

	info, err := client.ExtractJobInfo(context.Background(), "We are hiring a Staff Engineer at Acme.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Title != "Staff Engineer" || info.Company != "Acme" {
		t.Errorf("got %+v", info)
	}
	if !fc.last.JSON {
		t.Error("expected JSON mode")
	}
	if !strings.Contains(fc.last.Prompt, "We are hiring a Staff Engineer at Acme.") {
		t.Error("posting text missing from prompt")
	}
}

func TestExtractJobInfo_Errors(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("quota exceeded")}
	if _, err := NewLLMClient(fc, nil).ExtractJobInfo(context.Background(), "text"); err == nil {
		t.Fatal("expected completer error")
	}

	fc = &fakeCompleter{reply: "not json"}
	if _, err := NewLLMClient(fc, nil).ExtractJobInfo(context.Background(), "text"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestScoreFit_ClampsAndRounds(t *testing.T) {
	tests := []struct {
		reply string
		want  int
	}{
		{`{"score": 87.6, "summary": "Strong", "strengths": ["Go"], "gaps": []}`, 88},
		{`{"score": 140}`, 100},
		{`{"score": -3}`, 0},
	}
	for _, tt := range tests {
		fc := &fakeCompleter{reply: tt.reply}
		report, err := NewLLMClient(fc, nil).ScoreFit(context.Background(), testResume, JobPosting{Title: "Go Engineer", Description: "Go and PostgreSQL"})
		if err != nil {
			t.Fatalf("ScoreFit(%s): %v", tt.reply, err)
		}
		if report.Score != tt.want {
			t.Errorf("ScoreFit(%s) score = %d, want %d", tt.reply, report.Score, tt.want)
		}
	}
}

func TestScoreFit_PromptIncludesResume(t *testing.T) {
	fc := &fakeCompleter{reply: `{"score": 70}`}
	_, err := NewLLMClient(fc, nil).ScoreFit(context.Background(), testResume, JobPosting{Title: "Go Engineer", Company: "Acme", Description: "Build APIs"})
	if err != nil {
		t.Fatalf("ScoreFit: %v", err)
	}
	for _, want := range []string{"Ada Lovelace", "Go, PostgreSQL, Kubernetes", "Engineer at Analytical Engines", "Go Engineer at Acme", "Build APIs"} {
		if !strings.Contains(fc.last.Prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, fc.last.Prompt)
		}
	}
}

func TestGenerateDocuments_RespectsOptions(t *testing.T) {
	fc := &fakeCompleter{reply: `{"tailored_resume": "# Ada", "cover_letter": "Dear team"}`}
	client := NewLLMClient(fc, nil)

	docs, err := client.GenerateDocuments(context.Background(), testResume, JobPosting{Title: "Go Engineer"}, DocumentOptions{CoverLetter: true})
	if err != nil {
		t.Fatalf("GenerateDocuments: %v", err)
	}
	if docs.TailoredResume != "" {
		t.Error("tailored résumé returned although not requested")
	}
	if docs.CoverLetter != "Dear team" {
		t.Errorf("cover letter = %q", docs.CoverLetter)
	}

	fc.calls = 0
	if _, err := client.GenerateDocuments(context.Background(), testResume, JobPosting{}, DocumentOptions{}); err != nil {
		t.Fatalf("GenerateDocuments(no options): %v", err)
	}
	if fc.calls != 0 {
		t.Error("completer called with nothing to generate")
	}
}

func TestChat_RendersHistoryAndLinks(t *testing.T) {
	fc := &fakeCompleter{reply: "  Ada has five years of Go.  "}
	reply, err := NewLLMClient(fc, nil).Chat(context.Background(), ChatRequest{
		OwnerName: "Ada",
		Resume:    testResume,
		History:   []ChatMessage{{Role: "user", Content: "Hi"}, {Role: "assistant", Content: "Hello!"}},
		Message:   "How much Go experience?",
		Links:     []LinkContext{{URL: "https://example.com/job", Title: "Go role", Summary: "Payments team"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Ada has five years of Go." {
		t.Errorf("reply = %q", reply)
	}
	for _, want := range []string{"user: Hi", "assistant: Hello!", "Visitor: How much Go experience?", "https://example.com/job (Go role): Payments team"} {
		if !strings.Contains(fc.last.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if fc.last.JSON {
		t.Error("chat must not request JSON mode")
	}
}

func TestNewClient_FallsBackToMock(t *testing.T) {
	tests := []Config{
		{},
		{Provider: "mock"},
		{Provider: "gemini"},
		{Provider: "something-else", APIKey: "k"},
	}
	for _, cfg := range tests {
		if _, ok := NewClient(cfg, nil).(*MockClient); !ok {
			t.Errorf("NewClient(%+v) should be the mock client", cfg)
		}
	}
	if _, ok := NewClient(Config{Provider: "openai", APIKey: "k"}, nil).(*LLMClient); !ok {
		t.Error("openai with key should build an LLM client")
	}
}
