package ai

import (
	"context"
	"strings"
	"testing"
)

func TestMockExtractJobInfo(t *testing.T) {
	m := NewMockClient()
	tests := []struct {
		text string
		want JobInfo
	}{
		{"Senior Go Engineer at Acme\nWe build things.", JobInfo{Title: "Senior Go Engineer", Company: "Acme"}},
		{"\n  Data Scientist | Globex  \nMore text", JobInfo{Title: "Data Scientist", Company: "Globex"}},
		{"We are looking for a passionate person to join our growing team today", JobInfo{Title: "We are looking for a passionate person to"}},
	}
	for _, tt := range tests {
		got, err := m.ExtractJobInfo(context.Background(), tt.text)
		if err != nil {
			t.Fatalf("ExtractJobInfo: %v", err)
		}
		if got != tt.want {
			t.Errorf("ExtractJobInfo(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestMockScoreFit(t *testing.T) {
	m := NewMockClient()
	report, err := m.ScoreFit(context.Background(), ResumeData{Skills: []string{"Go", "Rust"}}, JobPosting{Description: "We use Go everywhere"})
	if err != nil {
		t.Fatalf("ScoreFit: %v", err)
	}
	if report.Score != 70 {
		t.Errorf("score = %d, want 70", report.Score)
	}
	if len(report.Strengths) != 1 || report.Strengths[0] != "Go" {
		t.Errorf("strengths = %v", report.Strengths)
	}
}

func TestMockParseResume(t *testing.T) {
	text := "Grace Hopper\ngrace@navy.mil\nSkills: COBOL, compilers , leadership\n"
	data, err := NewMockClient().ParseResume(context.Background(), text)
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if data.Name != "Grace Hopper" || data.Email != "grace@navy.mil" {
		t.Errorf("got %+v", data)
	}
	if strings.Join(data.Skills, "|") != "COBOL|compilers|leadership" {
		t.Errorf("skills = %v", data.Skills)
	}
}
