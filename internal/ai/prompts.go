package ai

import (
	"embed"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Prompt templates, parsed once at package init.
var (
	extractJobInfoTemplate    = mustPrompt("extract_job_info.tmpl")
	scoreFitTemplate          = mustPrompt("score_fit.tmpl")
	generateDocumentsTemplate = mustPrompt("generate_documents.tmpl")
	parseResumeTemplate       = mustPrompt("parse_resume.tmpl")
	chatTemplate              = mustPrompt("chat.tmpl")
)

func mustPrompt(name string) *template.Template {
	return template.Must(template.New(name).ParseFS(promptFS, "prompts/"+name))
}
