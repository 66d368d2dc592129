package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/baxromumarov/upfolio/internal/httpx"
)

const noisyPage = `<html><head><title>Role</title><style>.x{}</style><script>var a = 1;</script></head>
<body>
<header>Site header</header>
<nav>Home | Jobs</nav>
<iframe src="/ad"></iframe>
<noscript>Enable JS</noscript>
<main><h1>Platform Engineer</h1><p>Build   the
platform.</p><p>Ship it.</p></main>
<footer>Copyright</footer>
</body></html>`

func TestSanitize_RemovesNoise(t *testing.T) {
	doc, err := Parse(noisyPage)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	Sanitize(doc)

	for _, sel := range strings.Split(NoiseSelector, ", ") {
		if n := doc.Find(sel).Length(); n != 0 {
			t.Errorf("%s still present (%d)", sel, n)
		}
	}
	got := BodyText(doc)
	want := "Platform Engineer Build the platform. Ship it."
	if got != want {
		t.Errorf("BodyText = %q, want %q", got, want)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	once, _ := Parse(noisyPage)
	Sanitize(once)
	first, err := once.Html()
	if err != nil {
		t.Fatalf("Html: %v", err)
	}

	Sanitize(once)
	second, _ := once.Html()
	if first != second {
		t.Errorf("second Sanitize changed the document:\n%s\n---\n%s", first, second)
	}
}

func TestText_InlineElementsStayJoined(t *testing.T) {
	doc, _ := Parse(`<html><body><p>Acme<b>Corp</b></p><p>Remote</p></body></html>`)
	if got := BodyText(doc); got != "AcmeCorp Remote" {
		t.Errorf("BodyText = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo wörld", 5); got != "héllo" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	if CharCount("héllo") != 5 {
		t.Error("CharCount should count code points")
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML("<p>Senior <b>Go</b> Engineer &amp; Mentor</p>\n\n<ul><li>Remote</li></ul>")
	if !strings.Contains(got, "Go") || strings.Contains(got, "<") {
		t.Errorf("StripHTML left markup: %q", got)
	}
	if !strings.Contains(got, "Engineer & Mentor") {
		t.Errorf("entities not decoded: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}

func TestFindJobPosting(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@type":"Organization","name":"Nope"}</script>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[{"@type":"WebPage"},{
 "@type":"JobPosting","title":"Staff Engineer",
 "hiringOrganization":{"@type":"Organization","name":"Acme"},
 "jobLocation":{"@type":"Place","address":{"addressLocality":"Berlin","addressCountry":"DE"}},
 "description":"<p>Lead the team.</p>"}]}</script>
</head><body></body></html>`
	doc, err := Parse(page)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	job, ok := FindJobPosting(doc.Nodes[0])
	if !ok {
		t.Fatal("expected a JobPosting")
	}
	want := JobPosting{Title: "Staff Engineer", Company: "Acme", Location: "Berlin, DE", Description: "Lead the team."}
	if job != want {
		t.Errorf("got %+v, want %+v", job, want)
	}

	Sanitize(doc)
	if _, ok := FindJobPosting(doc.Nodes[0]); ok {
		t.Error("sanitized document should not expose JSON-LD")
	}
}

func TestFetchPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Fallback</title>
<meta property="og:title" content="Case study: payments">
<meta name="description" content="How we rebuilt payments.">
<meta property="og:site_name" content="Acme Blog">
<script type="application/ld+json">{"@type":"JobPosting","title":"Payments Engineer","hiringOrganization":"Acme"}</script>
</head><body><nav>menu</nav><article>We moved to event sourcing.</article></body></html>`))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := FetchPreview(ctx, httpx.NewCollyFetcher("upfolio-test", time.Second), srv.URL+"/post")
	if err != nil {
		t.Fatalf("FetchPreview: %v", err)
	}
	if p.Title != "Case study: payments" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Description != "How we rebuilt payments." {
		t.Errorf("Description = %q", p.Description)
	}
	if p.SiteName != "Acme Blog" {
		t.Errorf("SiteName = %q", p.SiteName)
	}
	if p.Text != "We moved to event sourcing." {
		t.Errorf("Text = %q", p.Text)
	}
	if p.JobPosting == nil || p.JobPosting.Company != "Acme" {
		t.Errorf("JobPosting = %+v", p.JobPosting)
	}
}

func TestPlainLines(t *testing.T) {
	got := PlainLines("Ada   Lovelace\n\n  ada@example.com \n<b>Skills:</b> Go, SQL\n")
	want := "Ada Lovelace\nada@example.com\nSkills: Go, SQL"
	if got != want {
		t.Errorf("PlainLines = %q, want %q", got, want)
	}

	got = PlainLines("<p>Experience</p>\r\nAcme &amp; Co\r\n\r\n2019 - 2024")
	want = "Experience\nAcme & Co\n2019 - 2024"
	if got != want {
		t.Errorf("PlainLines(crlf) = %q, want %q", got, want)
	}
}
