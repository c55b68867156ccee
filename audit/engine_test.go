package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const fixturePage = `<html><head>
	<title>A perfectly reasonable page title here</title>
	<meta name="description" content="` + "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. Ut enim ad minim veniam." + `">
	<meta property="og:title" content="t">
	<meta property="og:description" content="d">
	<meta property="og:image" content="i.png">
	<link rel="canonical" href="https://example.com/">
	<meta name="robots" content="index, follow">
	<meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
	<h1>Welcome</h1>
	<h2>Section</h2>
	<img src="hero.png" alt="hero image">
	<a href="/about">about</a>
	<a href="https://other.com">elsewhere</a>
</body></html>`

const fixturePSI = `{
	"lighthouseResult": {
		"categories": {
			"performance": {"score": 0.45},
			"seo": {"score": 0.92},
			"best-practices": {"score": 0.80},
			"accessibility": {"score": 0.65}
		},
		"audits": {
			"largest-contentful-paint": {"numericValue": 3200},
			"max-potential-fid": {"numericValue": 150},
			"cumulative-layout-shift": {"numericValue": 0.31}
		}
	},
	"loadingExperience": {
		"metrics": {
			"LARGEST_CONTENTFUL_PAINT_MS": {"percentile": 2100},
			"FIRST_INPUT_DELAY_MS": {"percentile": 80},
			"CUMULATIVE_LAYOUT_SHIFT_SCORE": {"percentile": 12}
		}
	}
}`

// testEngine builds an Engine whose fetches go to plain-http test servers.
func testEngine(psiURL string) *Engine {
	fetcher := NewFetcher()
	fetcher.scheme = "http"
	fetcher.psiURL = psiURL
	fetcher.psiKey = ""
	return &Engine{fetcher: fetcher}
}

// newSiteServer serves the fixture page plus optional well-known resources.
func newSiteServer(t *testing.T, pageStatus int, robots, sitemap bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		if !robots {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		if !sitemap {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if pageStatus != http.StatusOK {
			w.WriteHeader(pageStatus)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(fixturePage))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newPSIServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("strategy"); got != "mobile" {
			t.Errorf("Expected mobile strategy, got %q", got)
		}
		if got := r.URL.Query()["category"]; len(got) != 4 {
			t.Errorf("Expected 4 category params, got %v", got)
		}
		w.WriteHeader(status)
		if body != "" {
			w.Write([]byte(body))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunFullAudit(t *testing.T) {
	site := newSiteServer(t, http.StatusOK, true, true)
	psi := newPSIServer(t, http.StatusOK, fixturePSI)

	engine := testEngine(psi.URL)
	domain := strings.TrimPrefix(site.URL, "http://")

	result := engine.Run(context.Background(), domain)

	if result.PagesCrawled != 1 {
		t.Errorf("Expected pagesCrawled 1, got %d", result.PagesCrawled)
	}
	if !result.Results.PsiAvailable {
		t.Errorf("Expected PSI data to be available")
	}

	lighthouse := result.Results.Lighthouse
	if lighthouse.Performance != 45 || lighthouse.SEO != 92 || lighthouse.BestPractices != 80 || lighthouse.Accessibility != 65 {
		t.Errorf("Unexpected lighthouse block: %+v", lighthouse)
	}

	vitals := result.Results.CoreWebVitals
	if vitals.LCP != 2100 || vitals.LCPRating != RatingGood {
		t.Errorf("Expected LCP 2100 (good), got %d (%s)", vitals.LCP, vitals.LCPRating)
	}
	if vitals.CLS != 0.12 || vitals.CLSRating != RatingNeedsImprovement {
		t.Errorf("Expected CLS 0.12 (needs-improvement), got %v (%s)", vitals.CLS, vitals.CLSRating)
	}

	// Perf 45 -> critical, accessibility 65 -> medium; everything else clean
	want := []string{"Very poor performance score", "Accessibility issues detected"}
	got := issueTitles(result.Results.Issues)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Expected issues %v, got %v", want, got)
	}
	if result.IssuesCount != 2 {
		t.Errorf("Expected issuesCount 2, got %d", result.IssuesCount)
	}

	// 92*.30 + 45*.20 + 80*.10 + 65*.10 + 100*.15 + 100*.10 + 100*.05 = 81.1
	if result.Score != 81 {
		t.Errorf("Expected overall score 81, got %d", result.Score)
	}

	if len(result.Recommendations) != len(result.Results.Issues) {
		t.Fatalf("Expected one recommendation per issue")
	}
	for i, rec := range result.Recommendations {
		issue := result.Results.Issues[i]
		if rec.Type != issue.Type || rec.Priority != issue.Priority || rec.Title != issue.Title || rec.Description != issue.Description {
			t.Errorf("Recommendation %d does not mirror its issue", i)
		}
	}

	if result.Results.URL != "http://"+domain {
		t.Errorf("Unexpected audited URL %q", result.Results.URL)
	}
	if _, err := time.Parse(time.RFC3339, result.Results.AnalyzedAt); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %q", result.Results.AnalyzedAt)
	}
}

func TestRunDegradedAudit(t *testing.T) {
	// Page and PSI both unreachable, but robots.txt and sitemap.xml exist.
	site := newSiteServer(t, http.StatusInternalServerError, true, true)
	psi := newPSIServer(t, http.StatusTooManyRequests, "")

	engine := testEngine(psi.URL)
	domain := strings.TrimPrefix(site.URL, "http://")

	result := engine.Run(context.Background(), domain)

	if result.Results.PsiAvailable {
		t.Errorf("Expected PSI data unavailable")
	}
	if result.Results.Lighthouse.Performance != 0 || result.Results.Lighthouse.SEO != 0 {
		t.Errorf("Expected zeroed lighthouse block, got %+v", result.Results.Lighthouse)
	}

	if result.Results.MetaTags.Title.Exists || result.Results.ContentStructure.H1Count != 0 {
		t.Errorf("Expected empty fact bundles for unreachable page")
	}
	if !result.Results.Technical.RobotsTxt || !result.Results.Technical.Sitemap || !result.Results.Technical.HTTPS {
		t.Errorf("Expected all technical checks to pass, got %+v", result.Results.Technical)
	}

	got := issueTitles(result.Results.Issues)
	for _, title := range []string{
		"Missing page title",
		"Missing meta description",
		"Missing canonical URL",
		"Missing viewport meta tag",
		"Missing H1 heading",
	} {
		if !hasIssue(result.Results.Issues, title) {
			t.Errorf("Expected issue %q, got %v", title, got)
		}
	}
	for _, title := range []string{
		"Missing robots.txt",
		"Missing XML sitemap",
		"Very poor performance score",
		"Performance needs improvement",
		"Lighthouse SEO score below threshold",
		"Accessibility issues detected",
	} {
		if hasIssue(result.Results.Issues, title) {
			t.Errorf("Did not expect issue %q", title)
		}
	}

	// meta 1/8=13, content 1/4=25, technical 3/3=100, reweighted over 0.30:
	// round((13*.15 + 25*.10 + 100*.05) / 0.30) = round(31.5) = 32
	if result.Score != 32 {
		t.Errorf("Expected overall score 32, got %d", result.Score)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	site := newSiteServer(t, http.StatusOK, true, false)
	psi := newPSIServer(t, http.StatusOK, fixturePSI)

	engine := testEngine(psi.URL)
	domain := strings.TrimPrefix(site.URL, "http://")

	first := engine.Run(context.Background(), domain)
	second := engine.Run(context.Background(), domain)

	// The timestamp is the only field allowed to differ
	first.Results.AnalyzedAt = ""
	second.Results.AnalyzedAt = ""

	if first.Score != second.Score {
		t.Errorf("Expected identical scores, got %d and %d", first.Score, second.Score)
	}
	if len(first.Results.Issues) != len(second.Results.Issues) {
		t.Fatalf("Expected identical issue lists")
	}
	for i := range first.Results.Issues {
		if first.Results.Issues[i] != second.Results.Issues[i] {
			t.Errorf("Issue %d differs between runs", i)
		}
	}
	if first.Results.MetaTags.Title.Length != second.Results.MetaTags.Title.Length {
		t.Errorf("Expected identical meta facts")
	}
}

func TestRunRecordsOutcome(t *testing.T) {
	site := newSiteServer(t, http.StatusOK, true, true)
	psi := newPSIServer(t, http.StatusOK, fixturePSI)

	engine, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Shutdown()
	engine.fetcher.scheme = "http"
	engine.fetcher.psiURL = psi.URL
	engine.fetcher.psiKey = ""

	engine.Run(context.Background(), strings.TrimPrefix(site.URL, "http://"))

	stats := engine.Stats().GetCurrentStats()
	if stats.AuditsRun != 1 {
		t.Errorf("Expected 1 audit recorded, got %d", stats.AuditsRun)
	}
	if stats.PsiAvailable != 1 {
		t.Errorf("Expected PSI availability recorded, got %+v", stats)
	}
	if stats.PageFetchFailures != 0 {
		t.Errorf("Expected no fetch failures, got %d", stats.PageFetchFailures)
	}
}
