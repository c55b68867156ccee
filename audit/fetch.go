package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

const (
	psiEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	userAgent   = "SEOAuditBot/1.0"
)

// psiResponse mirrors the parts of the PageSpeed Insights v5 payload the
// extractors read. Everything is optional; the API omits sections freely.
type psiResponse struct {
	LighthouseResult *struct {
		Categories *struct {
			Performance   *psiCategory `json:"performance"`
			SEO           *psiCategory `json:"seo"`
			BestPractices *psiCategory `json:"best-practices"`
			Accessibility *psiCategory `json:"accessibility"`
		} `json:"categories"`
		Audits map[string]psiAudit `json:"audits"`
	} `json:"lighthouseResult"`
	LoadingExperience *struct {
		Metrics map[string]psiMetric `json:"metrics"`
	} `json:"loadingExperience"`
}

type psiCategory struct {
	Score *float64 `json:"score"` // 0-1
}

type psiAudit struct {
	Score        *float64 `json:"score"`
	NumericValue *float64 `json:"numericValue"`
	DisplayValue string   `json:"displayValue"`
}

type psiMetric struct {
	Percentile *float64 `json:"percentile"`
	Category   string   `json:"category"`
}

// Fetcher performs the three outbound operations an audit needs. Every
// fetch absorbs its own failures: a fetch either succeeds or reports
// "unavailable", it never propagates an error.
type Fetcher struct {
	psiClient   *http.Client
	htmlClient  *http.Client
	probeClient *http.Client
	psiURL      string
	psiKey      string
	scheme      string
}

// NewFetcher creates a Fetcher with one tuned client per timeout class.
func NewFetcher() *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  false,
	}

	return &Fetcher{
		psiClient:   &http.Client{Timeout: 60 * time.Second, Transport: transport},
		htmlClient:  &http.Client{Timeout: 15 * time.Second, Transport: transport},
		probeClient: &http.Client{Timeout: 5 * time.Second, Transport: transport},
		psiURL:      psiEndpoint,
		psiKey:      os.Getenv("PSI_API_KEY"),
		scheme:      "https",
	}
}

// FetchPerformanceReport requests a mobile-strategy PageSpeed analysis for
// all four categories. Returns nil on any failure; a missing report is an
// expected state, not an error.
func (f *Fetcher) FetchPerformanceReport(ctx context.Context, pageURL string) *psiResponse {
	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("strategy", "mobile")
	for _, c := range []string{"PERFORMANCE", "SEO", "BEST_PRACTICES", "ACCESSIBILITY"} {
		params.Add("category", c)
	}
	if f.psiKey != "" {
		params.Set("key", f.psiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.psiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := f.psiClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	var psi psiResponse
	if err := json.NewDecoder(resp.Body).Decode(&psi); err != nil {
		return nil
	}
	return &psi
}

// FetchHTML GETs the page with the audit user-agent, following redirects.
// Returns the raw document, or "" when the page could not be retrieved.
func (f *Fetcher) FetchHTML(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.htmlClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(body)
}

// CheckResourceExists issues a HEAD request and reports whether the
// resource resolved to a success status. Any error counts as absent.
func (f *Fetcher) CheckResourceExists(ctx context.Context, resourceURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, resourceURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// AnalyzeTechnical probes the domain's well-known resources. The two
// probes run concurrently; https is always true because the audit only
// ever fetches over https.
func (f *Fetcher) AnalyzeTechnical(ctx context.Context, domain string) Technical {
	baseURL := f.scheme + "://" + domain

	var robotsTxt, sitemap bool
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		robotsTxt = f.CheckResourceExists(ctx, baseURL+"/robots.txt")
	}()
	go func() {
		defer wg.Done()
		sitemap = f.CheckResourceExists(ctx, baseURL+"/sitemap.xml")
	}()
	wg.Wait()

	return Technical{
		HTTPS:     true,
		RobotsTxt: robotsTxt,
		Sitemap:   sitemap,
	}
}
