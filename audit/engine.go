package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/seo-audit/backend/stats"
)

// Engine runs single-page SEO audits. It holds no per-run state: every call
// to Run is an independent computation over the network inputs, so one
// Engine may serve any number of concurrent callers.
type Engine struct {
	fetcher *Fetcher
	stats   *stats.Storage
}

// New creates an Engine backed by outcome counters stored under dataDir.
func New(dataDir string) (*Engine, error) {
	storage, err := stats.NewStorage(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stats storage: %w", err)
	}
	return &Engine{
		fetcher: NewFetcher(),
		stats:   storage,
	}, nil
}

// Run audits a single domain's homepage and always produces a complete
// result. Unavailable upstream data degrades the output (nil lighthouse
// scores, empty fact bundles, a lower overall score) but never fails the
// run.
func (e *Engine) Run(ctx context.Context, domain string) *EngineResult {
	pageURL := e.fetcher.scheme + "://" + domain

	// The performance report, the page itself and the two well-known
	// resource probes are independent; fetch them all at once.
	var (
		psi       *psiResponse
		html      string
		technical Technical
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		psi = e.fetcher.FetchPerformanceReport(ctx, pageURL)
	}()
	go func() {
		defer wg.Done()
		html = e.fetcher.FetchHTML(ctx, pageURL)
	}()
	go func() {
		defer wg.Done()
		technical = e.fetcher.AnalyzeTechnical(ctx, domain)
	}()
	wg.Wait()

	scores := ExtractLighthouseScores(psi)
	vitals := ExtractCoreWebVitals(psi)

	var doc *goquery.Document
	if html != "" {
		if parsed, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			doc = parsed
		}
	}
	meta := AnalyzeMetaTags(doc, domain)
	content := AnalyzeContentStructure(doc, domain)

	issues := GenerateIssues(scores, meta, content, technical, vitals)

	metaScore := ComputeMetaTagsScore(meta)
	contentScore := ComputeContentScore(content)
	techScore := ComputeTechnicalScore(technical)
	overall := ComputeOverallScore(scores, metaScore, contentScore, techScore)

	psiAvailable := scores.Performance != nil
	if e.stats != nil {
		e.stats.RecordAudit(psiAvailable, doc != nil)
	}

	results := Results{
		Lighthouse: LighthouseBlock{
			Performance:   valueOrZero(scores.Performance),
			SEO:           valueOrZero(scores.SEO),
			BestPractices: valueOrZero(scores.BestPractices),
			Accessibility: valueOrZero(scores.Accessibility),
		},
		PsiAvailable:     psiAvailable,
		CoreWebVitals:    vitals,
		MetaTags:         meta,
		ContentStructure: content,
		Technical:        technical,
		Issues:           issues,
		URL:              pageURL,
		AnalyzedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	recommendations := make([]Recommendation, 0, len(issues))
	for _, issue := range issues {
		recommendations = append(recommendations, Recommendation{
			Type:        issue.Type,
			Priority:    issue.Priority,
			Title:       issue.Title,
			Description: issue.Description,
		})
	}

	return &EngineResult{
		Score:           overall,
		IssuesCount:     len(issues),
		PagesCrawled:    1, // homepage only
		Results:         results,
		Recommendations: recommendations,
	}
}

func valueOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

// Stats returns the outcome counter storage.
func (e *Engine) Stats() *stats.Storage {
	return e.stats
}

// Shutdown flushes the outcome counters to disk.
func (e *Engine) Shutdown() error {
	if e == nil || e.stats == nil {
		return nil
	}
	if err := e.stats.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown stats storage: %w", err)
	}
	return nil
}
