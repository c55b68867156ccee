package audit

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLighthouseScores converts the 0-1 category scores to 0-100
// integers. A missing report (or missing category block) yields all nil:
// nil means "unknown" and must never collapse into zero.
func ExtractLighthouseScores(psi *psiResponse) LighthouseScores {
	if psi == nil || psi.LighthouseResult == nil || psi.LighthouseResult.Categories == nil {
		return LighthouseScores{}
	}
	cats := psi.LighthouseResult.Categories

	toScore := func(c *psiCategory) *int {
		if c == nil || c.Score == nil {
			return nil
		}
		s := int(math.Round(*c.Score * 100))
		return &s
	}

	return LighthouseScores{
		Performance:   toScore(cats.Performance),
		SEO:           toScore(cats.SEO),
		BestPractices: toScore(cats.BestPractices),
		Accessibility: toScore(cats.Accessibility),
	}
}

// rateMetric buckets a metric value against the good/poor thresholds.
func rateMetric(value, good, poor float64, lowerIsBetter bool) WebVitalRating {
	if lowerIsBetter {
		if value <= good {
			return RatingGood
		}
		if value <= poor {
			return RatingNeedsImprovement
		}
		return RatingPoor
	}
	if value >= good {
		return RatingGood
	}
	if value >= poor {
		return RatingNeedsImprovement
	}
	return RatingPoor
}

// ExtractCoreWebVitals reads LCP, FID and CLS from the report, preferring
// field (percentile) data and falling back to lab metrics. Always returns a
// fully populated value; with no report everything defaults to 0, which
// rates "good" trivially.
//
// CLS keeps the original fallback chain: a percentile-derived value of zero
// falls through to the lab metric.
func ExtractCoreWebVitals(psi *psiResponse) CoreWebVitals {
	var metrics map[string]psiMetric
	var audits map[string]psiAudit
	if psi != nil {
		if psi.LoadingExperience != nil {
			metrics = psi.LoadingExperience.Metrics
		}
		if psi.LighthouseResult != nil {
			audits = psi.LighthouseResult.Audits
		}
	}

	labValue := func(name string) (float64, bool) {
		if a, ok := audits[name]; ok && a.NumericValue != nil {
			return *a.NumericValue, true
		}
		return 0, false
	}

	lcp := 0.0
	if m, ok := metrics["LARGEST_CONTENTFUL_PAINT_MS"]; ok && m.Percentile != nil {
		lcp = *m.Percentile
	} else if v, ok := labValue("largest-contentful-paint"); ok {
		lcp = v
	}

	fid := 0.0
	if m, ok := metrics["FIRST_INPUT_DELAY_MS"]; ok && m.Percentile != nil {
		fid = *m.Percentile
	} else if v, ok := labValue("max-potential-fid"); ok {
		fid = v
	}

	cls := 0.0
	if m, ok := metrics["CUMULATIVE_LAYOUT_SHIFT_SCORE"]; ok && m.Percentile != nil {
		cls = *m.Percentile / 100
	}
	if cls == 0 {
		if v, ok := labValue("cumulative-layout-shift"); ok {
			cls = v
		}
	}

	return CoreWebVitals{
		LCP:       int(math.Round(lcp)),
		FID:       int(math.Round(fid)),
		CLS:       math.Round(cls*1000) / 1000,
		LCPRating: rateMetric(lcp, 2500, 4000, true),
		FIDRating: rateMetric(fid, 100, 300, true),
		CLSRating: rateMetric(cls, 0.1, 0.25, true),
	}
}

// AnalyzeMetaTags inspects the document head. A nil document yields the
// "nothing present" bundle so downstream scoring never special-cases a
// failed page fetch.
func AnalyzeMetaTags(doc *goquery.Document, domain string) MetaTags {
	if doc == nil {
		return MetaTags{}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	titleCheck := MetaTagCheck{
		Exists:  len(title) > 0,
		Length:  len(title),
		Optimal: len(title) >= 30 && len(title) <= 60,
	}
	if title != "" {
		titleCheck.Value = &title
	}

	descCheck := MetaTagCheck{}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		desc = strings.TrimSpace(desc)
		descCheck.Exists = len(desc) > 0
		descCheck.Value = &desc
		descCheck.Length = len(desc)
		descCheck.Optimal = len(desc) >= 120 && len(desc) <= 160
	}

	tags := MetaTags{
		Title:         titleCheck,
		Description:   descCheck,
		OGTitle:       doc.Find(`meta[property="og:title"]`).Length() > 0,
		OGDescription: doc.Find(`meta[property="og:description"]`).Length() > 0,
		OGImage:       doc.Find(`meta[property="og:image"]`).Length() > 0,
		Canonical:     doc.Find(`link[rel="canonical"]`).Length() > 0,
		Viewport:      doc.Find(`meta[name="viewport"]`).Length() > 0,
	}
	if robots, ok := doc.Find(`meta[name="robots"]`).Attr("content"); ok {
		tags.Robots = &robots
	}
	return tags
}

// AnalyzeContentStructure computes heading, image and link facts. A nil
// document yields the all-zero bundle, with the hierarchy reported invalid
// since no headings were seen at all.
func AnalyzeContentStructure(doc *goquery.Document, domain string) ContentStructure {
	if doc == nil {
		return ContentStructure{}
	}

	content := ContentStructure{
		H1Count:               doc.Find("h1").Length(),
		HeadingHierarchyValid: true,
	}

	// A heading may sit any number of levels above its predecessor, but
	// never skip more than one level downward into the page.
	prevLevel := 0
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level, err := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(s), "h"))
		if err != nil {
			return
		}
		if prevLevel != 0 && level-prevLevel > 1 {
			content.HeadingHierarchyValid = false
		}
		prevLevel = level
	})

	images := doc.Find("img")
	content.TotalImages = images.Length()
	images.Each(func(_ int, s *goquery.Selection) {
		alt, ok := s.Attr("alt")
		if !ok || strings.TrimSpace(alt) == "" {
			content.ImagesMissingAlt++
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		switch {
		case strings.HasPrefix(href, "/"), strings.HasPrefix(href, "#"), strings.Contains(href, domain):
			content.InternalLinks++
		case strings.HasPrefix(href, "http"):
			content.ExternalLinks++
		}
	})

	return content
}
