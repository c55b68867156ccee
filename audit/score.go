package audit

import (
	"math"
	"strings"
)

// ComputeMetaTagsScore scores the head of the document against an
// 8-point checklist.
func ComputeMetaTagsScore(meta MetaTags) int {
	score := 0
	const total = 8
	if meta.Title.Exists {
		score++
	}
	if meta.Title.Optimal {
		score++
	}
	if meta.Description.Exists {
		score++
	}
	if meta.Description.Optimal {
		score++
	}
	if meta.OGTitle && meta.OGDescription && meta.OGImage {
		score++
	}
	if meta.Canonical {
		score++
	}
	if meta.Viewport {
		score++
	}
	if meta.Robots == nil || !strings.Contains(*meta.Robots, "noindex") {
		score++
	}
	return int(math.Round(float64(score) / total * 100))
}

// ComputeContentScore scores the body structure against a 4-point checklist.
func ComputeContentScore(content ContentStructure) int {
	score := 0
	const total = 4
	if content.H1Count == 1 {
		score++
	}
	if content.HeadingHierarchyValid {
		score++
	}
	if content.TotalImages == 0 || content.ImagesMissingAlt == 0 {
		score++
	}
	if content.InternalLinks > 0 {
		score++
	}
	return int(math.Round(float64(score) / total * 100))
}

// ComputeTechnicalScore scores site infrastructure against a 3-point
// checklist.
func ComputeTechnicalScore(tech Technical) int {
	score := 0
	const total = 3
	if tech.HTTPS {
		score++
	}
	if tech.RobotsTxt {
		score++
	}
	if tech.Sitemap {
		score++
	}
	return int(math.Round(float64(score) / total * 100))
}

// ComputeOverallScore blends the lighthouse categories with the crawl-based
// sub-scores. Unavailable lighthouse components drop their weight from both
// sides of the average, so a run without PSI data is scored fairly on the
// remaining components rescaled to 100%.
func ComputeOverallScore(scores LighthouseScores, metaScore, contentScore, techScore int) int {
	totalWeight := 0.0
	weightedSum := 0.0

	if scores.SEO != nil {
		weightedSum += float64(*scores.SEO) * 0.30
		totalWeight += 0.30
	}
	if scores.Performance != nil {
		weightedSum += float64(*scores.Performance) * 0.20
		totalWeight += 0.20
	}
	if scores.BestPractices != nil {
		weightedSum += float64(*scores.BestPractices) * 0.10
		totalWeight += 0.10
	}
	if scores.Accessibility != nil {
		weightedSum += float64(*scores.Accessibility) * 0.10
		totalWeight += 0.10
	}

	// Crawl-based components are always available.
	weightedSum += float64(metaScore) * 0.15
	totalWeight += 0.15
	weightedSum += float64(contentScore) * 0.10
	totalWeight += 0.10
	weightedSum += float64(techScore) * 0.05
	totalWeight += 0.05

	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(weightedSum / totalWeight))
}
