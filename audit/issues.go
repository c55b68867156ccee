package audit

import (
	"fmt"
	"math"
	"strings"
)

// GenerateIssues walks a fixed, ordered rule table over the extracted facts
// and appends one finding per rule that fires. Output order is the rule
// order; overlapping findings are allowed. Lighthouse-based rules are
// skipped entirely when their score is unavailable.
func GenerateIssues(scores LighthouseScores, meta MetaTags, content ContentStructure, technical Technical, vitals CoreWebVitals) []Issue {
	var issues []Issue

	// Lighthouse-based rules (only when PSI data is available)
	if scores.Performance != nil && *scores.Performance < 50 {
		issues = append(issues, Issue{
			Type:        IssuePerformance,
			Priority:    PriorityCritical,
			Title:       "Very poor performance score",
			Description: fmt.Sprintf("Page performance score is %d/100. Optimize images, reduce JavaScript, and leverage browser caching.", *scores.Performance),
		})
	} else if scores.Performance != nil && *scores.Performance < 75 {
		issues = append(issues, Issue{
			Type:        IssuePerformance,
			Priority:    PriorityHigh,
			Title:       "Performance needs improvement",
			Description: fmt.Sprintf("Page performance score is %d/100. Consider optimizing render-blocking resources and image sizes.", *scores.Performance),
		})
	}

	if scores.SEO != nil && *scores.SEO < 80 {
		priority := PriorityHigh
		if *scores.SEO < 50 {
			priority = PriorityCritical
		}
		issues = append(issues, Issue{
			Type:        IssueOnPage,
			Priority:    priority,
			Title:       "Lighthouse SEO score below threshold",
			Description: fmt.Sprintf("Lighthouse SEO score is %d/100. Review meta tags, structured data, and crawlability.", *scores.SEO),
		})
	}

	if scores.Accessibility != nil && *scores.Accessibility < 70 {
		issues = append(issues, Issue{
			Type:        IssueTechnical,
			Priority:    PriorityMedium,
			Title:       "Accessibility issues detected",
			Description: fmt.Sprintf("Accessibility score is %d/100. Improve ARIA labels, colour contrast, and keyboard navigation.", *scores.Accessibility),
		})
	}

	// Core Web Vitals
	if vitals.LCPRating == RatingPoor {
		issues = append(issues, Issue{
			Type:        IssuePerformance,
			Priority:    PriorityCritical,
			Title:       "Largest Contentful Paint (LCP) is poor",
			Description: fmt.Sprintf("LCP is %.1fs (should be under 2.5s). Optimize the largest visible element loading time.", float64(vitals.LCP)/1000),
		})
	} else if vitals.LCPRating == RatingNeedsImprovement {
		issues = append(issues, Issue{
			Type:        IssuePerformance,
			Priority:    PriorityHigh,
			Title:       "Largest Contentful Paint (LCP) needs improvement",
			Description: fmt.Sprintf("LCP is %.1fs. Target under 2.5s for a good user experience.", float64(vitals.LCP)/1000),
		})
	}

	if vitals.CLSRating == RatingPoor {
		issues = append(issues, Issue{
			Type:        IssuePerformance,
			Priority:    PriorityHigh,
			Title:       "Cumulative Layout Shift (CLS) is poor",
			Description: fmt.Sprintf("CLS is %v. Add explicit dimensions to images and ads to prevent layout shifts.", vitals.CLS),
		})
	}

	// Meta tags
	if !meta.Title.Exists {
		issues = append(issues, Issue{Type: IssueOnPage, Priority: PriorityCritical, Title: "Missing page title", Description: "The page has no <title> tag. Add a unique, descriptive title (30-60 characters)."})
	} else if !meta.Title.Optimal {
		issues = append(issues, Issue{Type: IssueOnPage, Priority: PriorityMedium, Title: "Page title length not optimal", Description: fmt.Sprintf("Title is %d characters. Optimal length is 30-60 characters.", meta.Title.Length)})
	}

	if !meta.Description.Exists {
		issues = append(issues, Issue{Type: IssueOnPage, Priority: PriorityCritical, Title: "Missing meta description", Description: "The page has no meta description. Add a compelling description (120-160 characters) to improve CTR."})
	} else if !meta.Description.Optimal {
		issues = append(issues, Issue{Type: IssueOnPage, Priority: PriorityMedium, Title: "Meta description length not optimal", Description: fmt.Sprintf("Description is %d characters. Optimal length is 120-160 characters.", meta.Description.Length)})
	}

	if !meta.OGTitle || !meta.OGDescription || !meta.OGImage {
		var missing []string
		if !meta.OGTitle {
			missing = append(missing, "og:title")
		}
		if !meta.OGDescription {
			missing = append(missing, "og:description")
		}
		if !meta.OGImage {
			missing = append(missing, "og:image")
		}
		issues = append(issues, Issue{Type: IssueOnPage, Priority: PriorityMedium, Title: "Missing Open Graph tags", Description: fmt.Sprintf("Missing: %s. Add OG tags for better social media sharing.", strings.Join(missing, ", "))})
	}

	if !meta.Canonical {
		issues = append(issues, Issue{Type: IssueTechnical, Priority: PriorityHigh, Title: "Missing canonical URL", Description: `Add a <link rel="canonical"> tag to prevent duplicate content issues.`})
	}

	if !meta.Viewport {
		issues = append(issues, Issue{Type: IssueTechnical, Priority: PriorityCritical, Title: "Missing viewport meta tag", Description: `Add <meta name="viewport"> for proper mobile rendering.`})
	}

	// Content structure
	if content.H1Count == 0 {
		issues = append(issues, Issue{Type: IssueContent, Priority: PriorityHigh, Title: "Missing H1 heading", Description: "The page has no H1 tag. Add a single, descriptive H1 heading."})
	} else if content.H1Count > 1 {
		issues = append(issues, Issue{Type: IssueContent, Priority: PriorityMedium, Title: "Multiple H1 headings", Description: fmt.Sprintf("Found %d H1 tags. Best practice is to have exactly one H1 per page.", content.H1Count)})
	}

	if !content.HeadingHierarchyValid {
		issues = append(issues, Issue{Type: IssueContent, Priority: PriorityLow, Title: "Heading hierarchy has gaps", Description: "Heading levels skip (e.g. H2 to H4). Maintain proper H1 > H2 > H3 hierarchy."})
	}

	if content.TotalImages > 0 && content.ImagesMissingAlt > 0 {
		pct := int(math.Round(float64(content.ImagesMissingAlt) / float64(content.TotalImages) * 100))
		priority := PriorityMedium
		if pct > 50 {
			priority = PriorityHigh
		}
		issues = append(issues, Issue{
			Type:        IssueContent,
			Priority:    priority,
			Title:       "Images missing alt text",
			Description: fmt.Sprintf("%d of %d images (%d%%) lack alt attributes. Add descriptive alt text for accessibility and SEO.", content.ImagesMissingAlt, content.TotalImages, pct),
		})
	}

	// Technical
	if !technical.RobotsTxt {
		issues = append(issues, Issue{Type: IssueTechnical, Priority: PriorityMedium, Title: "Missing robots.txt", Description: "No robots.txt file found. Create one to control how search engines crawl your site."})
	}

	if !technical.Sitemap {
		issues = append(issues, Issue{Type: IssueTechnical, Priority: PriorityMedium, Title: "Missing XML sitemap", Description: "No sitemap.xml found. Create an XML sitemap to help search engines discover your pages."})
	}

	return issues
}
