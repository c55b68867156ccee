package audit

// WebVitalRating is the qualitative bucket for a Core Web Vitals metric.
type WebVitalRating string

const (
	RatingGood             WebVitalRating = "good"
	RatingNeedsImprovement WebVitalRating = "needs-improvement"
	RatingPoor             WebVitalRating = "poor"
)

// IssueType categorizes an audit finding.
type IssueType string

const (
	IssueTechnical   IssueType = "technical"
	IssueContent     IssueType = "content"
	IssueOnPage      IssueType = "on_page"
	IssuePerformance IssueType = "performance"
)

// IssuePriority ranks how urgently a finding should be addressed.
type IssuePriority string

const (
	PriorityCritical IssuePriority = "critical"
	PriorityHigh     IssuePriority = "high"
	PriorityMedium   IssuePriority = "medium"
	PriorityLow      IssuePriority = "low"
)

// LighthouseScores holds the four PageSpeed Insights category scores.
// A nil field means the data was unavailable, which is distinct from a
// score of zero.
type LighthouseScores struct {
	Performance   *int `json:"performance"`
	SEO           *int `json:"seo"`
	BestPractices *int `json:"bestPractices"`
	Accessibility *int `json:"accessibility"`
}

// CoreWebVitals holds the three field metrics with their ratings.
type CoreWebVitals struct {
	LCP       int            `json:"lcp"` // milliseconds
	FID       int            `json:"fid"` // milliseconds
	CLS       float64        `json:"cls"`
	LCPRating WebVitalRating `json:"lcpRating"`
	FIDRating WebVitalRating `json:"fidRating"`
	CLSRating WebVitalRating `json:"clsRating"`
}

// MetaTagCheck describes a single text-bearing meta element.
type MetaTagCheck struct {
	Exists  bool    `json:"exists"`
	Value   *string `json:"value"`
	Length  int     `json:"length"`
	Optimal bool    `json:"optimal"`
}

// MetaTags holds everything extracted from the document head.
type MetaTags struct {
	Title         MetaTagCheck `json:"title"`
	Description   MetaTagCheck `json:"description"`
	OGTitle       bool         `json:"ogTitle"`
	OGDescription bool         `json:"ogDescription"`
	OGImage       bool         `json:"ogImage"`
	Canonical     bool         `json:"canonical"`
	Robots        *string      `json:"robots"`
	Viewport      bool         `json:"viewport"`
}

// ContentStructure holds heading, image and link facts for the page body.
type ContentStructure struct {
	H1Count               int  `json:"h1Count"`
	HeadingHierarchyValid bool `json:"headingHierarchyValid"`
	TotalImages           int  `json:"totalImages"`
	ImagesMissingAlt      int  `json:"imagesMissingAlt"`
	InternalLinks         int  `json:"internalLinks"`
	ExternalLinks         int  `json:"externalLinks"`
}

// Technical holds the site-level infrastructure checks.
type Technical struct {
	HTTPS     bool `json:"https"`
	RobotsTxt bool `json:"robotsTxt"`
	Sitemap   bool `json:"sitemap"`
}

// Issue is a single actionable finding.
type Issue struct {
	Type        IssueType     `json:"type"`
	Priority    IssuePriority `json:"priority"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

// LighthouseBlock is the lighthouse section of the stored results, with
// unavailable scores coerced to zero. PsiAvailable on Results records
// whether the data was real.
type LighthouseBlock struct {
	Performance   int `json:"performance"`
	SEO           int `json:"seo"`
	BestPractices int `json:"bestPractices"`
	Accessibility int `json:"accessibility"`
}

// Results is the full audit output for one page.
type Results struct {
	Lighthouse       LighthouseBlock  `json:"lighthouse"`
	PsiAvailable     bool             `json:"psiAvailable"`
	CoreWebVitals    CoreWebVitals    `json:"coreWebVitals"`
	MetaTags         MetaTags         `json:"metaTags"`
	ContentStructure ContentStructure `json:"contentStructure"`
	Technical        Technical        `json:"technical"`
	Issues           []Issue          `json:"issues"`
	URL              string           `json:"url"`
	AnalyzedAt       string           `json:"analyzedAt"`
}

// Recommendation is the persistable projection of an Issue.
type Recommendation struct {
	Type        IssueType     `json:"type"`
	Priority    IssuePriority `json:"priority"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

// EngineResult is the caller-facing return value of a full audit run.
type EngineResult struct {
	Score           int              `json:"score"`
	IssuesCount     int              `json:"issuesCount"`
	PagesCrawled    int              `json:"pagesCrawled"`
	Results         Results          `json:"results"`
	Recommendations []Recommendation `json:"recommendations"`
}
