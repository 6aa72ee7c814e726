package audit

// Job is one user-submitted audit request. It is created once by the HTTP
// handler, enqueued, and consumed exactly once by the worker pool.
type Job struct {
	AuditID string `json:"audit_id"`
	UserID  string `json:"user_id"`
	URL     string `json:"url"`
	Domain  string `json:"domain"`
}

// Stage is one named phase of job progress surfaced to the caller.
type Stage string

const (
	StageQueued    Stage = "queued"
	StageCrawling  Stage = "crawling"
	StageAnalyzing Stage = "analyzing"
	StageFixing    Stage = "fixing"
	StageSaving    Stage = "saving"
	StageDone      Stage = "done"
	StageError     Stage = "error"
)

// Terminal reports whether the stage ends the job's lifecycle.
func (s Stage) Terminal() bool { return s == StageDone || s == StageError }

// Progress is the live view of an in-flight audit, owned by the single
// worker running that job.
type Progress struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
}

// Image is a single <img> occurrence on a crawled page.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Page is the structured extraction of one successfully rendered page.
// Immutable once produced; input to the analyzer and the fixer.
type Page struct {
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	MetaDescription string     `json:"meta_description"`
	Headings        [6][]string `json:"headings"`
	WordCount       int        `json:"word_count"`
	InternalLinks   int        `json:"internal_links"`
	ExternalLinks   int        `json:"external_links"`
	Images          []Image    `json:"images"`
	Canonical       string     `json:"canonical"`
	SchemaScripts   []string   `json:"schema_scripts"`
	Issues          []string   `json:"issues"`

	// Discovered holds the deduplicated same-host links found on the page,
	// normalized; the crawler feeds its frontier from it and the analyzer's
	// orphan check consumes it.
	Discovered []string `json:"discovered"`

	// ContentExcerpt is a cleaned markdown excerpt of the rendered page,
	// embedded in the fix prompt.
	ContentExcerpt string `json:"content_excerpt,omitempty"`
}

// H1s returns the page's h1 texts.
func (p *Page) H1s() []string { return p.Headings[0] }

// CrawlResult is the complete output of one crawl invocation.
type CrawlResult struct {
	Domain       string   `json:"domain"`
	PagesCrawled int      `json:"pages_crawled"`
	Pages        []Page   `json:"pages"`
	Errors       []string `json:"errors"`
}

// Severity orders issues for downstream ranking; critical is most urgent.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue type identifiers produced by the analyzer and consumed by the
// scoring penalty table.
const (
	IssueMissingMetaDescription = "missing_meta_description"
	IssueMissingH1              = "missing_h1"
	IssueMultipleH1             = "multiple_h1"
	IssueThinContent            = "thin_content"
	IssueDuplicateTitles        = "duplicate_titles"
	IssueMissingAltTags         = "missing_alt_tags"
	IssueNoSchema               = "no_schema"
	IssueOrphanPage             = "orphan_page"
)

// Issue is a detected SEO deficiency. PageURL is empty for site-wide issues.
type Issue struct {
	Type           string   `json:"issue_type"`
	Severity       Severity `json:"severity"`
	Explanation    string   `json:"explanation"`
	RecommendedFix string   `json:"recommended_fix"`
	PageURL        string   `json:"page_url,omitempty"`
}

// Fix is the AI-generated (or deterministically synthesized) set of
// replacement values for one page. The fixer produces exactly one per
// crawled page.
type Fix struct {
	PageURL                    string `json:"page_url"`
	OptimizedTitle             string `json:"optimized_title"`
	OptimizedMetaDescription   string `json:"optimized_meta_description"`
	ImprovedH1                 string `json:"improved_h1"`
	JSONLDSchema               string `json:"json_ld_schema"`
	SuggestedInternalLinking   string `json:"suggested_internal_linking_text"`
}

// Scores are the deterministic category scores derived from issue counts.
type Scores struct {
	Meta        int `json:"meta"`
	Content     int `json:"content"`
	Performance int `json:"performance"`
	Technical   int `json:"technical"`
	Overall     int `json:"overall"`
}
