package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"seoauditor/internal/core/analyzer"
	"seoauditor/internal/core/audit"
)

// Results is the payload persisted on the audit record and returned to API
// consumers.
type Results struct {
	Domain          string          `json:"domain"`
	PagesCrawled    int             `json:"pages_crawled"`
	CrawlErrors     []string        `json:"crawl_errors,omitempty"`
	Issues          []IssueEntry    `json:"issues"`
	Meta            analyzer.Meta   `json:"meta"`
	Recommendations []string        `json:"recommendations"`
	Fixes           []audit.Fix     `json:"ai_fixes"`
	Scores          audit.Scores    `json:"scores"`
	Details         CategoryDetails `json:"details"`
}

// IssueEntry is a flattened issue with a human-readable display title.
type IssueEntry struct {
	Title          string `json:"title"`
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Explanation    string `json:"explanation"`
	RecommendedFix string `json:"recommended_fix"`
	PageURL        string `json:"page_url,omitempty"`
}

type CategoryDetails struct {
	Meta        MetaDetails        `json:"meta"`
	Content     ContentDetails     `json:"content"`
	Performance PerformanceDetails `json:"performance"`
	Technical   TechnicalDetails   `json:"technical"`
}

type MetaDetails struct {
	PagesWithTitle       int    `json:"pages_with_title"`
	PagesWithDescription int    `json:"pages_with_description"`
	PagesWithCanonical   int    `json:"pages_with_canonical"`
	Summary              string `json:"summary"`
}

type ContentDetails struct {
	AverageWordCount int     `json:"average_word_count"`
	H1CorrectRatio   float64 `json:"h1_correct_ratio"`
	Summary          string  `json:"summary"`
}

type PerformanceDetails struct {
	TotalImages          int     `json:"total_images"`
	ImagesMissingAlt     int     `json:"images_missing_alt"`
	AvgInternalLinks     float64 `json:"avg_internal_links"`
	AvgExternalLinks     float64 `json:"avg_external_links"`
	Summary              string  `json:"summary"`
}

type TechnicalDetails struct {
	SchemaCoverage float64 `json:"schema_coverage"`
	HTTPSCoverage  float64 `json:"https_coverage"`
	Summary        string  `json:"summary"`
}

func buildResults(result *audit.CrawlResult, issues []audit.Issue, meta analyzer.Meta, fixes []audit.Fix, scores audit.Scores) Results {
	entries := make([]IssueEntry, 0, len(issues))
	var recommendations []string
	for _, issue := range issues {
		entries = append(entries, IssueEntry{
			Title:          displayTitle(issue.Type),
			Type:           issue.Type,
			Severity:       string(issue.Severity),
			Explanation:    issue.Explanation,
			RecommendedFix: issue.RecommendedFix,
			PageURL:        issue.PageURL,
		})
		if issue.Severity == audit.SeverityCritical || issue.Severity == audit.SeverityWarning {
			recommendations = append(recommendations, issue.RecommendedFix)
		}
	}

	return Results{
		Domain:          result.Domain,
		PagesCrawled:    result.PagesCrawled,
		CrawlErrors:     result.Errors,
		Issues:          entries,
		Meta:            meta,
		Recommendations: recommendations,
		Fixes:           fixes,
		Scores:          scores,
		Details:         buildDetails(result.Pages),
	}
}

func buildDetails(pages []audit.Page) CategoryDetails {
	var d CategoryDetails
	n := len(pages)
	if n == 0 {
		return d
	}

	var totalWords, correctH1, totalInternal, totalExternal, withSchema, https int
	for _, page := range pages {
		if page.Title != "" {
			d.Meta.PagesWithTitle++
		}
		if page.MetaDescription != "" {
			d.Meta.PagesWithDescription++
		}
		if page.Canonical != "" {
			d.Meta.PagesWithCanonical++
		}
		totalWords += page.WordCount
		if len(page.H1s()) == 1 {
			correctH1++
		}
		totalInternal += page.InternalLinks
		totalExternal += page.ExternalLinks
		d.Performance.TotalImages += len(page.Images)
		for _, img := range page.Images {
			if strings.TrimSpace(img.Alt) == "" {
				d.Performance.ImagesMissingAlt++
			}
		}
		if len(page.SchemaScripts) > 0 {
			withSchema++
		}
		if strings.HasPrefix(page.URL, "https://") {
			https++
		}
	}

	d.Content.AverageWordCount = totalWords / n
	d.Content.H1CorrectRatio = ratio(correctH1, n)
	d.Performance.AvgInternalLinks = float64(totalInternal) / float64(n)
	d.Performance.AvgExternalLinks = float64(totalExternal) / float64(n)
	d.Technical.SchemaCoverage = ratio(withSchema, n)
	d.Technical.HTTPSCoverage = ratio(https, n)

	d.Meta.Summary = fmt.Sprintf("%d of %d pages have titles, %d have meta descriptions, %d declare a canonical URL.",
		d.Meta.PagesWithTitle, n, d.Meta.PagesWithDescription, d.Meta.PagesWithCanonical)
	d.Content.Summary = fmt.Sprintf("Pages average %d words; %.0f%% have exactly one H1.",
		d.Content.AverageWordCount, d.Content.H1CorrectRatio*100)
	d.Performance.Summary = fmt.Sprintf("%d of %d images are missing alt text; pages average %.1f internal links.",
		d.Performance.ImagesMissingAlt, d.Performance.TotalImages, d.Performance.AvgInternalLinks)
	d.Technical.Summary = fmt.Sprintf("%.0f%% of pages carry structured data; %.0f%% are served over HTTPS.",
		d.Technical.SchemaCoverage*100, d.Technical.HTTPSCoverage*100)
	return d
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// displayTitle turns an issue type like missing_meta_description into
// "Missing Meta Description".
func displayTitle(issueType string) string {
	words := strings.Split(issueType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// schemaTypeNames pulls the @type values out of a page's JSON-LD blocks,
// tolerating both single objects and arrays at the top level.
func schemaTypeNames(page audit.Page) []string {
	seen := map[string]struct{}{}
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	for _, raw := range page.SchemaScripts {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			add(typeOf(obj))
			continue
		}
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			for _, obj := range list {
				add(typeOf(obj))
			}
		}
	}
	return names
}

func typeOf(obj map[string]any) string {
	switch v := obj["@type"].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
