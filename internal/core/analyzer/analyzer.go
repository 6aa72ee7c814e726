// Package analyzer turns a crawl result into a flat list of SEO issues.
// It is pure: no I/O, no state, deterministic output for a given crawl.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"seoauditor/internal/core/audit"
)

const minWordCount = 300

// Meta counts issues by severity. Total always equals the sum of the three
// buckets.
type Meta struct {
	PagesAnalyzed int `json:"pages_analyzed"`
	TotalIssues   int `json:"total_issues"`
	Critical      int `json:"critical"`
	Warnings      int `json:"warnings"`
	Info          int `json:"info"`
}

// Analyze inspects every crawled page plus the site as a whole and returns
// the issues found, ordered page by page with site-wide issues last.
func Analyze(result *audit.CrawlResult) ([]audit.Issue, Meta) {
	var issues []audit.Issue
	for _, page := range result.Pages {
		issues = append(issues, pageIssues(page)...)
	}
	issues = append(issues, duplicateTitleIssues(result.Pages)...)
	issues = append(issues, orphanPageIssues(result.Pages)...)

	meta := Meta{PagesAnalyzed: len(result.Pages), TotalIssues: len(issues)}
	for _, issue := range issues {
		switch issue.Severity {
		case audit.SeverityCritical:
			meta.Critical++
		case audit.SeverityWarning:
			meta.Warnings++
		default:
			meta.Info++
		}
	}
	return issues, meta
}

func pageIssues(page audit.Page) []audit.Issue {
	var issues []audit.Issue

	if page.MetaDescription == "" {
		issues = append(issues, audit.Issue{
			Type:           audit.IssueMissingMetaDescription,
			Severity:       audit.SeverityCritical,
			PageURL:        page.URL,
			Explanation:    "The page has no meta description, so search engines will improvise a snippet from page content.",
			RecommendedFix: "Add a meta description of up to 160 characters summarizing the page.",
		})
	}

	switch h1s := page.H1s(); {
	case len(h1s) == 0:
		issues = append(issues, audit.Issue{
			Type:           audit.IssueMissingH1,
			Severity:       audit.SeverityCritical,
			PageURL:        page.URL,
			Explanation:    "The page has no H1 heading, leaving its primary topic undeclared.",
			RecommendedFix: "Add a single H1 that states the page's main topic.",
		})
	case len(h1s) > 1:
		issues = append(issues, audit.Issue{
			Type:           audit.IssueMultipleH1,
			Severity:       audit.SeverityWarning,
			PageURL:        page.URL,
			Explanation:    fmt.Sprintf("The page has %d H1 headings (%s); search engines expect exactly one.", len(h1s), strings.Join(h1s, ", ")),
			RecommendedFix: "Keep one H1 and demote the rest to H2.",
		})
	}

	if page.WordCount < minWordCount {
		issues = append(issues, audit.Issue{
			Type:           audit.IssueThinContent,
			Severity:       audit.SeverityWarning,
			PageURL:        page.URL,
			Explanation:    fmt.Sprintf("The page has only %d words of visible text; thin pages rank poorly.", page.WordCount),
			RecommendedFix: fmt.Sprintf("Expand the content to at least %d words of genuinely useful text.", minWordCount),
		})
	}

	if missing := missingAltCount(page); missing > 0 {
		issues = append(issues, audit.Issue{
			Type:           audit.IssueMissingAltTags,
			Severity:       audit.SeverityWarning,
			PageURL:        page.URL,
			Explanation:    fmt.Sprintf("%d of %d images have no alt text.", missing, len(page.Images)),
			RecommendedFix: "Add descriptive alt attributes to every content image.",
		})
	}

	if len(page.SchemaScripts) == 0 {
		issues = append(issues, audit.Issue{
			Type:           audit.IssueNoSchema,
			Severity:       audit.SeverityInfo,
			PageURL:        page.URL,
			Explanation:    "The page carries no JSON-LD structured data.",
			RecommendedFix: "Add a JSON-LD block describing the page (Organization, Article, Product or similar).",
		})
	}

	return issues
}

// duplicateTitleIssues reports one site-scoped warning per set of pages
// sharing the same normalized title; the affected URLs live in the
// explanation, not in PageURL. Empty titles are skipped; missing titles are
// a separate per-page concern.
func duplicateTitleIssues(pages []audit.Page) []audit.Issue {
	byTitle := map[string][]string{}
	for _, page := range pages {
		key := strings.ToLower(strings.TrimSpace(page.Title))
		if key == "" {
			continue
		}
		byTitle[key] = append(byTitle[key], page.URL)
	}

	keys := make([]string, 0, len(byTitle))
	for key, urls := range byTitle {
		if len(urls) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var issues []audit.Issue
	for _, key := range keys {
		urls := byTitle[key]
		issues = append(issues, audit.Issue{
			Type:           audit.IssueDuplicateTitles,
			Severity:       audit.SeverityWarning,
			Explanation:    fmt.Sprintf("%d pages share the title %q: %s", len(urls), key, strings.Join(urls, ", ")),
			RecommendedFix: "Give each page a unique, descriptive title.",
		})
	}
	return issues
}

// orphanPageIssues flags poorly connected pages. Two signals, deduped: a
// page beyond the entry point with zero internal links of its own, or a page
// no crawled page's discovered links reach. The start page is exempt from
// the first signal because it is the crawl entry, not a discovery.
func orphanPageIssues(pages []audit.Page) []audit.Issue {
	if len(pages) < 2 {
		return nil
	}

	inbound := map[string]struct{}{}
	for _, page := range pages {
		for _, link := range page.Discovered {
			if link != page.URL {
				inbound[link] = struct{}{}
			}
		}
	}

	var issues []audit.Issue
	for i, page := range pages {
		_, linked := inbound[page.URL]
		isolated := i > 0 && page.InternalLinks == 0
		unreached := i > 0 && !linked
		if !isolated && !unreached {
			continue
		}
		issues = append(issues, audit.Issue{
			Type:           audit.IssueOrphanPage,
			Severity:       audit.SeverityWarning,
			PageURL:        page.URL,
			Explanation:    "The page is poorly connected: no crawled page links to it, or it links to nothing internally.",
			RecommendedFix: "Weave the page into the site's internal link structure from related content or navigation.",
		})
	}
	return issues
}

func missingAltCount(page audit.Page) int {
	missing := 0
	for _, img := range page.Images {
		if strings.TrimSpace(img.Alt) == "" {
			missing++
		}
	}
	return missing
}
