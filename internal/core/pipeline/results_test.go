package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoauditor/internal/core/analyzer"
	"seoauditor/internal/core/audit"
)

func TestSchemaTypeNames(t *testing.T) {
	page := audit.Page{SchemaScripts: []string{
		`{"@context":"https://schema.org","@type":"Organization"}`,
		`[{"@type":"Article"},{"@type":"BreadcrumbList"}]`,
		`{"@type":["Product","Thing"]}`,
		`{"@type":"Organization"}`,
		`not even json`,
	}}
	assert.Equal(t, []string{"Organization", "Article", "BreadcrumbList", "Product"}, schemaTypeNames(page))
}

func TestBuildResultsRecommendationsAndTitles(t *testing.T) {
	issues := []audit.Issue{
		{Type: audit.IssueMissingMetaDescription, Severity: audit.SeverityCritical, RecommendedFix: "add description"},
		{Type: audit.IssueThinContent, Severity: audit.SeverityWarning, RecommendedFix: "write more"},
		{Type: audit.IssueNoSchema, Severity: audit.SeverityInfo, RecommendedFix: "add schema"},
	}
	result := &audit.CrawlResult{Domain: "a.test", PagesCrawled: 1, Pages: []audit.Page{{URL: "https://a.test"}}}

	payload := buildResults(result, issues, analyzer.Meta{TotalIssues: 3, Critical: 1, Warnings: 1, Info: 1}, nil, ComputeScores(issues))

	require.Len(t, payload.Issues, 3)
	assert.Equal(t, "Missing Meta Description", payload.Issues[0].Title)
	// Info-severity fixes are not surfaced as recommendations.
	assert.Equal(t, []string{"add description", "write more"}, payload.Recommendations)
	assert.Equal(t, 3, payload.Meta.TotalIssues)
}

func TestBuildDetails(t *testing.T) {
	a := audit.Page{
		URL:             "https://a.test",
		Title:           "A",
		MetaDescription: "desc",
		Canonical:       "https://a.test",
		WordCount:       400,
		InternalLinks:   4,
		ExternalLinks:   2,
		Images:          []audit.Image{{Src: "x.png", Alt: "x"}, {Src: "y.png"}},
		SchemaScripts:   []string{`{"@type":"WebPage"}`},
	}
	a.Headings[0] = []string{"A"}
	b := audit.Page{URL: "http://a.test/b", WordCount: 200}

	d := buildDetails([]audit.Page{a, b})

	assert.Equal(t, 1, d.Meta.PagesWithTitle)
	assert.Equal(t, 1, d.Meta.PagesWithDescription)
	assert.Equal(t, 1, d.Meta.PagesWithCanonical)
	assert.Equal(t, 300, d.Content.AverageWordCount)
	assert.Equal(t, 0.5, d.Content.H1CorrectRatio)
	assert.Equal(t, 2, d.Performance.TotalImages)
	assert.Equal(t, 1, d.Performance.ImagesMissingAlt)
	assert.Equal(t, 2.0, d.Performance.AvgInternalLinks)
	assert.Equal(t, 0.5, d.Technical.SchemaCoverage)
	assert.Equal(t, 0.5, d.Technical.HTTPSCoverage)
	assert.NotEmpty(t, d.Meta.Summary)
}

func TestBuildDetailsEmpty(t *testing.T) {
	d := buildDetails(nil)
	assert.Zero(t, d.Content.AverageWordCount)
	assert.Empty(t, d.Meta.Summary)
}
