package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<html>
<head>
<title>Acme Widgets</title>
<meta name="description" content="Widgets for every occasion.">
<link rel="canonical" href="https://acme.test/widgets">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","name":"Widget"}</script>
<style>body { color: red }</style>
</head>
<body>
<h1>Widgets</h1>
<h2>Premium</h2>
<h2>Budget</h2>
<p>Our widgets are the finest widgets available anywhere.</p>
<a href="/pricing">Pricing</a>
<a href="/pricing#plans">Plans</a>
<a href="https://partner.test/deal">Partner</a>
<a href="mailto:sales@acme.test">Email</a>
<img src="/hero.png" alt="A widget">
<img src="/bare.png">
<script>var tracked = "these words must not count";</script>
</body>
</html>`

func TestExtractPage(t *testing.T) {
	p := extractPage(sampleHTML, "https://acme.test", "acme.test")

	assert.Equal(t, "Acme Widgets", p.Title)
	assert.Equal(t, "Widgets for every occasion.", p.MetaDescription)
	assert.Equal(t, "https://acme.test/widgets", p.Canonical)
	assert.Equal(t, []string{"Widgets"}, p.Headings[0])
	assert.Equal(t, []string{"Premium", "Budget"}, p.Headings[1])

	// Two same-path anchors count as two internal links but one discovery.
	assert.Equal(t, 2, p.InternalLinks)
	assert.Equal(t, 1, p.ExternalLinks)
	assert.Equal(t, []string{"https://acme.test/pricing"}, p.Discovered)

	require.Len(t, p.Images, 2)
	assert.Equal(t, "A widget", p.Images[0].Alt)
	assert.Empty(t, p.Images[1].Alt)

	require.Len(t, p.SchemaScripts, 1)
	assert.Contains(t, p.SchemaScripts[0], `"@type":"Product"`)

	// Script and style text must not inflate the word count.
	assert.Equal(t, 15, p.WordCount)

	assert.Contains(t, p.Issues, "thin_content")
	assert.Contains(t, p.Issues, "images_missing_alt")
	assert.NotContains(t, p.Issues, "missing_title")
	assert.NotContains(t, p.Issues, "missing_h1")
	assert.NotContains(t, p.Issues, "multiple_h1")
}

func TestPageIssuesFlagsProblems(t *testing.T) {
	html := `<html><head></head><body>
<h1>One</h1><h1>Two</h1>
<p>` + strings.Repeat("word ", 400) + `</p>
</body></html>`

	p := extractPage(html, "https://acme.test/page", "acme.test")

	assert.Contains(t, p.Issues, "missing_title")
	assert.Contains(t, p.Issues, "missing_meta_description")
	assert.Contains(t, p.Issues, "multiple_h1")
	assert.Contains(t, p.Issues, "missing_canonical")
	assert.NotContains(t, p.Issues, "thin_content")
	assert.Equal(t, 400, p.WordCount)
}

func TestPageIssuesLengthBounds(t *testing.T) {
	long := strings.Repeat("x", 61)
	html := `<html><head><title>` + long + `</title>
<meta name="description" content="` + strings.Repeat("y", 161) + `">
</head><body><h1>H</h1></body></html>`

	p := extractPage(html, "https://acme.test/long", "acme.test")
	assert.Contains(t, p.Issues, "title_too_long")
	assert.Contains(t, p.Issues, "meta_description_too_long")
}
