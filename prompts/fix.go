// Package prompts holds the LLM prompt templates used when generating
// optimized SEO content for audited pages.
package prompts

import (
	"fmt"
	"strings"

	"seoauditor/internal/core/audit"
)

// FixPrompt builds the per-page prompt asking the model for optimized SEO
// fields as strict JSON. The response contract mirrors the fix structure:
// optimized_title, optimized_meta_description, improved_h1, json_ld_schema,
// suggested_internal_linking.
func FixPrompt(page audit.Page, issues []audit.Issue) string {
	var b strings.Builder

	b.WriteString("You are an expert SEO consultant. Rewrite the SEO-critical fields of the page below.\n\n")

	b.WriteString("**Page**\n")
	fmt.Fprintf(&b, "URL: %s\n", page.URL)
	fmt.Fprintf(&b, "Current title: %s\n", orNone(page.Title))
	fmt.Fprintf(&b, "Current meta description: %s\n", orNone(page.MetaDescription))
	fmt.Fprintf(&b, "Current H1 headings: %s\n", orNone(strings.Join(page.H1s(), " | ")))
	fmt.Fprintf(&b, "Word count: %d\n", page.WordCount)
	fmt.Fprintf(&b, "Internal links: %d, external links: %d\n", page.InternalLinks, page.ExternalLinks)
	fmt.Fprintf(&b, "Images without alt text: %d of %d\n", missingAlt(page), len(page.Images))
	fmt.Fprintf(&b, "Structured data present: %t\n", len(page.SchemaScripts) > 0)
	fmt.Fprintf(&b, "Canonical URL: %s\n", orNone(page.Canonical))

	if len(issues) > 0 {
		b.WriteString("\n**Detected issues**\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", issue.Severity, issue.Type, issue.Explanation)
		}
	}

	if page.ContentExcerpt != "" {
		b.WriteString("\n**Page content (markdown excerpt)**\n")
		b.WriteString(page.ContentExcerpt)
		b.WriteString("\n")
	}

	b.WriteString(`
**Requirements**
- optimized_title: compelling, specific, at most 60 characters
- optimized_meta_description: summarizes the page, at most 160 characters
- improved_h1: one clear H1 stating the page topic
- json_ld_schema: a complete JSON-LD object (as a JSON string) appropriate for this page
- suggested_internal_linking: one short sentence of internal linking advice

Return ONLY a JSON object with exactly these keys:
{"optimized_title": "...", "optimized_meta_description": "...", "improved_h1": "...", "json_ld_schema": "...", "suggested_internal_linking": "..."}`)

	return b.String()
}

func missingAlt(page audit.Page) int {
	n := 0
	for _, img := range page.Images {
		if strings.TrimSpace(img.Alt) == "" {
			n++
		}
	}
	return n
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
