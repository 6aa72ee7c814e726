package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seoauditor/internal/core/audit"
)

func TestFixPrompt(t *testing.T) {
	page := audit.Page{
		URL:            "https://acme.test/pricing",
		Title:          "Pricing",
		WordCount:      420,
		InternalLinks:  5,
		ExternalLinks:  1,
		Images:         []audit.Image{{Src: "a.png"}, {Src: "b.png", Alt: "chart"}},
		Canonical:      "https://acme.test/pricing",
		ContentExcerpt: "# Pricing\nPlans start at $9.",
	}
	page.Headings[0] = []string{"Plans and Pricing"}
	issues := []audit.Issue{{
		Type:        audit.IssueMissingMetaDescription,
		Severity:    audit.SeverityCritical,
		Explanation: "The page has no meta description.",
	}}

	prompt := FixPrompt(page, issues)

	assert.Contains(t, prompt, "https://acme.test/pricing")
	assert.Contains(t, prompt, "Current title: Pricing")
	assert.Contains(t, prompt, "Plans and Pricing")
	assert.Contains(t, prompt, "missing_meta_description")
	assert.Contains(t, prompt, "Plans start at $9.")
	assert.Contains(t, prompt, "Images without alt text: 1 of 2")
	assert.Contains(t, prompt, `"optimized_title"`)
	assert.Contains(t, prompt, `"suggested_internal_linking"`)
}

func TestFixPromptEmptyFields(t *testing.T) {
	prompt := FixPrompt(audit.Page{URL: "https://acme.test"}, nil)
	assert.Contains(t, prompt, "Current title: (none)")
	assert.Contains(t, prompt, "Current meta description: (none)")
	assert.NotContains(t, prompt, "Detected issues")
}
