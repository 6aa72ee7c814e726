package fixer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"seoauditor/internal/core/audit"
)

const (
	maxTitleLength = 60
	maxDescLength  = 160
)

// fallbackFix derives every fix field deterministically from what the page
// already has, so the pipeline keeps working with the model offline.
func fallbackFix(page audit.Page) audit.Fix {
	host := hostnameOf(page.URL)
	h1 := firstNonEmpty(page.H1s()...)

	title := firstNonEmpty(page.Title, h1, siteName(host))
	desc := firstNonEmpty(page.MetaDescription, excerptSentence(page.ContentExcerpt),
		fmt.Sprintf("Learn more about %s on %s.", strings.ToLower(firstNonEmpty(h1, page.Title, "this page")), host))

	return audit.Fix{
		PageURL:                  page.URL,
		OptimizedTitle:           truncate(title, maxTitleLength),
		OptimizedMetaDescription: truncate(desc, maxDescLength),
		ImprovedH1:               firstNonEmpty(h1, page.Title, siteName(host)),
		JSONLDSchema:             fallbackSchema(page, host),
		SuggestedInternalLinking: fmt.Sprintf("Link to %s from related pages using descriptive anchor text.", page.URL),
	}
}

func fallbackSchema(page audit.Page, host string) string {
	schema := map[string]string{
		"@context": "https://schema.org",
		"@type":    "WebPage",
		"url":      page.URL,
		"name":     firstNonEmpty(page.Title, firstNonEmpty(page.H1s()...), siteName(host)),
	}
	if page.MetaDescription != "" {
		schema["description"] = page.MetaDescription
	}
	out, _ := json.Marshal(schema)
	return string(out)
}

// truncate cuts s to at most limit characters, ellipsis included.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}

// excerptSentence returns the first plain-text sentence of a markdown
// excerpt, or empty when nothing usable is there.
func excerptSentence(excerpt string) string {
	for _, line := range strings.Split(excerpt, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#>*- "))
		if len(line) < 20 {
			continue
		}
		if i := strings.IndexAny(line, ".!?"); i > 0 {
			return line[:i+1]
		}
		return line
	}
	return ""
}

func siteName(host string) string {
	if host == "" {
		return "Home"
	}
	name := strings.TrimPrefix(host, "www.")
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	if name == "" {
		return "Home"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func hostnameOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
