package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"seoauditor/internal/core/audit"
	"seoauditor/internal/utils/markdown"
)

const (
	maxTitleLength    = 60
	maxMetaDescLength = 160
	minWordCount      = 300
	excerptLimit      = 2000
)

// extractPage parses a rendered document into the per-page structure the
// analyzer and fixer work from. pageURL must already be normalized.
func extractPage(html, pageURL, domain string) audit.Page {
	page := audit.Page{URL: pageURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		page.Issues = append(page.Issues, "unparseable_html")
		return page
	}

	base, _ := url.Parse(pageURL)

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.MetaDescription = strings.TrimSpace(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))
	page.Canonical = strings.TrimSpace(doc.Find(`link[rel="canonical"]`).First().AttrOr("href", ""))

	for level := 1; level <= 6; level++ {
		doc.Find(fmt.Sprintf("h%d", level)).Each(func(_ int, s *goquery.Selection) {
			page.Headings[level-1] = append(page.Headings[level-1], strings.TrimSpace(s.Text()))
		})
	}

	page.WordCount = countWords(doc)

	discovered := map[string]struct{}{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if hostsMatch(abs.Hostname(), domain) {
			page.InternalLinks++
			norm := normalizeURL(abs)
			if _, ok := discovered[norm]; !ok && norm != pageURL {
				discovered[norm] = struct{}{}
				page.Discovered = append(page.Discovered, norm)
			}
		} else {
			page.ExternalLinks++
		}
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		page.Images = append(page.Images, audit.Image{
			Src: strings.TrimSpace(s.AttrOr("src", "")),
			Alt: strings.TrimSpace(s.AttrOr("alt", "")),
		})
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if raw := strings.TrimSpace(s.Text()); raw != "" {
			page.SchemaScripts = append(page.SchemaScripts, raw)
		}
	})

	page.Issues = append(page.Issues, pageIssues(page)...)
	page.ContentExcerpt = markdown.Excerpt(html, excerptLimit)
	return page
}

// countWords counts visible body text, ignoring script and style content.
func countWords(doc *goquery.Document) int {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	return len(strings.Fields(body.Text()))
}

// pageIssues flags the on-page problems visible from a single document.
// Site-wide checks (duplicate titles, orphan pages) happen in the analyzer.
func pageIssues(page audit.Page) []string {
	var issues []string
	if page.Title == "" {
		issues = append(issues, "missing_title")
	} else if len(page.Title) > maxTitleLength {
		issues = append(issues, "title_too_long")
	}
	if page.MetaDescription == "" {
		issues = append(issues, "missing_meta_description")
	} else if len(page.MetaDescription) > maxMetaDescLength {
		issues = append(issues, "meta_description_too_long")
	}
	switch h1s := len(page.Headings[0]); {
	case h1s == 0:
		issues = append(issues, "missing_h1")
	case h1s > 1:
		issues = append(issues, "multiple_h1")
	}
	if page.WordCount < minWordCount {
		issues = append(issues, "thin_content")
	}
	missingAlt := 0
	for _, img := range page.Images {
		if img.Alt == "" {
			missingAlt++
		}
	}
	if missingAlt > 0 {
		issues = append(issues, "images_missing_alt")
	}
	if page.Canonical == "" {
		issues = append(issues, "missing_canonical")
	}
	return issues
}
