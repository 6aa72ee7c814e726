// Package markdown turns rendered HTML into a cleaned markdown excerpt the
// fix prompt can embed without dragging navigation and cookie-banner noise
// into the model's context window.
package markdown

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var boilerplateKeywords = []string{
	"cookie", "consent", "banner", "navbar", "nav-", "menu-",
	"pagination", "share", "signup", "signin", "login",
	"ad-", "advert", "promo", "modal", "popup", "dialog",
	"breadcrumb", "sidebar",
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Convert extracts the page's main content area, strips boilerplate, and
// converts the remainder to markdown. Returns "" when nothing useful is left.
func Convert(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var content *goquery.Selection
	for _, sel := range []string{"main", "[role=\"main\"]", "#content", "#main"} {
		if doc.Find(sel).Length() > 0 {
			content = doc.Find(sel).First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	content.Find("script, style, noscript, nav, header, footer, aside, form, iframe, svg, button, input").Remove()
	content.Find("[class], [id]").Each(func(_ int, sel *goquery.Selection) {
		classVal, _ := sel.Attr("class")
		idVal, _ := sel.Attr("id")
		lower := strings.ToLower(classVal + " " + idVal)
		for _, kw := range boilerplateKeywords {
			if strings.Contains(lower, kw) {
				sel.Remove()
				break
			}
		}
	})

	body, err := content.Html()
	if err != nil {
		return ""
	}

	conv := md.NewConverter("", true, nil)
	out, err := conv.ConvertString(body)
	if err != nil {
		return ""
	}
	out = excessNewlines.ReplaceAllString(strings.ReplaceAll(out, "\r\n", "\n"), "\n\n")
	return strings.TrimSpace(out)
}

// Excerpt converts and truncates to at most limit runes.
func Excerpt(html string, limit int) string {
	out := Convert(html)
	if limit > 0 && len(out) > limit {
		out = strings.TrimSpace(out[:limit]) + "\n...[truncated]"
	}
	return out
}
