package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertPrefersMainContent(t *testing.T) {
	html := `<html><body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<main><h1>The Article</h1><p>Real content lives here.</p></main>
<footer>Copyright</footer>
</body></html>`

	out := Convert(html)
	assert.Contains(t, out, "The Article")
	assert.Contains(t, out, "Real content lives here.")
	assert.NotContains(t, out, "Copyright")
}

func TestConvertStripsBoilerplate(t *testing.T) {
	html := `<html><body>
<div class="cookie-consent">We use cookies</div>
<div id="sidebar">Related posts</div>
<p>Keep this paragraph.</p>
<script>window.track()</script>
</body></html>`

	out := Convert(html)
	assert.Contains(t, out, "Keep this paragraph.")
	assert.NotContains(t, out, "We use cookies")
	assert.NotContains(t, out, "Related posts")
	assert.NotContains(t, out, "track")
}

func TestConvertEmptyDocument(t *testing.T) {
	assert.Empty(t, Convert(""))
}

func TestExcerptTruncates(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("word ", 600) + "</p></body></html>"

	out := Excerpt(html, 200)
	assert.LessOrEqual(t, len(out), 200+len("\n...[truncated]"))
	assert.True(t, strings.HasSuffix(out, "...[truncated]"))
}

func TestExcerptShortContentUntruncated(t *testing.T) {
	out := Excerpt("<html><body><p>short text</p></body></html>", 2000)
	assert.Equal(t, "short text", out)
	assert.False(t, strings.Contains(out, "[truncated]"))
}
