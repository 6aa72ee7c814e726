// Package crawler implements the bounded breadth-first site traversal that
// feeds the audit pipeline. One browser process per crawl, one isolated
// browsing context per fetch, same-host scope, fixed page cap.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seoauditor/internal/core/audit"
	"seoauditor/internal/logger"
	"seoauditor/internal/platform/browser"
	rds "seoauditor/internal/platform/redis"
	"seoauditor/internal/retry"
)

const (
	fetchTimeout     = 20 * time.Second
	settleDelay      = 1500 * time.Millisecond
	snapshotCacheTTL = 15 * time.Minute
)

// assetExtensions are skipped without consuming a fetch slot: these are not
// documents and render to nothing useful.
var assetExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".svg": {}, ".ico": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".rar": {}, ".7z": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
	".css": {}, ".js": {}, ".mjs": {},
	".mp4": {}, ".mp3": {}, ".avi": {}, ".mov": {}, ".webm": {}, ".wav": {},
}

type Service struct {
	log        *logger.Logger
	renderer   browser.Renderer
	cache      *rds.Service // nil disables snapshot caching
	httpClient *http.Client // robots.txt only; page fetches go through the browser
	maxPages   int
	userAgent  string
	policy     retry.Policy
}

func New(renderer browser.Renderer, cache *rds.Service, maxPages int, userAgent string) *Service {
	if maxPages <= 0 {
		maxPages = 20
	}
	return &Service{
		log:        logger.New("Crawler"),
		renderer:   renderer,
		cache:      cache,
		httpClient: http.DefaultClient,
		maxPages:   maxPages,
		userAgent:  userAgent,
		// Initial attempt plus two retries, 1s/2s linear backoff.
		policy: retry.Policy{MaxAttempts: 3, BaseDelay: time.Second, Backoff: retry.Linear},
	}
}

// Crawl traverses the start URL's site breadth-first and returns the crawl
// result. It never returns an error: everything that goes wrong ends up in
// the result's error list.
func (s *Service) Crawl(ctx context.Context, startURL string) *audit.CrawlResult {
	result := &audit.CrawlResult{Pages: []audit.Page{}, Errors: []string{}}

	start, err := url.Parse(strings.TrimSpace(startURL))
	if err != nil || (start.Scheme != "http" && start.Scheme != "https") || start.Hostname() == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid start url: %s", startURL))
		return result
	}
	result.Domain = start.Hostname()

	br, err := s.renderer.Launch(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("browser launch failed: %v", err))
		return result
	}
	defer br.Close()

	robots := s.fetchRobots(ctx, start)

	seed := normalizeURL(start)
	frontier := []string{seed}
	enqueued := map[string]struct{}{seed: {}}
	visited := map[string]struct{}{}

	for len(frontier) > 0 && len(result.Pages) < s.maxPages {
		current := frontier[0]
		frontier = frontier[1:]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		if isAssetURL(current) {
			continue
		}
		if !robots.Allowed(current) {
			result.Errors = append(result.Errors, fmt.Sprintf("disallowed by robots.txt: %s", current))
			continue
		}

		snap, err := s.fetchPage(ctx, br, current)
		if err != nil {
			s.log.LogWarnf("fetch failed %s: %v", current, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", current, err))
			continue
		}

		page := extractPage(snap.HTML, current, result.Domain)
		result.Pages = append(result.Pages, page)
		s.log.LogDebugf("crawled %s (%d words, %d links discovered)", current, page.WordCount, len(page.Discovered))

		for _, link := range page.Discovered {
			if _, ok := enqueued[link]; !ok {
				enqueued[link] = struct{}{}
				frontier = append(frontier, link)
			}
		}
	}

	result.PagesCrawled = len(result.Pages)
	s.log.LogInfof("crawl done domain=%s pages=%d errors=%d", result.Domain, result.PagesCrawled, len(result.Errors))
	return result
}

// fetchPage renders one page with retries, consulting the snapshot cache
// first. Each render attempt uses a fresh isolated browsing context.
func (s *Service) fetchPage(ctx context.Context, br browser.Browser, pageURL string) (*browser.Snapshot, error) {
	cacheKey := "snapshot:" + pageURL
	if s.cache != nil {
		var cached browser.Snapshot
		if err := s.cache.CacheGet(ctx, cacheKey, &cached); err == nil {
			s.log.LogDebugf("snapshot cache hit %s", pageURL)
			return &cached, nil
		}
	}

	var snap *browser.Snapshot
	err := s.policy.Do(ctx, func() error {
		rendered, err := br.Render(ctx, pageURL, browser.RenderOptions{
			Timeout:     fetchTimeout,
			SettleDelay: settleDelay,
			UserAgent:   s.userAgent,
		})
		if err != nil {
			return err
		}
		if rendered.Status >= 400 {
			return fmt.Errorf("status %d", rendered.Status)
		}
		snap = rendered
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheSet(ctx, cacheKey, snap, snapshotCacheTTL); err != nil {
			s.log.LogDebugf("snapshot cache write failed %s: %v", pageURL, err)
		}
	}
	return snap, nil
}

// normalizeURL strips fragment and query and collapses the trailing slash so
// equivalent URLs are visited once.
func normalizeURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawQuery = ""
	c.Path = strings.TrimRight(c.Path, "/")
	return c.String()
}

func isAssetURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	if i := strings.LastIndex(p, "."); i >= 0 {
		if _, ok := assetExtensions[p[i:]]; ok {
			return true
		}
	}
	return false
}

// hostsMatch compares hostnames strictly: a www. subdomain is a different
// host and stays out of crawl scope.
func hostsMatch(a, b string) bool {
	return strings.EqualFold(a, b)
}
