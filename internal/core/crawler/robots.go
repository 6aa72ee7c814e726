package crawler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsFetchTimeout = 5 * time.Second

// robotsPolicy answers whether a URL may be crawled. A nil policy or nil
// group means robots.txt was unavailable and everything is allowed.
type robotsPolicy struct {
	group *robotstxt.Group
}

// fetchRobots loads and parses robots.txt for the start URL's host. Any
// failure (timeout, non-200, parse error) fails open.
func (s *Service) fetchRobots(ctx context.Context, base *url.URL) *robotsPolicy {
	robotsURL := base.Scheme + "://" + base.Host + "/robots.txt"

	reqCtx, cancel := context.WithTimeout(ctx, robotsFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &robotsPolicy{}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.LogDebugf("robots.txt unavailable for %s: %v", base.Host, err)
		return &robotsPolicy{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &robotsPolicy{}
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		s.log.LogDebugf("robots.txt parse failed for %s: %v", base.Host, err)
		return &robotsPolicy{}
	}
	return &robotsPolicy{group: data.FindGroup(s.userAgent)}
}

func (p *robotsPolicy) Allowed(raw string) bool {
	if p == nil || p.group == nil {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return p.group.Test(path)
}
