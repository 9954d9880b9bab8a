package robots

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Gate evaluates robots.txt rules for every host the harvester touches.
// Each host's robots.txt is fetched at most once per run and the parsed
// rules are held for the lifetime of the Gate.
//
// Design decision: Fetch failures fail open. An unreachable, missing, or
// malformed robots.txt allows the crawl to proceed, which matches common
// crawler practice; several of the sources we harvest serve no robots.txt
// at all. Explicit Disallow rules are always honored.
type Gate struct {
	// client issues the robots.txt requests.
	client *http.Client

	// userAgent is matched against robots.txt group names. A group naming
	// our agent takes precedence over the wildcard group.
	userAgent string

	// logger records robots decisions at debug level.
	logger *slog.Logger

	mu    sync.RWMutex
	hosts map[string]hostRules
}

// hostRules holds the parsed rules for one host.
// A nil rules field means the robots.txt was absent or unusable and
// everything is allowed.
type hostRules struct {
	rules *robotstxt.RobotsData
	delay time.Duration
}

// NewGate constructs a robots gate.
// If client is nil, a default client with a 10 second timeout is used.
// If logger is nil, slog.Default() is used.
func NewGate(client *http.Client, userAgent string, logger *slog.Logger) *Gate {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		client:    client,
		userAgent: userAgent,
		logger:    logger,
		hosts:     make(map[string]hostRules),
	}
}

// Allowed reports whether the target URL is permitted for our user agent.
// The host's robots.txt is fetched on first use; later calls for the same
// host answer from the cached rules.
func (g *Gate) Allowed(ctx context.Context, target *url.URL) bool {
	if target == nil || !target.IsAbs() {
		return false
	}

	entry := g.rulesFor(ctx, target)
	if entry.rules == nil {
		return true
	}

	group := g.group(entry.rules)
	if group == nil {
		return true
	}
	return group.Test(target.Path)
}

// CrawlDelay returns the crawl delay the host's robots.txt requests for our
// user agent. Returns zero when the host has not been checked yet, serves
// no robots.txt, or specifies no delay.
func (g *Gate) CrawlDelay(host string) time.Duration {
	g.mu.RLock()
	entry, ok := g.hosts[strings.ToLower(host)]
	g.mu.RUnlock()
	if !ok {
		return 0
	}
	return entry.delay
}

// rulesFor returns the cached rules for the target's host, fetching the
// robots.txt on first use.
func (g *Gate) rulesFor(ctx context.Context, target *url.URL) hostRules {
	host := strings.ToLower(target.Host)

	g.mu.RLock()
	entry, ok := g.hosts[host]
	g.mu.RUnlock()
	if ok {
		return entry
	}

	entry = g.load(ctx, target)

	g.mu.Lock()
	// Another goroutine may have loaded the same host concurrently; the
	// first stored entry wins so all callers see identical rules.
	if existing, ok := g.hosts[host]; ok {
		entry = existing
	} else {
		g.hosts[host] = entry
	}
	g.mu.Unlock()

	return entry
}

// load fetches and parses the robots.txt for the target's host.
// Any failure returns empty rules, which allow everything.
func (g *Gate) load(ctx context.Context, target *url.URL) hostRules {
	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		g.logger.Debug("robots request build failed, allowing host", "url", robotsURL, "error", err)
		return hostRules{}
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("robots fetch failed, allowing host", "url", robotsURL, "error", err)
		return hostRules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		g.logger.Debug("robots returned error status, allowing host", "url", robotsURL, "status", resp.StatusCode)
		return hostRules{}
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		g.logger.Debug("robots parse failed, allowing host", "url", robotsURL, "error", err)
		return hostRules{}
	}

	var delay time.Duration
	if group := g.group(data); group != nil {
		delay = group.CrawlDelay
	}

	g.logger.Debug("robots rules loaded", "host", strings.ToLower(target.Host), "delay", delay)

	return hostRules{rules: data, delay: delay}
}

// group resolves the robots group for our user agent, falling back to the
// wildcard group.
func (g *Gate) group(data *robotstxt.RobotsData) *robotstxt.Group {
	group := data.FindGroup(g.userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	return group
}
