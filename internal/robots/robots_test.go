package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

const testUserAgent = "finharvest/1.0 (+https://github.com/findexa/finharvest)"

// robotsServer serves the given robots.txt body and 200 for everything else.
func robotsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte(body))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func mustParse(t *testing.T, rawURL string) *url.URL {
	t.Helper()

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", rawURL, err)
	}
	return u
}

// TestGateAllowed tests robots.txt rule evaluation.
func TestGateAllowed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("honors disallow for our agent", func(t *testing.T) {
		t.Parallel()

		srv := robotsServer(t, "User-agent: finharvest\nDisallow: /private/\n")
		gate := NewGate(srv.Client(), testUserAgent, nil)

		if gate.Allowed(ctx, mustParse(t, srv.URL+"/private/report.pdf")) {
			t.Error("expected /private/ to be disallowed")
		}
		if !gate.Allowed(ctx, mustParse(t, srv.URL+"/circulars/report.pdf")) {
			t.Error("expected /circulars/ to be allowed")
		}
	})

	t.Run("falls back to wildcard group", func(t *testing.T) {
		t.Parallel()

		srv := robotsServer(t, "User-agent: *\nDisallow: /admin/\n")
		gate := NewGate(srv.Client(), testUserAgent, nil)

		if gate.Allowed(ctx, mustParse(t, srv.URL+"/admin/login")) {
			t.Error("expected wildcard disallow to apply")
		}
		if !gate.Allowed(ctx, mustParse(t, srv.URL+"/investors.html")) {
			t.Error("expected unlisted path to be allowed")
		}
	})

	t.Run("agent group takes precedence over wildcard", func(t *testing.T) {
		t.Parallel()

		body := "User-agent: *\nDisallow: /\n\nUser-agent: finharvest\nDisallow: /private/\n"
		srv := robotsServer(t, body)
		gate := NewGate(srv.Client(), testUserAgent, nil)

		if !gate.Allowed(ctx, mustParse(t, srv.URL+"/docs/guide.pdf")) {
			t.Error("expected our agent's group to override the wildcard deny")
		}
		if gate.Allowed(ctx, mustParse(t, srv.URL+"/private/secret.pdf")) {
			t.Error("expected our agent's disallow to apply")
		}
	})

	t.Run("missing robots allows everything", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		t.Cleanup(srv.Close)

		gate := NewGate(srv.Client(), testUserAgent, nil)
		if !gate.Allowed(ctx, mustParse(t, srv.URL+"/anything")) {
			t.Error("expected missing robots.txt to fail open")
		}
	})

	t.Run("server error allows everything", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		gate := NewGate(srv.Client(), testUserAgent, nil)
		if !gate.Allowed(ctx, mustParse(t, srv.URL+"/anything")) {
			t.Error("expected 500 robots.txt to fail open")
		}
	})

	t.Run("unreachable host allows everything", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		base := srv.URL
		srv.Close()

		gate := NewGate(nil, testUserAgent, nil)
		if !gate.Allowed(ctx, mustParse(t, base+"/anything")) {
			t.Error("expected unreachable robots.txt to fail open")
		}
	})

	t.Run("rejects nil and relative URLs", func(t *testing.T) {
		t.Parallel()

		gate := NewGate(nil, testUserAgent, nil)

		if gate.Allowed(ctx, nil) {
			t.Error("expected nil URL to be rejected")
		}
		if gate.Allowed(ctx, mustParse(t, "/relative/path")) {
			t.Error("expected relative URL to be rejected")
		}
	})
}

// TestGateFetchesOncePerHost verifies the once-per-run robots fetch.
func TestGateFetchesOncePerHost(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
		}
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked/\n"))
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	gate := NewGate(srv.Client(), testUserAgent, nil)

	paths := []string{"/a", "/b", "/blocked/c", "/d"}
	for _, p := range paths {
		gate.Allowed(ctx, mustParse(t, srv.URL+p))
	}

	if got := fetches.Load(); got != 1 {
		t.Errorf("expected exactly 1 robots.txt fetch, got %d", got)
	}
}

// TestGateCrawlDelay tests Crawl-delay extraction.
func TestGateCrawlDelay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns zero before host is checked", func(t *testing.T) {
		t.Parallel()

		gate := NewGate(nil, testUserAgent, nil)
		if d := gate.CrawlDelay("www.sebi.gov.in"); d != 0 {
			t.Errorf("expected zero delay for unchecked host, got %v", d)
		}
	})

	t.Run("extracts delay from our agent's group", func(t *testing.T) {
		t.Parallel()

		body := "User-agent: finharvest\nCrawl-delay: 2\nDisallow: /private/\n"
		srv := robotsServer(t, body)
		gate := NewGate(srv.Client(), testUserAgent, nil)

		target := mustParse(t, srv.URL+"/page")
		gate.Allowed(ctx, target)

		if d := gate.CrawlDelay(target.Host); d != 2*time.Second {
			t.Errorf("expected 2s crawl delay, got %v", d)
		}
	})

	t.Run("returns zero when robots has no delay", func(t *testing.T) {
		t.Parallel()

		srv := robotsServer(t, "User-agent: *\nDisallow: /x/\n")
		gate := NewGate(srv.Client(), testUserAgent, nil)

		target := mustParse(t, srv.URL+"/page")
		gate.Allowed(ctx, target)

		if d := gate.CrawlDelay(target.Host); d != 0 {
			t.Errorf("expected zero delay, got %v", d)
		}
	})
}
