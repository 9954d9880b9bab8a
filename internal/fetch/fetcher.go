package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/findexa/finharvest/internal/cache"
	"github.com/findexa/finharvest/internal/model"
)

// Status classifies the outcome of fetching one URL.
type Status int

const (
	// StatusFresh means a 2xx response with a body was received.
	StatusFresh Status = iota

	// StatusNotModified means the server confirmed our cached copy via 304.
	StatusNotModified

	// StatusClientError means a non-retryable 4xx response.
	StatusClientError

	// StatusServerError means 429 or 5xx responses persisted through every
	// retry attempt.
	StatusServerError

	// StatusNetworkError means connection-level failures (DNS, timeout,
	// reset) persisted through every retry attempt.
	StatusNetworkError
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusNotModified:
		return "not_modified"
	case StatusClientError:
		return "client_error"
	case StatusServerError:
		return "server_error"
	case StatusNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of fetching one URL.
type Result struct {
	// Status classifies the outcome.
	Status Status

	// StatusCode is the last HTTP status received. Zero when every attempt
	// failed at the connection level.
	StatusCode int

	// Page holds the fetched body and metadata. Set only for StatusFresh.
	Page *model.Page

	// Attempts is the number of requests sent for this URL.
	Attempts int

	// Err is the last connection-level error. Set only for StatusNetworkError.
	Err error
}

// DelayFunc returns the politeness delay for a host. The fetcher calls it
// before every request so a Crawl-delay learned from robots.txt takes
// effect immediately.
type DelayFunc func(host string) time.Duration

// Options configures a Fetcher.
type Options struct {
	// UserAgent is sent on every request.
	UserAgent string

	// Timeout bounds each individual request. Used only when no client is
	// supplied to NewFetcher.
	Timeout time.Duration

	// MaxAttempts caps the total requests per URL, counting the first.
	// Zero or negative means a single attempt.
	MaxAttempts int

	// Backoff computes the delay between retry attempts.
	Backoff Backoff

	// Delay supplies the per-host politeness delay. Nil means no delay.
	Delay DelayFunc

	// Logger records fetch events. Nil means slog.Default().
	Logger *slog.Logger
}

// Fetcher performs conditional HTTP GETs with retry and per-host politeness.
//
// Design decision: The fetcher owns the conditional-request protocol end to
// end because:
//  1. Validators must be read before and stored after every request; a
//     single owner keeps that pairing impossible to forget
//  2. The retry loop must re-send the same conditional headers each attempt
//  3. Callers only care about the classified outcome, not HTTP mechanics
type Fetcher struct {
	client  *http.Client
	store   *cache.Cache
	limiter *HostLimiter
	opts    Options
	logger  *slog.Logger
}

// NewFetcher creates a fetcher.
// A nil client gets a default client built from opts.Timeout. A nil store
// disables conditional requests. A nil limiter disables per-host spacing.
func NewFetcher(client *http.Client, store *cache.Cache, limiter *HostLimiter, opts Options) *Fetcher {
	if client == nil {
		client = NewClient(opts.Timeout)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		client:  client,
		store:   store,
		limiter: limiter,
		opts:    opts,
		logger:  logger,
	}
}

// NewClient returns an HTTP client tuned for polite crawling: bounded
// timeouts at every stage and a small idle pool, since the harvester holds
// at most one in-flight connection per host.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   2,
		},
	}
}

// Fetch retrieves one URL and classifies the outcome.
// Cached validators are attached as conditional headers. 429 and 5xx
// responses and connection failures are retried with backoff up to the
// attempt cap; other 4xx responses are returned immediately. The host's
// in-flight slot is held for the whole call and every attempt waits on
// the per-host limiter, so neither concurrent workers nor retries
// violate politeness spacing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *Result {
	target, err := url.Parse(rawURL)
	if err != nil {
		return &Result{Status: StatusNetworkError, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	release := f.limiter.Acquire(target.Host)
	defer release()

	var etag, lastModified string
	if f.store != nil {
		entry, err := f.store.Lookup(ctx, rawURL)
		if err != nil {
			f.logger.Warn("cache lookup failed", "url", rawURL, "error", err)
		} else if entry != nil {
			etag = entry.ETag
			lastModified = entry.LastModified
		}
	}

	maxAttempts := f.opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	var lastStatus int

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := f.opts.Backoff.Delay(attempt - 1)
			f.logger.Debug("backing off before retry", "url", rawURL, "attempt", attempt+1, "delay", delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return &Result{Status: StatusNetworkError, Attempts: attempt, Err: ctx.Err()}
			}
		}

		if f.limiter != nil {
			var hostDelay time.Duration
			if f.opts.Delay != nil {
				hostDelay = f.opts.Delay(target.Host)
			}
			if err := f.limiter.Wait(ctx, target.Host, hostDelay); err != nil {
				return &Result{Status: StatusNetworkError, Attempts: attempt, Err: err}
			}
		}

		resp, err := f.do(ctx, rawURL, etag, lastModified)
		if err != nil {
			if ctx.Err() != nil {
				return &Result{Status: StatusNetworkError, Attempts: attempt + 1, Err: ctx.Err()}
			}
			f.logger.Debug("request failed", "url", rawURL, "attempt", attempt+1, "error", err)
			lastErr = err
			lastStatus = 0
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotModified:
			drainAndClose(resp.Body)
			if f.store != nil {
				if err := f.store.Touch(ctx, rawURL); err != nil {
					f.logger.Warn("cache touch failed", "url", rawURL, "error", err)
				}
			}
			return &Result{Status: StatusNotModified, StatusCode: resp.StatusCode, Attempts: attempt + 1}

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			page, err := f.readPage(rawURL, resp)
			if err != nil {
				f.logger.Debug("body read failed", "url", rawURL, "attempt", attempt+1, "error", err)
				lastErr = err
				lastStatus = 0
				continue
			}
			f.storeValidators(ctx, rawURL, page)
			return &Result{Status: StatusFresh, StatusCode: resp.StatusCode, Page: page, Attempts: attempt + 1}

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			drainAndClose(resp.Body)
			f.logger.Debug("transient error status", "url", rawURL, "status", resp.StatusCode, "attempt", attempt+1)
			lastStatus = resp.StatusCode
			lastErr = nil
			continue

		default:
			drainAndClose(resp.Body)
			return &Result{Status: StatusClientError, StatusCode: resp.StatusCode, Attempts: attempt + 1}
		}
	}

	if lastStatus != 0 {
		return &Result{Status: StatusServerError, StatusCode: lastStatus, Attempts: maxAttempts}
	}
	return &Result{Status: StatusNetworkError, Attempts: maxAttempts, Err: lastErr}
}

// do sends a single conditional GET.
func (f *Fetcher) do(ctx context.Context, rawURL, etag, lastModified string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	return f.client.Do(req)
}

// readPage reads the response body into a Page, applying the size cap for
// the detected content type, and closes the body.
func (f *Fetcher) readPage(rawURL string, resp *http.Response) (*model.Page, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, model.MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	page := &model.Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         body,
		FetchedAt:   time.Now(),
	}
	if page.IsHTML() {
		page.TruncateRaw(model.MaxPageSize)
	}
	page.Hash = model.ComputeHash(page.Raw)

	return page, nil
}

// storeValidators records the response validators and content hash so the
// next run can revalidate instead of re-downloading.
func (f *Fetcher) storeValidators(ctx context.Context, rawURL string, page *model.Page) {
	if f.store == nil {
		return
	}

	etag, lastModified := page.Validators()
	entry := &cache.Entry{
		URL:          rawURL,
		ETag:         etag,
		LastModified: lastModified,
		ContentHash:  page.Hash,
	}
	if err := f.store.Store(ctx, entry); err != nil {
		f.logger.Warn("cache store failed", "url", rawURL, "error", err)
	}
}

// drainAndClose discards a bounded amount of the body before closing so the
// underlying connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<14))
	_ = body.Close()
}
