package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces successive requests to the same host.
// Each host gets a token bucket holding a single token that refills at the
// host's politeness interval, so request starts against one host are at
// least that interval apart while distinct hosts proceed independently.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delays   map[string]time.Duration
	inFlight map[string]*sync.Mutex
}

// NewHostLimiter creates an empty limiter. Hosts are registered lazily on
// first Wait or Acquire.
func NewHostLimiter() *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		delays:   make(map[string]time.Duration),
		inFlight: make(map[string]*sync.Mutex),
	}
}

// Acquire takes the host's in-flight slot and returns its release func.
// Only one request per host runs at a time, whatever the politeness
// interval says; Wait spaces request starts, Acquire serializes the
// requests themselves, retries included. A nil limiter or empty host
// returns a no-op release.
func (l *HostLimiter) Acquire(host string) func() {
	if l == nil || host == "" {
		return func() {}
	}
	host = strings.ToLower(host)

	l.mu.Lock()
	m, ok := l.inFlight[host]
	if !ok {
		m = &sync.Mutex{}
		l.inFlight[host] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Wait blocks until a request to host may start, keeping successive request
// starts at least delay apart. A changed delay (a robots Crawl-delay learned
// after the host's first request) adjusts the host's limiter in place.
// A nil limiter or empty host waits for nothing.
func (l *HostLimiter) Wait(ctx context.Context, host string, delay time.Duration) error {
	if l == nil || host == "" {
		return nil
	}
	host = strings.ToLower(host)

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(limitFor(delay), 1)
		l.limiters[host] = limiter
		l.delays[host] = delay
	} else if l.delays[host] != delay {
		limiter.SetLimit(limitFor(delay))
		l.delays[host] = delay
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

func limitFor(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}
