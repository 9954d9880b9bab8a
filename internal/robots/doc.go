// Package robots enforces robots.txt politeness for the harvester.
//
// The Gate fetches each host's robots.txt at most once per run, resolves
// the rule group for our user agent (falling back to the wildcard group),
// and answers allow/deny for every URL before it is fetched. It also
// surfaces the Crawl-delay directive so the per-host rate limiter can
// honor it.
//
// Failures fail open: a host without a reachable robots.txt is crawled
// normally. This is the conventional reading of robots.txt absence and
// keeps flaky government servers from silently emptying a run.
package robots
