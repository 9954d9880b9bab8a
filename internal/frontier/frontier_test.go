package frontier

import (
	"strings"
	"sync"
	"testing"

	"github.com/findexa/finharvest/internal/config"
)

// makeSource compiles a test source scoped to <name>.gov.in.
func makeSource(t *testing.T, name string, maxDepth, maxPages int, deny []string) *config.Source {
	t.Helper()

	src := &config.Source{
		Name:     name,
		Org:      strings.ToUpper(name),
		Seeds:    []string{"https://" + name + ".gov.in/start"},
		Deny:     deny,
		MaxDepth: maxDepth,
		MaxPages: maxPages,
	}
	if err := src.Compile(); err != nil {
		t.Fatalf("failed to compile source %s: %v", name, err)
	}

	return src
}

// TestCanonicalize tests URL normalization.
func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "lowercases host",
			input:    "https://WWW.SEBI.GOV.IN/circulars.html",
			expected: "https://www.sebi.gov.in/circulars.html",
		},
		{
			name:     "strips fragment",
			input:    "https://www.sebi.gov.in/page.html#section-2",
			expected: "https://www.sebi.gov.in/page.html",
		},
		{
			name:     "strips default https port",
			input:    "https://www.sebi.gov.in:443/page.html",
			expected: "https://www.sebi.gov.in/page.html",
		},
		{
			name:     "strips default http port",
			input:    "http://www.nseindia.com:80/invest",
			expected: "http://www.nseindia.com/invest",
		},
		{
			name:     "keeps non-default port",
			input:    "https://www.sebi.gov.in:8443/page.html",
			expected: "https://www.sebi.gov.in:8443/page.html",
		},
		{
			name:     "empty path becomes slash",
			input:    "https://www.amfiindia.com",
			expected: "https://www.amfiindia.com/",
		},
		{
			name:     "preserves query",
			input:    "https://rbi.org.in/Scripts/FAQsView.aspx?Id=138",
			expected: "https://rbi.org.in/Scripts/FAQsView.aspx?Id=138",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  https://www.sebi.gov.in/page.html  ",
			expected: "https://www.sebi.gov.in/page.html",
		},
		{
			name:    "rejects mailto",
			input:   "mailto:info@sebi.gov.in",
			wantErr: true,
		},
		{
			name:    "rejects javascript",
			input:   "javascript:void(0)",
			wantErr: true,
		},
		{
			name:    "rejects relative path",
			input:   "/legal/circulars",
			wantErr: true,
		},
		{
			name:    "rejects empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Canonicalize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestFrontierDedup tests that a URL is dequeued at most once per run.
func TestFrontierDedup(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 2, 100, nil)
	f := New([]*config.Source{src}, 0, nil)

	f.Enqueue("sebi", "https://sebi.gov.in/a.html", 0)
	f.Enqueue("sebi", "https://sebi.gov.in/a.html", 1)
	f.Enqueue("sebi", "https://SEBI.GOV.IN/a.html", 0)
	f.Enqueue("sebi", "https://sebi.gov.in/a.html#frag", 0)

	if task := f.Next(); task == nil || task.URL != "https://sebi.gov.in/a.html" {
		t.Fatalf("expected the canonical task, got %+v", task)
	}
	if task := f.Next(); task != nil {
		t.Errorf("expected a single task for duplicate enqueues, got %+v", task)
	}
}

// TestFrontierDepthLimit tests that over-depth URLs are never enqueued.
func TestFrontierDepthLimit(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 2, 100, nil)
	f := New([]*config.Source{src}, 0, nil)

	f.Enqueue("sebi", "https://sebi.gov.in/depth0.html", 0)
	f.Enqueue("sebi", "https://sebi.gov.in/depth2.html", 2)
	f.Enqueue("sebi", "https://sebi.gov.in/depth3.html", 3)

	var depths []int
	for task := f.Next(); task != nil; task = f.Next() {
		depths = append(depths, task.Depth)
		if task.Depth > src.MaxDepth {
			t.Errorf("dequeued task beyond max depth: %+v", task)
		}
	}
	if len(depths) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(depths))
	}
}

// TestFrontierScopeAndDeny tests host scoping and deny filtering.
func TestFrontierScopeAndDeny(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 2, 100, []string{`login|careers`})
	f := New([]*config.Source{src}, 0, nil)

	f.Enqueue("sebi", "https://sebi.gov.in/circulars.html", 0)
	f.Enqueue("sebi", "https://www.sebi.gov.in/booklets.html", 0)
	f.Enqueue("sebi", "https://evil.example.com/circulars.html", 0)
	f.Enqueue("sebi", "https://sebi.gov.in/login", 0)
	f.Enqueue("sebi", "https://sebi.gov.in/careers/openings.html", 0)
	f.Enqueue("unknown", "https://sebi.gov.in/other.html", 0)

	var urls []string
	for task := f.Next(); task != nil; task = f.Next() {
		urls = append(urls, task.URL)
	}

	if len(urls) != 2 {
		t.Fatalf("expected 2 tasks, got %d: %v", len(urls), urls)
	}
	for _, u := range urls {
		if strings.Contains(u, "login") || strings.Contains(u, "careers") || strings.Contains(u, "evil") {
			t.Errorf("filtered URL leaked through: %s", u)
		}
	}
}

// TestFrontierGlobalBudget tests the shared dequeue cap.
func TestFrontierGlobalBudget(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 2, 100, nil)
	f := New([]*config.Source{src}, 2, nil)

	for _, p := range []string{"/a", "/b", "/c", "/d", "/e"} {
		f.Enqueue("sebi", "https://sebi.gov.in"+p, 0)
	}

	if got := f.RemainingBudget(); got != 2 {
		t.Errorf("expected budget 2 before dequeues, got %d", got)
	}

	var count int
	for task := f.Next(); task != nil; task = f.Next() {
		count++
	}

	if count != 2 {
		t.Errorf("expected exactly 2 dequeues under budget 2, got %d", count)
	}
	if got := f.RemainingBudget(); got != 0 {
		t.Errorf("expected budget 0 after exhaustion, got %d", got)
	}

	// Further enqueues are dropped outright.
	f.Enqueue("sebi", "https://sebi.gov.in/late.html", 0)
	if task := f.Next(); task != nil {
		t.Errorf("expected nil after budget exhaustion, got %+v", task)
	}
}

// TestFrontierPerSourceBudget tests the per-source page cap.
func TestFrontierPerSourceBudget(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 2, 2, nil)
	f := New([]*config.Source{src}, 0, nil)

	for _, p := range []string{"/a", "/b", "/c"} {
		f.Enqueue("sebi", "https://sebi.gov.in"+p, 0)
	}

	var count int
	for task := f.Next(); task != nil; task = f.Next() {
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 dequeues for a source budget of 2, got %d", count)
	}
}

// TestFrontierSourceCycling tests fixed-order drain-then-cycle scheduling.
func TestFrontierSourceCycling(t *testing.T) {
	t.Parallel()

	sebi := makeSource(t, "sebi", 2, 100, nil)
	amfi := makeSource(t, "amfi", 2, 100, nil)
	f := New([]*config.Source{sebi, amfi}, 0, nil)

	f.Enqueue("sebi", "https://sebi.gov.in/1.html", 0)
	f.Enqueue("sebi", "https://sebi.gov.in/2.html", 0)
	f.Enqueue("amfi", "https://amfi.gov.in/1.html", 0)
	f.Enqueue("amfi", "https://amfi.gov.in/2.html", 0)

	var order []string
	for task := f.Next(); task != nil; task = f.Next() {
		order = append(order, task.Source)
	}

	expected := []string{"sebi", "sebi", "amfi", "amfi"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d tasks, got %d", len(expected), len(order))
	}
	for i, source := range expected {
		if order[i] != source {
			t.Errorf("task %d: expected source %s, got %s", i, source, order[i])
		}
	}
}

// TestFrontierFIFOWithinSource tests breadth-first ordering within one source.
func TestFrontierFIFOWithinSource(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 3, 100, nil)
	f := New([]*config.Source{src}, 0, nil)

	urls := []string{
		"https://sebi.gov.in/seed.html",
		"https://sebi.gov.in/level1-a.html",
		"https://sebi.gov.in/level1-b.html",
	}
	f.Enqueue("sebi", urls[0], 0)
	f.Enqueue("sebi", urls[1], 1)
	f.Enqueue("sebi", urls[2], 1)

	for i, want := range urls {
		task := f.Next()
		if task == nil {
			t.Fatalf("expected task %d, got nil", i)
		}
		if task.URL != want {
			t.Errorf("task %d: expected %s, got %s", i, want, task.URL)
		}
	}
}

// TestFrontierEmpty tests the terminal condition.
func TestFrontierEmpty(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 2, 100, nil)
	f := New([]*config.Source{src}, 0, nil)

	if task := f.Next(); task != nil {
		t.Errorf("expected nil from an empty frontier, got %+v", task)
	}
}

// TestFrontierConcurrentEnqueue tests atomic check-and-insert under load.
func TestFrontierConcurrentEnqueue(t *testing.T) {
	t.Parallel()

	src := makeSource(t, "sebi", 2, 1000, nil)
	f := New([]*config.Source{src}, 0, nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Enqueue("sebi", "https://sebi.gov.in/contested.html", 1)
		}()
	}
	wg.Wait()

	var count int
	for task := f.Next(); task != nil; task = f.Next() {
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 task from 50 concurrent enqueues of one URL, got %d", count)
	}
}
