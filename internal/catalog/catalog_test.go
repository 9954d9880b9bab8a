package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/findexa/finharvest/internal/model"
)

func testRecord(id, org string, domain model.Domain, url string) *model.DocumentRecord {
	return &model.DocumentRecord{
		ID:        id,
		Title:     "Test Document",
		Domain:    domain,
		SourceOrg: org,
		SourceURL: url,
		FileType:  model.FileTypePDF,
	}
}

func testDate(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestOpenEmptyDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cat, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cat.Close() //nolint:errcheck // test cleanup

	if got, expected := cat.Path(), filepath.Join(dir, "catalog.jsonl"); got != expected {
		t.Errorf("Path() = %q, expected %q", got, expected)
	}

	if _, err := os.Stat(cat.Path()); err != nil {
		t.Errorf("expected catalog file to exist after Open: %v", err)
	}

	if got := cat.Stats().TotalDocuments; got != 0 {
		t.Errorf("TotalDocuments = %d, expected 0", got)
	}
}

func TestOpenCreatesOutputDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")

	cat, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cat.Close() //nolint:errcheck // test cleanup

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected output directory to be created: %v", err)
	}
}

func TestAppendAndReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cat, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	records := []*model.DocumentRecord{
		testRecord("id-1", "SEBI", model.DomainMutualFundETF, "https://www.sebi.gov.in/a.pdf"),
		testRecord("id-2", "AMFI", model.DomainMutualFundETF, "https://www.amfiindia.com/b.pdf"),
	}
	for _, record := range records {
		if !cat.Remember(record) {
			t.Fatalf("Remember(%s) = false, expected true", record.ID)
		}
		if err := cat.Append(record); err != nil {
			t.Fatalf("Append(%s) error = %v", record.ID, err)
		}
	}
	if err := cat.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close() //nolint:errcheck // test cleanup

	for _, id := range []string{"id-1", "id-2"} {
		if !reopened.Contains(id) {
			t.Errorf("Contains(%s) = false after reload, expected true", id)
		}
	}
	if reopened.Remember(records[0]) {
		t.Error("Remember() = true for reloaded id, expected false")
	}

	stats := reopened.Stats()
	if stats.TotalDocuments != 2 {
		t.Errorf("TotalDocuments = %d, expected 2", stats.TotalDocuments)
	}
	if stats.BySource["SEBI"] != 1 || stats.BySource["AMFI"] != 1 {
		t.Errorf("BySource = %v, expected one each for SEBI and AMFI", stats.BySource)
	}
	if stats.ByDomain["mutual_fund_etf"] != 2 {
		t.Errorf("ByDomain = %v, expected 2 for mutual_fund_etf", stats.ByDomain)
	}
	if stats.ByFileType["pdf"] != 2 {
		t.Errorf("ByFileType = %v, expected 2 for pdf", stats.ByFileType)
	}
}

func TestOpenSkipsMalformedLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	good1, err := json.Marshal(testRecord("id-1", "SEBI", model.DomainMutualFundETF, "https://www.sebi.gov.in/a.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	good2, err := json.Marshal(testRecord("id-2", "NSE", model.DomainStockEquity, "https://www.nseindia.com/b.pdf"))
	if err != nil {
		t.Fatal(err)
	}

	content := string(good1) + "\n{not json\n\n{}\n" + string(good2) + "\n"
	if err := os.WriteFile(filepath.Join(dir, "catalog.jsonl"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cat, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cat.Close() //nolint:errcheck // test cleanup

	if got := cat.Stats().TotalDocuments; got != 2 {
		t.Errorf("TotalDocuments = %d, expected 2 (malformed lines skipped)", got)
	}
	if !cat.Contains("id-1") || !cat.Contains("id-2") {
		t.Error("expected both well-formed records to be loaded")
	}
}

func TestRememberConcurrent(t *testing.T) {
	t.Parallel()

	cat, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cat.Close() //nolint:errcheck // test cleanup

	record := testRecord("id-1", "SEBI", model.DomainMutualFundETF, "https://www.sebi.gov.in/a.pdf")

	var claimed atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cat.Remember(record) {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := claimed.Load(); got != 1 {
		t.Errorf("claimed = %d, expected exactly 1", got)
	}
}

func TestAppendAfterClose(t *testing.T) {
	t.Parallel()

	cat, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := cat.Close(); err != nil {
		t.Fatal(err)
	}

	record := testRecord("id-1", "SEBI", model.DomainMutualFundETF, "https://www.sebi.gov.in/a.pdf")
	if err := cat.Append(record); err == nil {
		t.Error("Append() after Close = nil error, expected error")
	}
}
