package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/domainsweep/domainsweep/pkg/candidate"
	"github.com/domainsweep/domainsweep/pkg/checker"
)

func fixedClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func sampleResults() []checker.Result {
	return []checker.Result{
		{Domain: "taken.com", Status: checker.StatusRegistered, Method: checker.MethodDNS},
		{Domain: "free.io", Status: checker.StatusAvailable, Method: checker.MethodRDAP},
	}
}

func sampleMeta() map[string]candidate.Candidate {
	return map[string]candidate.Candidate{
		"free.io": {Domain: "free.io", Kind: candidate.KindHack, Visual: "freeio"},
	}
}

func TestExportJSON(t *testing.T) {
	fixedClock(t)
	path := filepath.Join(t.TempDir(), "out.json")

	if err := Export(sampleResults(), path, sampleMeta()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rows []map[string]string
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Available sorts first.
	if rows[0]["domain"] != "free.io" {
		t.Errorf("rows[0].domain = %q, want free.io", rows[0]["domain"])
	}
	if rows[0]["status"] != "possibly available" {
		t.Errorf("rows[0].status = %q", rows[0]["status"])
	}
	if rows[0]["check_method"] != "RDAP" {
		t.Errorf("rows[0].check_method = %q, want RDAP", rows[0]["check_method"])
	}
	if rows[0]["type"] != "hack" {
		t.Errorf("rows[0].type = %q, want hack", rows[0]["type"])
	}
	if rows[1]["type"] != "exact" {
		t.Errorf("rows[1].type = %q, want exact (default)", rows[1]["type"])
	}
	if rows[0]["timestamp"] != "2026-08-29T12:00:00Z" {
		t.Errorf("rows[0].timestamp = %q", rows[0]["timestamp"])
	}
}

func TestExportJSONL(t *testing.T) {
	fixedClock(t)
	path := filepath.Join(t.TempDir(), "out.jsonl")

	if err := Export(sampleResults(), path, nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		var r map[string]string
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Errorf("line %q is not valid JSON: %v", line, err)
		}
	}
}

func TestExportCSV(t *testing.T) {
	fixedClock(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := Export(sampleResults(), path, sampleMeta()); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2 rows", len(records))
	}
	header := strings.Join(records[0], ",")
	if header != "domain,status,check_method,type,timestamp" {
		t.Errorf("header = %q", header)
	}
	if records[1][0] != "free.io" {
		t.Errorf("first row domain = %q, want free.io", records[1][0])
	}
}

func TestExportUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xml")
	if err := Export(sampleResults(), path, nil); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
