// Package export writes classification results to JSON, JSONL or CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/domainsweep/domainsweep/pkg/candidate"
	"github.com/domainsweep/domainsweep/pkg/checker"
)

// now is swapped out by tests for deterministic timestamps.
var now = time.Now

type row struct {
	Domain      string `json:"domain"`
	Status      string `json:"status"`
	CheckMethod string `json:"check_method"`
	Type        string `json:"type"`
	Timestamp   string `json:"timestamp"`
}

// Export writes results to path; the format is chosen by extension. Rows are
// ordered available first, then unknown, then registered, alphabetically
// within each status.
func Export(results []checker.Result, path string, meta map[string]candidate.Candidate) error {
	sorted := make([]checker.Result, len(results))
	copy(sorted, results)
	checker.SortResults(sorted)

	rows := make([]row, len(sorted))
	for i, result := range sorted {
		rows[i] = buildRow(result, meta)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return exportJSON(rows, path)
	case ".jsonl":
		return exportJSONL(rows, path)
	case ".csv":
		return exportCSV(rows, path)
	default:
		return fmt.Errorf("export: unsupported file format %q, use .json, .jsonl or .csv", ext)
	}
}

func buildRow(result checker.Result, meta map[string]candidate.Candidate) row {
	kind := string(candidate.KindExact)
	if c, ok := meta[result.Domain]; ok && c.Kind != "" {
		kind = string(c.Kind)
	}
	return row{
		Domain:      result.Domain,
		Status:      result.Status.String(),
		CheckMethod: string(result.Method),
		Type:        kind,
		Timestamp:   now().UTC().Format(time.RFC3339),
	}
}

func exportJSON(rows []row, path string) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func exportJSONL(rows []row, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, r := range rows {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("export: encode jsonl: %w", err)
		}
	}
	return nil
}

func exportCSV(rows []row, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"domain", "status", "check_method", "type", "timestamp"}); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.Domain, r.Status, r.CheckMethod, r.Type, r.Timestamp}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
