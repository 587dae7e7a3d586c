package rdap

import "testing"

const sampleBootstrap = `{
  "description": "RDAP bootstrap file for Domain Name System registrations",
  "version": "1.0",
  "services": [
    [["dev", "app"], ["https://www.registry.google/rdap/"]],
    [["ck"], ["http://rdap.example.ck/rdap"]],
    [["io"], ["http://legacy.example.io/", "https://rdap.example.io/v1"]],
    [["broken"], []]
  ]
}`

func TestParseBootstrap(t *testing.T) {
	directory, err := ParseBootstrap([]byte(sampleBootstrap))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tld      string
		expected string
		found    bool
	}{
		{"dev", "https://www.registry.google/rdap/", true},
		{"app", "https://www.registry.google/rdap/", true},
		// No HTTPS URL: first URL wins, trailing slash appended.
		{"ck", "http://rdap.example.ck/rdap/", true},
		// HTTPS preferred over an earlier plain-HTTP URL.
		{"io", "https://rdap.example.io/v1/", true},
		// Entry with no URLs is skipped, not an error.
		{"broken", "", false},
		// Absent TLD is expected, not an error.
		{"zz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tld, func(t *testing.T) {
			url, ok := directory.Endpoint(tt.tld)
			if ok != tt.found {
				t.Fatalf("Endpoint(%q) found = %v, want %v", tt.tld, ok, tt.found)
			}
			if url != tt.expected {
				t.Errorf("Endpoint(%q) = %q, want %q", tt.tld, url, tt.expected)
			}
		})
	}
}

func TestParseBootstrapIdempotent(t *testing.T) {
	first, err := ParseBootstrap([]byte(sampleBootstrap))
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseBootstrap([]byte(sampleBootstrap))
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("parses differ in size: %d vs %d", len(first), len(second))
	}
	for tld, url := range first {
		if second[tld] != url {
			t.Errorf("parses differ for %q: %q vs %q", tld, url, second[tld])
		}
	}
}

func TestParseBootstrapRejectsGarbage(t *testing.T) {
	if _, err := ParseBootstrap([]byte("not json")); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestParseBootstrapEmptyServices(t *testing.T) {
	directory, err := ParseBootstrap([]byte(`{"services": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(directory) != 0 {
		t.Errorf("expected empty directory, got %d entries", len(directory))
	}
}

func TestTLDOf(t *testing.T) {
	tests := []struct {
		domain   string
		expected string
	}{
		{"sasha.io", "io"},
		{"amazon.co.uk", "uk"},
		{"example.XN--P1AI", "xn--p1ai"},
		{"UPPER.COM", "com"},
	}

	for _, tt := range tests {
		if result := TLDOf(tt.domain); result != tt.expected {
			t.Errorf("TLDOf(%q) = %q, want %q", tt.domain, result, tt.expected)
		}
	}
}
