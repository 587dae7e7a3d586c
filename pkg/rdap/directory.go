// Package rdap verifies possibly-available domains against the registries'
// RDAP services.
package rdap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// bootstrapDocument mirrors the IANA RDAP bootstrap registry layout. Each
// services entry is a [tld-list, url-list] pair.
type bootstrapDocument struct {
	Services [][][]string `json:"services"`
}

// Directory maps a TLD to the base URL of its RDAP service. Built once per
// run and read-only afterwards; safe to share across concurrent lookups.
type Directory map[string]string

// ParseBootstrap builds a directory from the raw IANA bootstrap document.
// For each TLD group the first HTTPS URL is selected, falling back to the
// first URL, normalized to end with a path separator. Malformed entries are
// skipped. A TLD absent from the document simply has no entry.
func ParseBootstrap(raw []byte) (Directory, error) {
	var doc bootstrapDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rdap: parse bootstrap document: %w", err)
	}

	directory := make(Directory)
	for _, service := range doc.Services {
		if len(service) < 2 || len(service[1]) == 0 {
			continue
		}
		tlds, urls := service[0], service[1]

		url := urls[0]
		for _, u := range urls {
			if strings.HasPrefix(u, "https://") {
				url = u
				break
			}
		}
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}

		for _, tld := range tlds {
			directory[strings.ToLower(tld)] = url
		}
	}
	return directory, nil
}

// Endpoint returns the RDAP base URL for a TLD, if one is known.
func (d Directory) Endpoint(tld string) (string, bool) {
	url, ok := d[strings.ToLower(tld)]
	return url, ok
}

// TLDOf extracts the TLD from a domain name: the last dot-separated label,
// lowercased. RDAP bootstrap entries are keyed this way, so "amazon.co.uk"
// maps to "uk".
func TLDOf(domain string) string {
	idx := strings.LastIndex(domain, ".")
	return strings.ToLower(domain[idx+1:])
}
