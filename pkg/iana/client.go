// Package iana fetches the IANA TLD list and RDAP bootstrap registry with a
// local freshness cache.
package iana

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// TLDListURL is the authoritative list of delegated TLDs.
	TLDListURL = "https://data.iana.org/TLD/tlds-alpha-by-domain.txt"
	// BootstrapURL is the RDAP bootstrap registry for the DNS namespace.
	BootstrapURL = "https://data.iana.org/rdap/dns.json"

	// DefaultMaxAge is how long a cached document stays fresh.
	DefaultMaxAge = 24 * time.Hour

	defaultFetchTimeout = 30 * time.Second
)

// Client downloads IANA registry documents, keeping a file cache keyed by
// modification time so repeated runs stay offline-friendly.
type Client struct {
	http     *http.Client
	cacheDir string
	maxAge   time.Duration
}

// NewClient creates a client caching under cacheDir. A nil httpClient gets a
// default with a fetch timeout; a non-positive maxAge gets DefaultMaxAge.
func NewClient(httpClient *http.Client, cacheDir string, maxAge time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Client{http: httpClient, cacheDir: cacheDir, maxAge: maxAge}
}

// DefaultCacheDir returns the per-user cache directory for this tool.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("iana: locate cache dir: %w", err)
	}
	return filepath.Join(base, "domainsweep"), nil
}

// TLDs returns all delegated TLDs, lowercased.
func (c *Client) TLDs(ctx context.Context, forceRefresh bool) ([]string, error) {
	raw, err := c.fetch(ctx, TLDListURL, "tlds.txt", forceRefresh)
	if err != nil {
		return nil, err
	}
	return ParseTLDList(raw), nil
}

// Bootstrap returns the raw RDAP bootstrap document bytes.
func (c *Client) Bootstrap(ctx context.Context, forceRefresh bool) ([]byte, error) {
	return c.fetch(ctx, BootstrapURL, "rdap_bootstrap.json", forceRefresh)
}

func (c *Client) fetch(ctx context.Context, url, cacheName string, forceRefresh bool) ([]byte, error) {
	path := filepath.Join(c.cacheDir, cacheName)

	if !forceRefresh {
		if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) < c.maxAge {
			if data, err := os.ReadFile(path); err == nil {
				return data, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("iana: build request for %s: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iana: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iana: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("iana: read %s: %w", url, err)
	}

	// Cache write failures are non-fatal; the data is already in hand.
	if err := os.MkdirAll(c.cacheDir, 0755); err == nil {
		_ = os.WriteFile(path, data, 0644)
	}

	return data, nil
}

// ParseTLDList parses the IANA TLD list text, skipping comment and blank
// lines and lowercasing each entry (punycode TLDs like xn--p1ai included).
func ParseTLDList(raw []byte) []string {
	var tlds []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tlds = append(tlds, strings.ToLower(line))
	}
	return tlds
}
