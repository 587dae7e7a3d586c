package rdap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/domainsweep/domainsweep/pkg/checker"
	"github.com/domainsweep/domainsweep/pkg/metrics"
	"github.com/domainsweep/domainsweep/pkg/ratelimit"
)

const (
	// DefaultTimeout bounds a single RDAP query.
	DefaultTimeout = 10 * time.Second
	// DefaultConcurrency caps in-flight RDAP queries, independently from the
	// DNS ceiling. RDAP traffic is rate-limited separately and far smaller.
	DefaultConcurrency = 8

	// maxBodySize caps how much of an RDAP response is read.
	maxBodySize = 1 << 20
)

// domainResponse is the slice of an RDAP domain lookup the verifier cares
// about.
type domainResponse struct {
	LDHName string   `json:"ldhName"`
	Status  []string `json:"status"`
}

// VerifierConfig holds verifier configuration.
type VerifierConfig struct {
	Client      *http.Client
	Directory   Directory
	Limiter     *ratelimit.Limiter
	Timeout     time.Duration
	Concurrency int
}

// Verifier re-checks possibly-available domains against their TLD's RDAP
// endpoint under a shared rate limiter and a concurrency ceiling.
type Verifier struct {
	client      *http.Client
	directory   Directory
	limiter     *ratelimit.Limiter
	concurrency int
}

// NewVerifier creates a verifier. The directory and limiter are required;
// the HTTP client defaults to one with the default query timeout.
func NewVerifier(config VerifierConfig) (*Verifier, error) {
	if config.Directory == nil {
		return nil, fmt.Errorf("rdap: directory is required")
	}
	if config.Limiter == nil {
		return nil, fmt.Errorf("rdap: rate limiter is required")
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Client == nil {
		config.Client = &http.Client{Timeout: config.Timeout}
	}
	return &Verifier{
		client:      config.Client,
		directory:   config.Directory,
		limiter:     config.Limiter,
		concurrency: config.Concurrency,
	}, nil
}

// Verify re-checks each input result over RDAP and returns one result per
// input. Inputs whose TLD has no RDAP endpoint pass through unchanged and
// keep their DNS verdict. For the rest the RDAP answer replaces the DNS
// guess: 404 confirms availability, 200 means registered unless the body
// says otherwise, and a failed query surfaces as unknown rather than being
// re-presented as available. onResult, if non-nil, is invoked exactly once
// per input in completion order.
func (v *Verifier) Verify(ctx context.Context, results []checker.Result, onResult func(checker.Result)) []checker.Result {
	verified := make([]checker.Result, len(results))
	permits := make(chan struct{}, v.concurrency)

	var callbackMu sync.Mutex
	var wg sync.WaitGroup
	for i, result := range results {
		wg.Add(1)
		go func(i int, result checker.Result) {
			defer wg.Done()

			var updated checker.Result
			endpoint, ok := v.directory.Endpoint(TLDOf(result.Domain))
			if !ok {
				// Expected for TLDs without RDAP service; the DNS verdict stands.
				metrics.RDAPSkipped.Inc()
				updated = result
			} else {
				permits <- struct{}{}
				updated = v.verifyDomain(ctx, result.Domain, endpoint)
				<-permits
				metrics.RDAPQueries.WithLabelValues(updated.Status.String()).Inc()
			}

			verified[i] = updated
			if onResult != nil {
				callbackMu.Lock()
				onResult(updated)
				callbackMu.Unlock()
			}
		}(i, result)
	}
	wg.Wait()

	return verified
}

func (v *Verifier) verifyDomain(ctx context.Context, domain, endpoint string) checker.Result {
	result := checker.Result{Domain: domain, Method: checker.MethodRDAP}

	if err := v.limiter.Wait(ctx); err != nil {
		result.Status = checker.StatusUnknown
		result.Evidence = "verification cancelled"
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"domain/"+domain, nil)
	if err != nil {
		result.Status = checker.StatusUnknown
		result.Evidence = "rdap request failed"
		return result
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := v.client.Do(req)
	if err != nil {
		result.Status = checker.StatusUnknown
		result.Evidence = "rdap query failed"
		return result
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		// The strongest signal of non-registration RDAP can give.
		result.Status = checker.StatusAvailable
		result.Evidence = "rdap 404"
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			result.Status = checker.StatusUnknown
			result.Evidence = "rdap body unreadable"
			return result
		}
		var doc domainResponse
		if err := json.Unmarshal(body, &doc); err != nil {
			result.Status = checker.StatusUnknown
			result.Evidence = "rdap body unparseable"
			return result
		}
		result.Status, result.Evidence = classify(doc)
	default:
		result.Status = checker.StatusUnknown
		result.Evidence = fmt.Sprintf("rdap returned %d", resp.StatusCode)
	}
	return result
}

// classify inspects the status array of a 200 response. Reserved, locked or
// active statuses all mean the name is taken. A 200 with no status array at
// all is still treated as registered; registries answering for unregistered
// names are rare enough that the conservative reading wins.
func classify(doc domainResponse) (checker.Status, string) {
	statuses := make([]string, 0, len(doc.Status))
	for _, s := range doc.Status {
		statuses = append(statuses, strings.ToLower(s))
	}

	for _, s := range statuses {
		if strings.Contains(s, "reserved") {
			return checker.StatusRegistered, "rdap status reserved"
		}
	}
	if len(statuses) > 0 {
		return checker.StatusRegistered, "rdap status " + strings.Join(statuses, ",")
	}
	return checker.StatusRegistered, "rdap 200 with no status"
}
