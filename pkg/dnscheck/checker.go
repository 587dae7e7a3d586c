// Package dnscheck classifies domains as registered, possibly available or
// unknown by probing for delegation records.
package dnscheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/domainsweep/domainsweep/pkg/checker"
	"github.com/domainsweep/domainsweep/pkg/metrics"
)

const (
	// DefaultConcurrency caps in-flight DNS lookups.
	DefaultConcurrency = 50
	// DefaultTimeout bounds a single DNS query.
	DefaultTimeout = 5 * time.Second
)

// Exchanger sends a single DNS query. *dns.Client satisfies it; tests
// substitute a fake transport.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error)
}

// Config holds checker configuration.
type Config struct {
	Servers     []string
	Timeout     time.Duration
	Concurrency int
	Client      Exchanger
}

// Checker classifies domains via NS and SOA lookups under a concurrency
// ceiling. A checker is safe for use by a single Check call at a time per
// batch; the permit pool is the only shared mutable state.
type Checker struct {
	servers     []string
	timeout     time.Duration
	concurrency int
	client      Exchanger
}

// NewChecker creates a checker. A non-positive concurrency ceiling is a
// configuration error, reported before any network activity.
func NewChecker(config Config) (*Checker, error) {
	if config.Concurrency <= 0 {
		return nil, fmt.Errorf("dnscheck: concurrency must be positive, got %d", config.Concurrency)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if len(config.Servers) == 0 {
		config.Servers = DefaultServers()
	}
	if config.Client == nil {
		config.Client = &dns.Client{Timeout: config.Timeout}
	}
	return &Checker{
		servers:     config.Servers,
		timeout:     config.Timeout,
		concurrency: config.Concurrency,
		client:      config.Client,
	}, nil
}

// DefaultServers returns the system resolvers from /etc/resolv.conf followed
// by well-known public resolvers as fallback.
func DefaultServers() []string {
	servers := []string{
		"8.8.8.8:53",
		"8.8.4.4:53",
		"1.1.1.1:53",
		"1.0.0.1:53",
	}

	config, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err == nil && len(config.Servers) > 0 {
		var system []string
		for _, s := range config.Servers {
			port := config.Port
			if port == "" {
				port = "53"
			}
			system = append(system, net.JoinHostPort(s, port))
		}
		servers = append(system, servers...)
	}

	return servers
}

// Check classifies every domain in the input, returning one result per
// domain in input order. In-flight lookups are capped by the concurrency
// ceiling via a permit pool. onResult, if non-nil, is invoked exactly once
// per completed domain in completion order, which is unrelated to input
// order. A failed or timed-out lookup yields an unknown result; it never
// aborts the batch.
func (c *Checker) Check(ctx context.Context, domains []string, onResult func(checker.Result)) []checker.Result {
	results := make([]checker.Result, len(domains))
	permits := make(chan struct{}, c.concurrency)

	var callbackMu sync.Mutex
	var wg sync.WaitGroup
	for i, domain := range domains {
		wg.Add(1)
		go func(i int, domain string) {
			defer wg.Done()

			var result checker.Result
			select {
			case permits <- struct{}{}:
				result = c.checkDomain(ctx, domain)
				<-permits
			case <-ctx.Done():
				result = checker.Result{
					Domain:   domain,
					Status:   checker.StatusUnknown,
					Method:   checker.MethodDNS,
					Evidence: "check cancelled",
				}
			}

			metrics.DNSChecks.WithLabelValues(result.Status.String()).Inc()
			results[i] = result
			if onResult != nil {
				callbackMu.Lock()
				onResult(result)
				callbackMu.Unlock()
			}
		}(i, domain)
	}
	wg.Wait()

	return results
}

// checkDomain probes NS then SOA. Any answer record proves delegation and
// classifies the domain registered. NXDOMAIN or an empty answer on both
// record types classifies it possibly available. A timeout or server
// failure is a non-definitive outcome and classifies it unknown.
func (c *Checker) checkDomain(ctx context.Context, domain string) checker.Result {
	result := checker.Result{Domain: domain, Method: checker.MethodDNS}

	for _, qtype := range []uint16{dns.TypeNS, dns.TypeSOA} {
		name := dns.TypeToString[qtype]

		resp, err := c.exchange(ctx, domain, qtype)
		if err != nil {
			result.Status = checker.StatusUnknown
			if isTimeout(err) {
				result.Evidence = name + " query timed out"
			} else {
				result.Evidence = name + " query failed"
			}
			return result
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			if len(resp.Answer) > 0 {
				result.Status = checker.StatusRegistered
				result.Evidence = name + " records present"
				return result
			}
			// Empty answer: not definitive, try the next record type.
		case dns.RcodeNameError:
			// NXDOMAIN: keep probing, SOA may still exist for odd zones.
		default:
			result.Status = checker.StatusUnknown
			result.Evidence = name + " query returned " + dns.RcodeToString[resp.Rcode]
			return result
		}
	}

	result.Status = checker.StatusAvailable
	result.Evidence = "no NS or SOA records"
	return result
}

// exchange tries each configured server in order and returns the first
// response. Each attempt carries its own timeout.
func (c *Checker) exchange(ctx context.Context, domain string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range c.servers {
		queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, _, err := c.client.ExchangeContext(queryCtx, msg, server)
		cancel()

		if err == nil && resp != nil {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no response from any DNS server")
	}
	return nil, lastErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
