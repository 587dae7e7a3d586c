package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DNSChecks counts completed DNS classifications by resulting status.
	DNSChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domainsweep",
		Subsystem: "dns",
		Name:      "checks_total",
		Help:      "Completed DNS availability checks by resulting status.",
	}, []string{"status"})

	// RDAPQueries counts completed RDAP verifications by resulting status.
	RDAPQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domainsweep",
		Subsystem: "rdap",
		Name:      "queries_total",
		Help:      "Completed RDAP verifications by resulting status.",
	}, []string{"status"})

	// RDAPSkipped counts domains whose TLD has no RDAP endpoint.
	RDAPSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "domainsweep",
		Subsystem: "rdap",
		Name:      "skipped_total",
		Help:      "Domains skipped during RDAP verification because their TLD has no endpoint.",
	})
)

// Serve exposes the Prometheus /metrics endpoint on addr. It blocks, so run
// it in its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
