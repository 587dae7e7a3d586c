// Package pipeline sequences the two-stage classification: a DNS pass over
// the full candidate set, then an RDAP confirmation pass over the
// possibly-available subset.
package pipeline

import (
	"context"
	"fmt"

	"github.com/domainsweep/domainsweep/pkg/checker"
)

// Stage identifies a pipeline phase for progress observers.
type Stage int

const (
	StageDNS Stage = iota
	StageRDAP
)

func (s Stage) String() string {
	if s == StageRDAP {
		return "rdap"
	}
	return "dns"
}

// Event is emitted once per completed domain in a stage, in completion
// order.
type Event struct {
	Stage  Stage
	Result checker.Result
}

// DNSChecker classifies domains at the DNS layer.
type DNSChecker interface {
	Check(ctx context.Context, domains []string, onResult func(checker.Result)) []checker.Result
}

// Verifier re-checks possibly-available domains over RDAP.
type Verifier interface {
	Verify(ctx context.Context, results []checker.Result, onResult func(checker.Result)) []checker.Result
}

// Config holds pipeline wiring. A nil Verifier disables the RDAP stage.
type Config struct {
	DNS      DNSChecker
	Verifier Verifier
	// OnStageStart is called before a stage runs with the number of domains
	// it will process, so displays can size their progress bars.
	OnStageStart func(stage Stage, total int)
	// Observer receives one event per completed domain per stage.
	Observer func(Event)
}

// Pipeline runs the classification stages and merges their results.
type Pipeline struct {
	dns          DNSChecker
	verifier     Verifier
	onStageStart func(stage Stage, total int)
	observer     func(Event)
}

// New creates a pipeline.
func New(config Config) (*Pipeline, error) {
	if config.DNS == nil {
		return nil, fmt.Errorf("pipeline: DNS checker is required")
	}
	return &Pipeline{
		dns:          config.DNS,
		verifier:     config.Verifier,
		onStageStart: config.OnStageStart,
		observer:     config.Observer,
	}, nil
}

// Run classifies every domain in the deduplicated input and returns exactly
// one result per domain, in input order. Domains the DNS stage marks
// possibly available are re-verified over RDAP (when enabled) and the RDAP
// verdicts overwrite the DNS ones, keyed by domain; everything else keeps
// its DNS result. A per-domain failure never aborts the run.
func (p *Pipeline) Run(ctx context.Context, domains []string) ([]checker.Result, error) {
	p.stageStart(StageDNS, len(domains))
	results := p.dns.Check(ctx, domains, p.emit(StageDNS))

	if p.verifier == nil {
		return results, ctx.Err()
	}

	var available []checker.Result
	for _, result := range results {
		if result.Status == checker.StatusAvailable {
			available = append(available, result)
		}
	}
	if len(available) == 0 {
		return results, ctx.Err()
	}

	p.stageStart(StageRDAP, len(available))
	verified := p.verifier.Verify(ctx, available, p.emit(StageRDAP))

	merged := make(map[string]checker.Result, len(verified))
	for _, result := range verified {
		merged[result.Domain] = result
	}
	for i, result := range results {
		if updated, ok := merged[result.Domain]; ok {
			results[i] = updated
		}
	}

	return results, ctx.Err()
}

func (p *Pipeline) stageStart(stage Stage, total int) {
	if p.onStageStart != nil {
		p.onStageStart(stage, total)
	}
}

func (p *Pipeline) emit(stage Stage) func(checker.Result) {
	if p.observer == nil {
		return nil
	}
	return func(result checker.Result) {
		p.observer(Event{Stage: stage, Result: result})
	}
}
