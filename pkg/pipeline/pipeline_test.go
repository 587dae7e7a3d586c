package pipeline

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/domainsweep/domainsweep/pkg/checker"
)

// fakeDNS classifies by the domain's first label: "reg" registered, "avail"
// possibly available, anything else unknown.
type fakeDNS struct {
	calls int
}

func (f *fakeDNS) Check(ctx context.Context, domains []string, onResult func(checker.Result)) []checker.Result {
	f.calls++
	results := make([]checker.Result, len(domains))
	for i, domain := range domains {
		status := checker.StatusUnknown
		switch strings.SplitN(domain, ".", 2)[0] {
		case "reg":
			status = checker.StatusRegistered
		case "avail":
			status = checker.StatusAvailable
		}
		results[i] = checker.Result{Domain: domain, Status: status, Method: checker.MethodDNS}
		if onResult != nil {
			onResult(results[i])
		}
	}
	return results
}

// fakeVerifier records its inputs and flips every domain with an endpoint to
// registered; domains listed in noEndpoint pass through unchanged.
type fakeVerifier struct {
	received   []string
	noEndpoint map[string]bool
}

func (f *fakeVerifier) Verify(ctx context.Context, results []checker.Result, onResult func(checker.Result)) []checker.Result {
	verified := make([]checker.Result, len(results))
	for i, result := range results {
		f.received = append(f.received, result.Domain)
		if f.noEndpoint[result.Domain] {
			verified[i] = result
		} else {
			verified[i] = checker.Result{
				Domain: result.Domain,
				Status: checker.StatusRegistered,
				Method: checker.MethodRDAP,
			}
		}
		if onResult != nil {
			onResult(verified[i])
		}
	}
	return verified
}

func newTestPipeline(t *testing.T, config Config) *Pipeline {
	t.Helper()
	p, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewRequiresDNSChecker(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without DNS checker")
	}
}

func TestRunCompleteness(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		domains := make([]string, n)
		for i := range domains {
			domains[i] = "avail" + string(rune('a'+i)) + ".io"
		}
		p := newTestPipeline(t, Config{DNS: &fakeDNS{}, Verifier: &fakeVerifier{}})
		results, err := p.Run(context.Background(), domains)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != n {
			t.Errorf("N=%d: got %d results", n, len(results))
		}
	}
}

func TestRunOnlyAvailablePassedToVerifier(t *testing.T) {
	verifier := &fakeVerifier{}
	p := newTestPipeline(t, Config{DNS: &fakeDNS{}, Verifier: verifier})

	_, err := p.Run(context.Background(), []string{"reg.com", "avail.com", "odd.com", "avail.io"})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(verifier.received, []string{"avail.com", "avail.io"}) {
		t.Errorf("verifier received %v, want only the available subset", verifier.received)
	}
}

func TestRunMergesVerifiedResults(t *testing.T) {
	verifier := &fakeVerifier{noEndpoint: map[string]bool{"avail.zz": true}}
	p := newTestPipeline(t, Config{DNS: &fakeDNS{}, Verifier: verifier})

	results, err := p.Run(context.Background(), []string{"reg.com", "avail.com", "avail.zz", "odd.net"})
	if err != nil {
		t.Fatal(err)
	}

	expected := map[string]struct {
		status checker.Status
		method checker.Method
	}{
		"reg.com":   {checker.StatusRegistered, checker.MethodDNS},
		"avail.com": {checker.StatusRegistered, checker.MethodRDAP},
		// TLD without an endpoint keeps the DNS verdict untouched.
		"avail.zz": {checker.StatusAvailable, checker.MethodDNS},
		"odd.net":  {checker.StatusUnknown, checker.MethodDNS},
	}
	for _, result := range results {
		want := expected[result.Domain]
		if result.Status != want.status || result.Method != want.method {
			t.Errorf("%s: got %v/%s, want %v/%s",
				result.Domain, result.Status, result.Method, want.status, want.method)
		}
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	p := newTestPipeline(t, Config{DNS: &fakeDNS{}, Verifier: &fakeVerifier{}})

	domains := []string{"reg.com", "avail.com", "odd.net"}
	results, err := p.Run(context.Background(), domains)
	if err != nil {
		t.Fatal(err)
	}
	for i, domain := range domains {
		if results[i].Domain != domain {
			t.Errorf("results[%d].Domain = %q, want %q", i, results[i].Domain, domain)
		}
	}
}

func TestRunWithVerifierDisabled(t *testing.T) {
	p := newTestPipeline(t, Config{DNS: &fakeDNS{}})

	results, err := p.Run(context.Background(), []string{"avail.com"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != checker.StatusAvailable || results[0].Method != checker.MethodDNS {
		t.Errorf("got %v/%s, want possibly available/DNS", results[0].Status, results[0].Method)
	}
}

func TestRunIdempotent(t *testing.T) {
	domains := []string{"reg.com", "avail.com", "odd.net", "avail.io"}

	run := func() []checker.Result {
		p := newTestPipeline(t, Config{DNS: &fakeDNS{}, Verifier: &fakeVerifier{}})
		results, err := p.Run(context.Background(), domains)
		if err != nil {
			t.Fatal(err)
		}
		return results
	}

	if first, second := run(), run(); !reflect.DeepEqual(first, second) {
		t.Errorf("identical runs diverged:\n%v\n%v", first, second)
	}
}

func TestRunEmitsStageEvents(t *testing.T) {
	var starts []Stage
	var totals []int
	events := make(map[Stage]int)

	p := newTestPipeline(t, Config{
		DNS:      &fakeDNS{},
		Verifier: &fakeVerifier{},
		OnStageStart: func(stage Stage, total int) {
			starts = append(starts, stage)
			totals = append(totals, total)
		},
		Observer: func(e Event) { events[e.Stage]++ },
	})

	_, err := p.Run(context.Background(), []string{"reg.com", "avail.com", "avail.io"})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(starts, []Stage{StageDNS, StageRDAP}) {
		t.Errorf("stage starts = %v", starts)
	}
	if !reflect.DeepEqual(totals, []int{3, 2}) {
		t.Errorf("stage totals = %v, want [3 2]", totals)
	}
	if events[StageDNS] != 3 || events[StageRDAP] != 2 {
		t.Errorf("events = %v, want 3 DNS and 2 RDAP", events)
	}
}
