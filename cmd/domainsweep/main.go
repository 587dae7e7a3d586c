package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/domainsweep/domainsweep/pkg/candidate"
	"github.com/domainsweep/domainsweep/pkg/dnscheck"
	"github.com/domainsweep/domainsweep/pkg/export"
	"github.com/domainsweep/domainsweep/pkg/iana"
	"github.com/domainsweep/domainsweep/pkg/metrics"
	"github.com/domainsweep/domainsweep/pkg/pipeline"
	"github.com/domainsweep/domainsweep/pkg/ratelimit"
	"github.com/domainsweep/domainsweep/pkg/rdap"
	"github.com/domainsweep/domainsweep/pkg/render"
)

type options struct {
	Concurrency     int      `short:"c" long:"concurrency" description:"Maximum concurrent DNS lookups" default:"50"`
	SkipRDAP        bool     `long:"skip-rdap" description:"Skip RDAP verification of possibly available domains (faster but less accurate)"`
	Output          string   `short:"o" long:"output" description:"Export results to FILE (.json, .jsonl or .csv)" value-name:"FILE"`
	TLDs            []string `long:"tld" description:"Restrict the search to specific TLDs (repeatable)" value-name:"TLD"`
	DNSTimeout      int      `long:"dns-timeout" description:"DNS query timeout in seconds" default:"5"`
	RDAPTimeout     int      `long:"rdap-timeout" description:"RDAP query timeout in seconds" default:"10"`
	RDAPRate        float64  `long:"rdap-rate" description:"Maximum RDAP queries per second" default:"10"`
	RDAPConcurrency int      `long:"rdap-concurrency" description:"Maximum concurrent RDAP queries" default:"8"`
	ForceRefresh    bool     `long:"force-refresh" description:"Re-download the IANA TLD list and RDAP bootstrap"`
	MetricsAddr     string   `long:"metrics" description:"Expose Prometheus metrics on ADDR (e.g. :2112)" value-name:"ADDR"`

	Args struct {
		Term string `positional-arg-name:"TERM" description:"Word to search for (runs both exact and domain hack search)"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] TERM"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(opts.MetricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: metrics server: %v\n", err)
			}
		}()
	}

	cacheDir, err := iana.DefaultCacheDir()
	if err != nil {
		return err
	}
	registry := iana.NewClient(nil, cacheDir, iana.DefaultMaxAge)

	tlds, err := registry.TLDs(ctx, opts.ForceRefresh)
	if err != nil {
		return fmt.Errorf("load TLD list: %w", err)
	}

	if len(opts.TLDs) > 0 {
		valid, invalid := candidate.FilterTLDs(tlds, opts.TLDs)
		if len(invalid) > 0 {
			fmt.Fprintf(os.Stderr, "Warning: unknown TLDs skipped: %s\n", strings.Join(invalid, ", "))
		}
		if len(valid) == 0 {
			return fmt.Errorf("no valid TLDs specified")
		}
		tlds = valid
	}

	set := candidate.Generate(opts.Args.Term, tlds)
	if set.Len() == 0 {
		fmt.Println("No domains to check.")
		return nil
	}
	fmt.Fprintf(os.Stderr, "Loaded %d TLDs, checking %d candidate domains\n", len(tlds), set.Len())

	dns, err := dnscheck.NewChecker(dnscheck.Config{
		Timeout:     time.Duration(opts.DNSTimeout) * time.Second,
		Concurrency: opts.Concurrency,
	})
	if err != nil {
		return err
	}

	var verifier pipeline.Verifier
	if !opts.SkipRDAP {
		raw, err := registry.Bootstrap(ctx, opts.ForceRefresh)
		if err != nil {
			return fmt.Errorf("load RDAP bootstrap: %w", err)
		}
		directory, err := rdap.ParseBootstrap(raw)
		if err != nil {
			return err
		}
		limiter, err := ratelimit.New(opts.RDAPRate, ratelimit.DefaultBurst)
		if err != nil {
			return err
		}
		v, err := rdap.NewVerifier(rdap.VerifierConfig{
			Directory:   directory,
			Limiter:     limiter,
			Timeout:     time.Duration(opts.RDAPTimeout) * time.Second,
			Concurrency: opts.RDAPConcurrency,
		})
		if err != nil {
			return err
		}
		verifier = v
	}

	progress := mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(48))
	bars := make(map[pipeline.Stage]*mpb.Bar)

	pipe, err := pipeline.New(pipeline.Config{
		DNS:      dns,
		Verifier: verifier,
		OnStageStart: func(stage pipeline.Stage, total int) {
			name := "Checking domains"
			if stage == pipeline.StageRDAP {
				name = "Verifying via RDAP"
			}
			bars[stage] = progress.AddBar(int64(total),
				mpb.PrependDecorators(
					decor.Name(name, decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
					decor.Percentage(decor.WCSyncSpace),
				),
			)
		},
		Observer: func(e pipeline.Event) {
			if bar, ok := bars[e.Stage]; ok {
				bar.Increment()
			}
		},
	})
	if err != nil {
		return err
	}

	results, err := pipe.Run(ctx, set.Domains())
	progress.Wait()
	if err != nil {
		return err
	}

	render.Table(os.Stdout, results, set.Meta())

	if opts.Output != "" {
		if err := export.Export(results, opts.Output, set.Meta()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results exported to %s\n", opts.Output)
	}

	return nil
}
