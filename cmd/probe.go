package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khanhnv2901/seca-probe/internal/checker"
	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var tlsCmd = &cobra.Command{
	Use:   "tls",
	Short: "Audit the negotiated TLS version and cipher of host:port targets",
	Long: `Perform one TLS handshake per target (TLS 1.2 floor) and report the
negotiated protocol version, cipher suite and key length.

Targets use host[:port] form; the port defaults to 443.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbeCommand(cmd, probeTLS)
	},
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Check redirect behaviour and security headers of web origins",
	Long: `Follow each URL's redirect chain by hand (at most --max-redirects
responses), flag HTTPS to HTTP downgrades and evaluate the security headers of
the final response.

URLs without a scheme default to https://.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbeCommand(cmd, probeHTTP)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the TLS and HTTP probes against the same targets",
	Long: `Run the TLS and HTTP batches concurrently. URL targets are reduced to
host[:port] for the TLS probe; bare host names are used unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbeCommand(cmd, probeAll)
	},
}

// probeRun carries everything a probe mode needs for one invocation.
type probeRun struct {
	ctx      context.Context
	cfg      ProbeRuntimeConfig
	targets  []string
	runner   *checker.Runner
	progress *progressPrinter
	out      io.Writer
}

// probeMode runs one batch, prints it and returns the document to export.
type probeMode func(run *probeRun) (any, error)

// runProbeCommand executes a probe command with the given mode.
// This is the common execution pattern shared by tls, http and all.
func runProbeCommand(cmd *cobra.Command, mode probeMode) error {
	cfg := cliConfig.Probe

	format, err := ParseOutputFormat(cfg.Format)
	if err != nil {
		return err
	}

	targets, err := checker.GatherTargets(checker.TargetSources{
		Single: cfg.Target,
		List:   cfg.Targets,
		File:   cfg.InputFile,
	})
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "\n%s Received %s, finishing in-flight targets...\n", colorWarn("!"), sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	run := &probeRun{
		ctx:     ctx,
		cfg:     cfg,
		targets: targets,
		runner: &checker.Runner{
			Concurrency: cfg.Concurrency,
			RateLimit:   cfg.RateLimit,
		},
		out: cmd.OutOrStdout(),
	}

	if cfg.ProgressEnabled {
		total := len(targets)
		if cmd.Name() == "all" {
			total *= 2
		}
		run.progress = newProgressPrinter(total, "probe "+cmd.Name())
		run.progress.Start()
	}

	start := time.Now()
	logInfof("starting %s: targets=%d concurrency=%d rate=%d", cmd.Name(), len(targets), cfg.Concurrency, cfg.RateLimit)

	doc, err := mode(run)
	if run.progress != nil {
		run.progress.Stop()
	}
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		fmt.Fprintf(run.out, "\n%s Run cancelled. Unfinished targets are reported as errors.\n", colorWarn("!"))
	}

	if cfg.OutputPath != "" {
		path, err := writeOutputFile(resultsDir, cfg.OutputPath, format, doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(run.out, "\n%s %s\n", colorInfo("Report written to:"), path)
	}

	logInfof("%s complete in %s", cmd.Name(), time.Since(start).Round(time.Millisecond))
	return nil
}

func probeTLS(run *probeRun) (any, error) {
	results := runTLSBatch(run, run.targets)
	printTLSConsole(run.out, results)
	return tlsRecords(results), nil
}

func probeHTTP(run *probeRun) (any, error) {
	results := runHTTPBatch(run, run.targets)
	printHTTPConsole(run.out, results)
	return httpRecords(results), nil
}

func probeAll(run *probeRun) (any, error) {
	tlsTargets := make([]string, 0, len(run.targets))
	for _, target := range run.targets {
		tlsTargets = append(tlsTargets, checker.TLSEntry(target))
	}

	var tlsResults []checker.TLSResult
	var httpResults []checker.HTTPResult

	g, gctx := errgroup.WithContext(run.ctx)
	batch := *run
	batch.ctx = gctx

	g.Go(func() error {
		tlsResults = runTLSBatch(&batch, tlsTargets)
		return nil
	})
	g.Go(func() error {
		httpResults = runHTTPBatch(&batch, run.targets)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	printTLSConsole(run.out, tlsResults)
	fmt.Fprintln(run.out)
	printHTTPConsole(run.out, httpResults)

	return CombinedOutput{TLS: tlsRecords(tlsResults), HTTP: httpRecords(httpResults)}, nil
}

func runTLSBatch(run *probeRun, targets []string) []checker.TLSResult {
	tlsChecker := &checker.TLSChecker{
		Timeout:            probeTimeout(run.cfg.TimeoutSecs, consts.DefaultTLSTimeout),
		InsecureSkipVerify: run.cfg.Insecure,
	}
	runner := *run.runner
	runner.Timeout = tlsChecker.Timeout

	return checker.RunTLS(run.ctx, &runner, tlsChecker, targets, func(index int, res checker.TLSResult, duration float64) {
		flagged := res.Finding != nil && (res.Finding.WeakProtocol || res.Finding.WeakCipher)
		logDebugw("tls target complete", "checker", tlsChecker.Name(), "target", targets[index], "ok", res.OK(), "flagged", flagged, "duration", duration)
		if run.progress != nil {
			run.progress.Increment(res.OK(), flagged, duration)
		}
	})
}

func runHTTPBatch(run *probeRun, targets []string) []checker.HTTPResult {
	httpChecker := &checker.HTTPChecker{
		Timeout:            probeTimeout(run.cfg.TimeoutSecs, consts.DefaultHTTPTimeout),
		MaxRedirects:       run.cfg.MaxRedirects,
		InsecureSkipVerify: run.cfg.Insecure,
		UserAgent:          "seca-probe/" + Version,
	}
	runner := *run.runner
	runner.Timeout = chainDeadline(httpChecker.Timeout, httpChecker.MaxRedirects)

	return checker.RunHTTP(run.ctx, &runner, httpChecker, targets, func(index int, res checker.HTTPResult, duration float64) {
		flagged := res.Finding != nil && (res.Finding.HTTPSDowngrade || len(res.Finding.MissingRequiredHeaders) > 0)
		logDebugw("http target complete", "checker", httpChecker.Name(), "target", targets[index], "ok", res.OK(), "flagged", flagged, "duration", duration)
		if run.progress != nil {
			run.progress.Increment(res.OK(), flagged, duration)
		}
	})
}

func probeTimeout(secs int, fallback time.Duration) time.Duration {
	if secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// chainDeadline bounds a whole redirect walk: one per-hop timeout per response.
func chainDeadline(perHop time.Duration, maxRedirects int) time.Duration {
	if maxRedirects <= 0 {
		maxRedirects = consts.MaxRedirectHops
	}
	return perHop * time.Duration(maxRedirects)
}

func logInfof(template string, args ...any) {
	if logger != nil {
		logger.Infof(template, args...)
	}
}

func logDebugw(msg string, keysAndValues ...any) {
	if logger != nil {
		logger.Debugw(msg, keysAndValues...)
	}
}

func addProbeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&cliConfig.Probe.Target, "target", cliConfig.Probe.Target, "single target (host[:port] or URL)")
	flags.StringArrayVar(&cliConfig.Probe.Targets, "targets", cliConfig.Probe.Targets, "comma-separated list of targets (repeatable)")
	flags.StringVarP(&cliConfig.Probe.InputFile, "input", "i", cliConfig.Probe.InputFile, "file with one target per line (# comments allowed)")
	flags.IntVarP(&cliConfig.Probe.TimeoutSecs, "timeout", "t", cliConfig.Probe.TimeoutSecs, "timeout in seconds per handshake / per HTTP hop (0 = 5s TLS, 10s HTTP)")
	flags.IntVarP(&cliConfig.Probe.Concurrency, "concurrency", "c", cliConfig.Probe.Concurrency, "max concurrent probes")
	flags.IntVarP(&cliConfig.Probe.RateLimit, "rate", "r", cliConfig.Probe.RateLimit, "probes per second (global, 0 = unlimited)")
	flags.IntVar(&cliConfig.Probe.MaxRedirects, "max-redirects", cliConfig.Probe.MaxRedirects, "maximum responses recorded per redirect chain")
	flags.BoolVar(&cliConfig.Probe.Insecure, "insecure", cliConfig.Probe.Insecure, "skip certificate verification")
	flags.StringVarP(&cliConfig.Probe.OutputPath, "output", "o", cliConfig.Probe.OutputPath, "write records to this file (relative paths go under results_dir)")
	flags.StringVarP(&cliConfig.Probe.Format, "format", "f", cliConfig.Probe.Format, "output file format (json|yaml)")
	flags.BoolVar(&cliConfig.Probe.ProgressEnabled, "progress", cliConfig.Probe.ProgressEnabled, "display live progress")
}

func init() {
	addProbeFlags(tlsCmd)
	addProbeFlags(httpCmd)
	addProbeFlags(allCmd)
}
