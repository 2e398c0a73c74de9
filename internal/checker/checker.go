package checker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ResultFunc is called once per target as soon as its result is known.
// It may be invoked from several goroutines at once.
type ResultFunc[R any] func(index int, result R, duration float64)

// Runner orchestrates the execution of probes with concurrency and rate limiting.
// A Concurrency of 1 probes targets one at a time.
type Runner struct {
	Concurrency int           // Maximum number of concurrent probes
	RateLimit   int           // Probes per second (global); 0 disables limiting
	Timeout     time.Duration // Overall deadline per target; 0 leaves it to the prober
}

// RunProbes executes probe against every target using a bounded worker pool.
// Results are written by index, so the returned slice is in target order and
// holds exactly one entry per target.
func RunProbes[T any, R any](ctx context.Context, r *Runner, targets []T, probe func(context.Context, T) R, onResult ResultFunc[R]) []R {
	agg := NewAggregator[R](len(targets))
	if len(targets) == 0 {
		return agg.Results()
	}

	concurrency := 1
	var limiter *rate.Limiter
	var timeout time.Duration
	if r != nil {
		if r.Concurrency > 1 {
			concurrency = r.Concurrency
		}
		if r.RateLimit > 0 {
			limiter = rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)
		}
		timeout = r.Timeout
	}

	// Worker pool
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(i int, t T) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			// A cancelled context surfaces through the probe's own error path.
			if limiter != nil {
				_ = limiter.Wait(ctx)
			}

			start := time.Now()

			probeCtx, cancel := ctx, context.CancelFunc(func() {})
			if timeout > 0 {
				probeCtx, cancel = context.WithTimeout(ctx, timeout)
			}
			defer cancel()

			result := probe(probeCtx, t)
			agg.Set(i, result)

			if onResult != nil {
				onResult(i, result, time.Since(start).Seconds())
			}
		}(i, target)
	}

	wg.Wait()
	return agg.MustResults()
}

// Aggregator collects exactly one result per target slot, preserving target
// order. Each slot is written by a single goroutine, so no locking is needed.
type Aggregator[R any] struct {
	results []R
	filled  []bool
}

// NewAggregator returns an aggregator sized for n targets.
func NewAggregator[R any](n int) *Aggregator[R] {
	return &Aggregator[R]{
		results: make([]R, n),
		filled:  make([]bool, n),
	}
}

// Set stores the result for slot i.
func (a *Aggregator[R]) Set(i int, result R) {
	a.results[i] = result
	a.filled[i] = true
}

// Len returns the number of slots.
func (a *Aggregator[R]) Len() int {
	return len(a.results)
}

// Complete reports whether every slot holds a result.
func (a *Aggregator[R]) Complete() bool {
	for _, ok := range a.filled {
		if !ok {
			return false
		}
	}
	return true
}

// MustResults returns the results and panics when a slot was never filled.
// Every target owns exactly one slot, so a gap is a programming error.
func (a *Aggregator[R]) MustResults() []R {
	if !a.Complete() {
		panic(fmt.Sprintf("checker: aggregator has unfilled slots (%d targets)", a.Len()))
	}
	return a.Results()
}

// Results returns a copy of the collected results in slot order.
func (a *Aggregator[R]) Results() []R {
	out := make([]R, len(a.results))
	copy(out, a.results)
	return out
}

// RunTLS parses each raw target, probes the valid ones and returns one result
// per entry in input order. Malformed entries become error results in place.
func RunTLS(ctx context.Context, r *Runner, c *TLSChecker, raws []string, onResult ResultFunc[TLSResult]) []TLSResult {
	return runBatch(ctx, r, raws, ParseTLSTarget, func(raw string, err error) TLSResult {
		return TLSResult{Target: TLSTarget{Raw: raw}, Error: err.Error()}
	}, c.Probe, onResult)
}

// RunHTTP is the HTTP counterpart of RunTLS.
func RunHTTP(ctx context.Context, r *Runner, h *HTTPChecker, raws []string, onResult ResultFunc[HTTPResult]) []HTTPResult {
	return runBatch(ctx, r, raws, ParseHTTPTarget, func(raw string, err error) HTTPResult {
		return HTTPResult{Target: HTTPTarget{Raw: raw}, Error: err.Error()}
	}, h.Probe, onResult)
}

func runBatch[T any, R any](
	ctx context.Context,
	r *Runner,
	raws []string,
	parse func(string) (T, error),
	invalid func(string, error) R,
	probe func(context.Context, T) R,
	onResult ResultFunc[R],
) []R {
	agg := NewAggregator[R](len(raws))

	slots := make([]int, 0, len(raws))
	targets := make([]T, 0, len(raws))
	for i, raw := range raws {
		target, err := parse(raw)
		if err != nil {
			res := invalid(raw, err)
			agg.Set(i, res)
			if onResult != nil {
				onResult(i, res, 0)
			}
			continue
		}
		slots = append(slots, i)
		targets = append(targets, target)
	}

	probed := RunProbes(ctx, r, targets, probe, func(j int, res R, duration float64) {
		if onResult != nil {
			onResult(slots[j], res, duration)
		}
	})
	for j, res := range probed {
		agg.Set(slots[j], res)
	}

	return agg.MustResults()
}
