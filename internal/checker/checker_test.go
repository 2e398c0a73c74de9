package checker

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunProbes_PreservesOrder(t *testing.T) {
	targets := []int{5, 1, 4, 2, 3}
	runner := &Runner{Concurrency: 5}

	results := RunProbes(context.Background(), runner, targets, func(ctx context.Context, n int) int {
		time.Sleep(time.Duration(n) * 5 * time.Millisecond)
		return n * 10
	}, nil)

	want := []int{50, 10, 40, 20, 30}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("results = %v, want %v", results, want)
		}
	}
}

func TestRunProbes_RespectsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	targets := make([]int, 12)

	RunProbes(context.Background(), &Runner{Concurrency: 3}, targets, func(ctx context.Context, _ int) struct{} {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}
	}, nil)

	if got := peak.Load(); got > 3 {
		t.Fatalf("peak concurrency %d exceeds limit 3", got)
	}
}

func TestRunProbes_AppliesPerTargetTimeout(t *testing.T) {
	results := RunProbes(context.Background(), &Runner{Concurrency: 2, Timeout: 20 * time.Millisecond}, []int{1, 2},
		func(ctx context.Context, _ int) bool {
			select {
			case <-ctx.Done():
				return true
			case <-time.After(2 * time.Second):
				return false
			}
		}, nil)

	for i, timedOut := range results {
		if !timedOut {
			t.Errorf("target %d did not observe the deadline", i)
		}
	}
}

func TestRunProbes_CallbackPerTarget(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]int{}

	RunProbes(context.Background(), &Runner{Concurrency: 4, RateLimit: 100}, []string{"a", "b", "c", "d"},
		func(ctx context.Context, s string) string { return s },
		func(index int, result string, duration float64) {
			mu.Lock()
			defer mu.Unlock()
			seen[index]++
			if duration < 0 {
				t.Errorf("negative duration for %d", index)
			}
		})

	if len(seen) != 4 {
		t.Fatalf("expected callbacks for 4 targets, got %v", seen)
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("target %d reported %d times", i, n)
		}
	}
}

func TestRunProbes_Empty(t *testing.T) {
	results := RunProbes(context.Background(), nil, []int{}, func(ctx context.Context, n int) int { return n }, nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestRunHTTP_OneUnreachableAmongFive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	unreachable := "http://" + listener.Addr().String()
	listener.Close()

	raws := []string{
		server.URL + "/a",
		server.URL + "/b",
		unreachable,
		server.URL + "/c",
		server.URL + "/d",
	}

	results := RunHTTP(context.Background(), &Runner{Concurrency: 3}, &HTTPChecker{Timeout: 2 * time.Second}, raws, nil)
	if len(results) != len(raws) {
		t.Fatalf("expected %d results, got %d", len(raws), len(results))
	}
	for i, res := range results {
		if res.Target.Raw != raws[i] {
			t.Errorf("result %d is for %q, want %q", i, res.Target.Raw, raws[i])
		}
		if i == 2 {
			if res.OK() {
				t.Error("expected unreachable target to fail")
			}
			continue
		}
		if !res.OK() {
			t.Errorf("target %d failed: %s", i, res.Error)
		}
	}
}

func TestRunTLS_InvalidEntriesStayInPlace(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	closed := listener.Addr().String()
	listener.Close()

	raws := []string{closed, "example.com:notaport", closed}

	var calls atomic.Int32
	results := RunTLS(context.Background(), &Runner{Concurrency: 2}, &TLSChecker{Timeout: time.Second}, raws,
		func(index int, result TLSResult, duration float64) { calls.Add(1) })

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 callbacks, got %d", calls.Load())
	}

	invalid := results[1]
	if invalid.Target.Raw != "example.com:notaport" {
		t.Errorf("invalid result target = %q", invalid.Target.Raw)
	}
	if !strings.HasPrefix(invalid.Error, "invalid target") {
		t.Errorf("unexpected error text %q", invalid.Error)
	}
	if rec := invalid.Record(); rec.Hostname != "example.com:notaport" {
		t.Errorf("record hostname = %q", rec.Hostname)
	}
	for _, i := range []int{0, 2} {
		if results[i].OK() || results[i].Target.Raw != closed {
			t.Errorf("result %d = %+v", i, results[i])
		}
	}
}

func TestAggregator_MustResultsPanicsOnGap(t *testing.T) {
	agg := NewAggregator[int](2)
	agg.Set(0, 1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an unfilled slot")
		}
	}()
	agg.MustResults()
}

func TestAggregator(t *testing.T) {
	agg := NewAggregator[string](3)
	if agg.Len() != 3 {
		t.Fatalf("Len() = %d", agg.Len())
	}

	agg.Set(2, "c")
	agg.Set(0, "a")
	if agg.Complete() {
		t.Fatal("aggregator with an empty slot must not be complete")
	}
	agg.Set(1, "b")
	if !agg.Complete() {
		t.Fatal("expected complete aggregator")
	}

	results := agg.Results()
	if strings.Join(results, "") != "abc" {
		t.Fatalf("Results() = %v", results)
	}
	results[0] = "z"
	if agg.Results()[0] != "a" {
		t.Fatal("Results must return a copy")
	}
}
