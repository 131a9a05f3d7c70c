package metrics

import (
	"sync"
	"testing"
)

func TestCountersIncrement(t *testing.T) {
	m := New(Config{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)

	if got := m.Get(MetricLoginSuccess); got != 2 {
		t.Fatalf("login success = %d, want 2", got)
	}
	if got := m.Get(MetricLoginFailure); got != 1 {
		t.Fatalf("login failure = %d, want 1", got)
	}
	if got := m.Get(MetricRegisterSuccess); got != 0 {
		t.Fatalf("untouched counter = %d, want 0", got)
	}
}

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(Config{Enabled: false})

	m.Inc(MetricLoginSuccess)
	if got := m.Get(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled counter = %d, want 0", got)
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricLoginSuccess)
	if got := nilMetrics.Get(MetricLoginSuccess); got != 0 {
		t.Fatalf("nil counter = %d, want 0", got)
	}
}

func TestOutOfRangeIDsIgnored(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricID(-1))
	m.Inc(MetricIDCount)
	if got := m.Get(MetricID(-1)); got != 0 {
		t.Fatalf("out-of-range get = %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricResetSuccess)

	snap := m.TakeSnapshot()
	if snap.Counters[MetricResetSuccess] != 1 {
		t.Fatalf("snapshot = %d, want 1", snap.Counters[MetricResetSuccess])
	}

	// Snapshots are detached copies.
	m.Inc(MetricResetSuccess)
	if snap.Counters[MetricResetSuccess] != 1 {
		t.Fatal("snapshot mutated after the fact")
	}
}

func TestConcurrentIncrements(t *testing.T) {
	m := New(Config{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricMFASuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Get(MetricMFASuccess); got != workers*perWorker {
		t.Fatalf("counter = %d, want %d", got, workers*perWorker)
	}
}
