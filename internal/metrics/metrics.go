package metrics

import "sync/atomic"

// MetricID indexes a single counter slot.
type MetricID int

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterConflict
	MetricRegisterFailure
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginRateLimited
	MetricMFASuccess
	MetricMFAFailure
	MetricTokenVerifySuccess
	MetricTokenVerifyFailure
	MetricRecoveryOTPSuccess
	MetricRecoveryOTPFailure
	MetricResetSuccess
	MetricResetFailure

	MetricIDCount
)

// pad counters to separate cache lines so concurrent flows don't contend
// on neighboring slots.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// Config controls whether metrics are collected at all. When disabled,
// every operation is a no-op.
type Config struct {
	Enabled bool
}

// Metrics holds the engine's atomic counters.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].value.Load()
}

func (m *Metrics) TakeSnapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].value.Load()
	}
	return snap
}
