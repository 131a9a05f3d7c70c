package authgate

import internalmetrics "github.com/kesparza-dev/authgate/internal/metrics"

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricRegisterSuccess    = internalmetrics.MetricRegisterSuccess
	MetricRegisterConflict   = internalmetrics.MetricRegisterConflict
	MetricRegisterFailure    = internalmetrics.MetricRegisterFailure
	MetricLoginSuccess       = internalmetrics.MetricLoginSuccess
	MetricLoginFailure       = internalmetrics.MetricLoginFailure
	MetricLoginRateLimited   = internalmetrics.MetricLoginRateLimited
	MetricMFASuccess         = internalmetrics.MetricMFASuccess
	MetricMFAFailure         = internalmetrics.MetricMFAFailure
	MetricTokenVerifySuccess = internalmetrics.MetricTokenVerifySuccess
	MetricTokenVerifyFailure = internalmetrics.MetricTokenVerifyFailure
	MetricRecoveryOTPSuccess = internalmetrics.MetricRecoveryOTPSuccess
	MetricRecoveryOTPFailure = internalmetrics.MetricRecoveryOTPFailure
	MetricResetSuccess       = internalmetrics.MetricResetSuccess
	MetricResetFailure       = internalmetrics.MetricResetFailure
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a Metrics instance. When cfg.Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
