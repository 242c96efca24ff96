package cmapi

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter. Values index fixed arrays; the
// set is append-only.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that issued a refresh token.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts logins rejected as ErrAuthFailed.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins denied by the limiter.
	MetricLoginRateLimited
	// MetricTOTPRequired counts logins answered with MFARequired.
	MetricTOTPRequired
	// MetricTOTPSuccess counts accepted TOTP codes across login, enable,
	// and disable.
	MetricTOTPSuccess
	// MetricTOTPFailure counts rejected TOTP codes.
	MetricTOTPFailure
	// MetricTOTPEnabled counts completed TOTP enrollments.
	MetricTOTPEnabled
	// MetricTOTPDisabled counts TOTP removals.
	MetricTOTPDisabled
	// MetricRefreshSuccess counts access tokens minted from a refresh
	// token.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh attempts with an unknown or
	// expired token.
	MetricRefreshFailure
	// MetricValidateSuccess counts access-token validations that
	// resolved a user.
	MetricValidateSuccess
	// MetricValidateFailure counts validations of unknown or expired
	// access tokens.
	MetricValidateFailure
	// MetricLogout counts logout calls, including revokes of already
	// absent tokens.
	MetricLogout
	// MetricSignupSuccess counts created accounts.
	MetricSignupSuccess
	// MetricSignupDuplicate counts signups rejected for a taken
	// username.
	MetricSignupDuplicate
	// MetricSignupRateLimited counts signups denied by the limiter.
	MetricSignupRateLimited
	// MetricRateLimitHit counts limiter denials across all paths.
	MetricRateLimitHit
	// MetricValidateLatency is the Validate duration histogram.
	MetricValidateLatency

	metricIDCount
)

// cache-line padded so adjacent counters don't false-share under load.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

type metricHistogram struct {
	buckets [8]uint64
}

// Metrics holds the engine's in-process counters. All methods are safe for
// concurrent use; Inc and Observe are single atomic adds.
type Metrics struct {
	enabled       bool
	enableLatency bool

	counters   [metricIDCount]paddedCounter
	histograms [metricIDCount]metricHistogram
}

// NewMetrics builds a Metrics instance per cfg. A disabled instance keeps
// every operation a no-op.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Inc adds one to the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a duration sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram,
// as produced by Snapshot.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// Snapshot copies all counters and histograms. The copy is not atomic
// across metrics; individual values are.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, len(m.histograms[MetricValidateLatency].buckets))
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		snap.Histograms[MetricValidateLatency] = buckets
	}

	return snap
}

// bucketIndex maps a duration to one of eight latency buckets with upper
// bounds 5, 10, 25, 50, 100, 250, 500 ms and +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()
	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
