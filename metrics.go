package authsync

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricRegisterSuccess counts successful registrations that produced a
	// session.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterFailure counts rejected or timed-out registrations.
	MetricRegisterFailure
	// MetricRegisterPending counts registrations deferred to email
	// verification.
	MetricRegisterPending
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected or timed-out logins.
	MetricLoginFailure
	// MetricLogout counts logout operations (always local-first).
	MetricLogout
	// MetricLogoutRemoteFailure counts swallowed remote logout failures.
	MetricLogoutRemoteFailure
	// MetricSessionRestored counts sessions rehydrated at initialization.
	MetricSessionRestored
	// MetricSessionChange counts every auth-state replacement.
	MetricSessionChange
	// MetricProfileRefreshSuccess counts profile fetches that produced a
	// profile.
	MetricProfileRefreshSuccess
	// MetricProfileRefreshFailure counts profile fetches recorded as error
	// state.
	MetricProfileRefreshFailure
	// MetricProfileCreated counts profiles lazily created from auth
	// metadata.
	MetricProfileCreated
	// MetricProfileUpdateSuccess counts committed profile updates.
	MetricProfileUpdateSuccess
	// MetricProfileUpdateFailure counts failed profile updates.
	MetricProfileUpdateFailure
	// MetricAvatarUploadSuccess counts completed avatar replacements.
	MetricAvatarUploadSuccess
	// MetricAvatarUploadFailure counts avatar uploads that returned a
	// failure result.
	MetricAvatarUploadFailure
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
