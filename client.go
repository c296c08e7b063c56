package authsync

// Client owns the two cooperating stores and the engine's observability
// plumbing. Construct it through [Builder.Build]; there are no ambient
// singletons.
type Client struct {
	config   Config
	sessions *SessionStore
	profiles *ProfileStore
	audit    *auditDispatcher
	metrics  *Metrics
}

// Sessions returns the session store.
func (c *Client) Sessions() *SessionStore {
	return c.sessions
}

// Profiles returns the profile store.
func (c *Client) Profiles() *ProfileStore {
	return c.profiles
}

// Close detaches the remote auth-change subscription and flushes the audit
// dispatcher.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.sessions != nil {
		c.sessions.close()
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped by a full
// buffer.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}
