package authsync

import "errors"

// Builder wires the engine's collaborators and configuration. Collect the
// dependencies with the With* methods, then call [Builder.Build] once.
type Builder struct {
	config    Config
	identity  IdentityService
	rows      RowStore
	objects   ObjectStore
	local     LocalStorage
	router    Router
	optimizer ImageOptimizer
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithIdentity sets the remote identity service collaborator.
func (b *Builder) WithIdentity(identity IdentityService) *Builder {
	b.identity = identity
	return b
}

// WithRowStore sets the remote row-store collaborator.
func (b *Builder) WithRowStore(rows RowStore) *Builder {
	b.rows = rows
	return b
}

// WithObjectStore sets the remote object-storage collaborator used for
// avatar uploads.
func (b *Builder) WithObjectStore(objects ObjectStore) *Builder {
	b.objects = objects
	return b
}

// WithLocalStorage sets the persisted device storage collaborator.
func (b *Builder) WithLocalStorage(local LocalStorage) *Builder {
	b.local = local
	return b
}

// WithRouter sets the navigation collaborator. Optional; without one,
// navigation effects are dropped.
func (b *Builder) WithRouter(router Router) *Builder {
	b.router = router
	return b
}

// WithImageOptimizer sets the resize/re-encode primitive for avatar
// uploads.
func (b *Builder) WithImageOptimizer(optimizer ImageOptimizer) *Builder {
	b.optimizer = optimizer
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and dependency wiring and constructs
// the engine.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.identity == nil {
		return nil, errors.New("identity service required")
	}
	if b.rows == nil {
		return nil, errors.New("row store required")
	}
	if b.objects == nil {
		return nil, errors.New("object store required")
	}
	if b.local == nil {
		return nil, errors.New("local storage required")
	}
	if b.optimizer == nil {
		return nil, errors.New("image optimizer required")
	}

	router := b.router
	if router == nil {
		router = noopRouter{}
	}

	audit := newAuditDispatcher(cfg.Audit, b.auditSink)
	metrics := NewMetrics(cfg.Metrics)

	sessions := newSessionStore(cfg, b.identity, b.local, router, audit, metrics)

	uploader := &avatarUploader{
		cfg:       cfg.Avatar,
		objects:   b.objects,
		optimizer: b.optimizer,
		audit:     audit,
	}
	profiles := newProfileStore(cfg, b.rows, b.identity, sessions, uploader, audit, metrics)

	// The profile store reacts to every session replacement for the rest of
	// the engine's lifetime.
	sessions.Subscribe(profiles.handleSessionChange)

	b.built = true

	return &Client{
		config:   cfg,
		sessions: sessions,
		profiles: profiles,
		audit:    audit,
		metrics:  metrics,
	}, nil
}
