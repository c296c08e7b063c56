package authsync

import (
	"errors"
	"time"
)

// Config groups the tunables of the engine. Configure it once before
// [Builder.Build]; the engine treats it as immutable afterwards.
type Config struct {
	Timeouts TimeoutConfig
	Session  SessionConfig
	Profile  ProfileConfig
	Avatar   AvatarConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// TimeoutConfig holds the client-side deadlines raced against remote auth
// calls. A call losing its race is abandoned, not cancelled: its eventual
// completion is discarded.
type TimeoutConfig struct {
	Register   time.Duration
	Login      time.Duration
	Logout     time.Duration
	Initialize time.Duration
}

// SessionConfig controls session-related local behavior.
type SessionConfig struct {
	// StorageKeyPrefix is the namespacing convention of the backend's
	// persisted auth entries. Logout removes every local key carrying it.
	StorageKeyPrefix string
}

// ProfileConfig controls the remote profile row mapping.
type ProfileConfig struct {
	Table string
}

// AvatarConfig bounds the avatar upload pipeline.
type AvatarConfig struct {
	// MaxFileBytes is the ceiling on the optimized encoding. Larger images
	// are rejected before any remote call.
	MaxFileBytes int64
	ContentType  string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration matching the reference mobile
// app: 10 s register/login deadlines, 5 s logout/initialize deadlines,
// "sb-" token namespacing, a "profiles" table, and a 5 MiB avatar ceiling.
func DefaultConfig() Config {
	return Config{
		Timeouts: TimeoutConfig{
			Register:   10 * time.Second,
			Login:      10 * time.Second,
			Logout:     5 * time.Second,
			Initialize: 5 * time.Second,
		},
		Session: SessionConfig{
			StorageKeyPrefix: "sb-",
		},
		Profile: ProfileConfig{
			Table: "profiles",
		},
		Avatar: AvatarConfig{
			MaxFileBytes: 5 * 1024 * 1024,
			ContentType:  "image/jpeg",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if c.Timeouts.Register <= 0 || c.Timeouts.Login <= 0 {
		return errors.New("register and login timeouts must be positive")
	}
	if c.Timeouts.Logout <= 0 || c.Timeouts.Initialize <= 0 {
		return errors.New("logout and initialize timeouts must be positive")
	}
	if c.Session.StorageKeyPrefix == "" {
		return errors.New("session storage key prefix must not be empty")
	}
	if c.Profile.Table == "" {
		return errors.New("profile table must not be empty")
	}
	if c.Avatar.MaxFileBytes <= 0 {
		return errors.New("avatar max file bytes must be positive")
	}
	if c.Avatar.ContentType == "" {
		return errors.New("avatar content type must not be empty")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}
