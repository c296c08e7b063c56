package authsync

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Audit event types emitted by the engine. Swallowed failures — paths the
// contract forbids from failing outwardly, like logout and initialization —
// are only observable through these events.
const (
	auditEventRegisterSuccess       = "register_success"
	auditEventRegisterFailure       = "register_failure"
	auditEventRegisterPending       = "register_pending_verification"
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventLogout                = "logout"
	auditEventLogoutRemoteFailure   = "logout_remote_failure"
	auditEventStorageCleanupFailure = "storage_cleanup_failure"
	auditEventSessionRestored       = "session_restored"
	auditEventSessionRestoreFailure = "session_restore_failure"
	auditEventAuthStateChange       = "auth_state_change"
	auditEventProfileRefreshFailure = "profile_refresh_failure"
	auditEventProfileCreated        = "profile_created"
	auditEventProfileUpdateSuccess  = "profile_update_success"
	auditEventProfileUpdateFailure  = "profile_update_failure"
	auditEventProfileUpdateStale    = "profile_update_stale_discarded"
	auditEventAvatarUploadSuccess   = "avatar_upload_success"
	auditEventAvatarUploadFailure   = "avatar_upload_failure"
	auditEventAvatarCleanupFailure  = "avatar_cleanup_failure"
)

// AuditEvent is a structured record of one engine action.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards all audit events.
type NoOpSink struct{}

// Emit does nothing.
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel, for consumers
// that drain them on their own goroutine.
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

// Emit delivers event unless ctx is done first.
func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line to an io.Writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a JSONWriterSink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit marshals event and writes it followed by a newline.
func (s *JSONWriterSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
