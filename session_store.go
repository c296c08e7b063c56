package authsync

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mr-hec24/expo-supabase-auth-starter/internal/await"
)

// SessionStore owns the current authentication session. It wraps the
// remote register/login/logout operations with client-side deadlines,
// normalizes remote failures into the package error taxonomy, and keeps
// the persisted token storage consistent with the local state.
//
// State machine: Uninitialized → Initializing → {Authenticated, Anonymous},
// then Authenticated ⇄ Anonymous driven by login, logout, and remote
// auth-change notifications. Initialized is monotonic: false→true exactly
// once, regardless of how initialization went.
type SessionStore struct {
	cfg      Config
	identity IdentityService
	local    LocalStorage
	router   Router
	audit    *auditDispatcher
	metrics  *Metrics

	mu          sync.Mutex
	state       AuthState
	initialized bool
	session     *Session
	subscribers map[int]func(*Session)
	nextSub     int
	unsubscribe func()
}

func newSessionStore(cfg Config, identity IdentityService, local LocalStorage, router Router, audit *auditDispatcher, metrics *Metrics) *SessionStore {
	return &SessionStore{
		cfg:         cfg,
		identity:    identity,
		local:       local,
		router:      router,
		audit:       audit,
		metrics:     metrics,
		state:       StateUninitialized,
		subscribers: make(map[int]func(*Session)),
	}
}

// State returns the current lifecycle state.
func (s *SessionStore) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialized reports whether Initialize has completed. It never reverts
// to false.
func (s *SessionStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Session returns a copy of the current session, or nil when anonymous.
func (s *SessionStore) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSession(s.session)
}

// Subscribe registers fn to be called with a copy of the session on every
// replacement. The returned function cancels the subscription. Callbacks
// run serially on the goroutine driving the state change.
func (s *SessionStore) Subscribe(fn func(*Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Register creates an account with the identity service. When the service
// issues an immediately-active session, the local session is replaced and
// observers notified. When it withholds the session for email
// verification, Register fails with [ErrPendingVerification] and the local
// session stays empty. The call is bounded by the register deadline;
// exceeding it fails with [ErrTimeout].
func (s *SessionStore) Register(ctx context.Context, email, password, firstName, lastName string) error {
	meta := RegisterMetadata{FirstName: firstName, LastName: lastName}
	result, err := await.Race(ctx, s.cfg.Timeouts.Register, func(ctx context.Context) (RegisterResult, error) {
		return s.identity.Register(ctx, email, password, meta)
	})
	if err != nil {
		s.metrics.Inc(MetricRegisterFailure)
		s.audit.emit(ctx, auditEventRegisterFailure, "", false, err, map[string]string{"email": email})
		return fmt.Errorf("register: %w", err)
	}

	if result.Session == nil {
		s.metrics.Inc(MetricRegisterPending)
		s.audit.emit(ctx, auditEventRegisterPending, result.User.ID, true, nil, nil)
		return fmt.Errorf("register: %w: check your email to verify the account before signing in", ErrPendingVerification)
	}

	s.metrics.Inc(MetricRegisterSuccess)
	s.audit.emit(ctx, auditEventRegisterSuccess, result.Session.UserID, true, nil, nil)
	s.setSession(ctx, result.Session)
	return nil
}

// Login authenticates with the identity service and replaces the local
// session. Rejected credentials fail with [ErrInvalidCredentials]; the
// login deadline applies.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	session, err := await.Race(ctx, s.cfg.Timeouts.Login, func(ctx context.Context) (Session, error) {
		return s.identity.Login(ctx, email, password)
	})
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		s.audit.emit(ctx, auditEventLoginFailure, "", false, err, map[string]string{"email": email})
		return fmt.Errorf("login: %w", err)
	}

	s.metrics.Inc(MetricLoginSuccess)
	s.audit.emit(ctx, auditEventLoginSuccess, session.UserID, true, nil, nil)
	s.setSession(ctx, &session)
	return nil
}

// Logout never fails outwardly. It clears the local session first, so the
// caller is logged out regardless of network health, then best-effort
// removes every persisted auth entry matching the configured key prefix,
// then attempts remote invalidation under the shorter logout deadline.
// Remote and storage failures are recorded as audit events and swallowed.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	userID := ""
	if s.session != nil {
		userID = s.session.UserID
	}
	s.mu.Unlock()

	s.setSession(ctx, nil)
	s.metrics.Inc(MetricLogout)
	s.audit.emit(ctx, auditEventLogout, userID, true, nil, nil)

	s.clearPersistedAuth(ctx)

	if _, err := await.Race(ctx, s.cfg.Timeouts.Logout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.identity.Logout(ctx)
	}); err != nil {
		// Local state is already authoritative.
		s.metrics.Inc(MetricLogoutRemoteFailure)
		s.audit.emit(ctx, auditEventLogoutRemoteFailure, userID, false, err, nil)
	}
}

func (s *SessionStore) clearPersistedAuth(ctx context.Context) {
	keys, err := s.local.GetAllKeys(ctx)
	if err != nil {
		s.audit.emit(ctx, auditEventStorageCleanupFailure, "", false, err, nil)
		return
	}

	var matched []string
	for _, key := range keys {
		if strings.HasPrefix(key, s.cfg.Session.StorageKeyPrefix) {
			matched = append(matched, key)
		}
	}
	if len(matched) == 0 {
		return
	}
	if err := s.local.MultiRemove(ctx, matched); err != nil {
		s.audit.emit(ctx, auditEventStorageCleanupFailure, "", false, err, map[string]string{
			"keys": strings.Join(matched, ","),
		})
	}
}

// Initialize rehydrates a persisted session under the initialize deadline
// and subscribes to the identity service's asynchronous auth-change
// notifications. It runs once per store lifetime; later calls are no-ops.
// Initialization fails open: any rehydration failure is recorded and
// treated as "no session", and Initialized becomes true either way.
func (s *SessionStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return
	}
	s.state = StateInitializing
	s.mu.Unlock()

	session, err := await.Race(ctx, s.cfg.Timeouts.Initialize, func(ctx context.Context) (*Session, error) {
		return s.identity.GetSession(ctx)
	})
	if err != nil {
		session = nil
		s.audit.emit(ctx, auditEventSessionRestoreFailure, "", false, err, nil)
	} else if session != nil {
		s.metrics.Inc(MetricSessionRestored)
		s.audit.emit(ctx, auditEventSessionRestored, session.UserID, true, nil, nil)
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	s.setSession(ctx, session)

	unsubscribe := s.identity.OnAuthStateChange(func(next *Session) {
		s.setSession(context.Background(), next)
	})
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// setSession replaces the session wholesale, derives the lifecycle state,
// notifies subscribers, and emits the navigation effect. Subscribers and
// the router run outside the store lock.
func (s *SessionStore) setSession(ctx context.Context, next *Session) {
	s.mu.Lock()
	s.session = cloneSession(next)
	if s.initialized {
		if next != nil {
			s.state = StateAuthenticated
		} else {
			s.state = StateAnonymous
		}
	}
	initialized := s.initialized
	subscribers := make([]func(*Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	s.metrics.Inc(MetricSessionChange)
	userID := ""
	if next != nil {
		userID = next.UserID
	}
	s.audit.emit(ctx, auditEventAuthStateChange, userID, true, nil, map[string]string{
		"authenticated": fmt.Sprintf("%t", next != nil),
	})

	for _, fn := range subscribers {
		fn(cloneSession(next))
	}

	if initialized {
		if next != nil {
			s.router.Replace(RouteHome)
		} else {
			s.router.Replace(RouteWelcome)
		}
	}
}

func (s *SessionStore) close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func cloneSession(in *Session) *Session {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}
