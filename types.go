package authsync

import (
	"context"
	"time"
)

// AuthState is the lifecycle state of the [SessionStore].
type AuthState uint8

const (
	// StateUninitialized is the state before Initialize has been called.
	StateUninitialized AuthState = iota
	// StateInitializing is the state while the persisted session is being
	// rehydrated.
	StateInitializing
	// StateAnonymous means initialization finished with no active session.
	StateAnonymous
	// StateAuthenticated means an active session is held.
	StateAuthenticated
)

// Session is the local representation of an authenticated principal. The
// token fields are opaque to the engine: they are forwarded to adapters,
// persisted and cleared, never inspected.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// User is the authoritative user record held by the identity service,
// including the registration metadata used to seed a new profile.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// Profile is the mutable user-facing record keyed by the session's user
// identifier. Optional fields are pointers so an absent value and an
// explicit null stay distinguishable across the row-store boundary.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial-field update request. Nil fields are left
// untouched by the remote store.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UploadResult is the transient outcome of an avatar upload. It is a value,
// not an error: the upload pipeline never lets a failure escape as one.
type UploadResult struct {
	Success  bool
	ImageURL string
	Error    string
}

// RegisterMetadata carries the optional name fields supplied at sign-up.
// The identity service stores them with the user record; the profile
// creation path reads them back.
type RegisterMetadata struct {
	FirstName string
	LastName  string
}

// RegisterResult is returned by [IdentityService.Register]. Session is nil
// when the service requires email verification before issuing one.
type RegisterResult struct {
	Session *Session
	User    User
}

// IdentityService is the remote authentication collaborator. All methods
// are fallible; implementations map service error bodies onto the package
// error taxonomy (ErrValidation, ErrInvalidCredentials, ErrRemote).
type IdentityService interface {
	Register(ctx context.Context, email, password string, meta RegisterMetadata) (RegisterResult, error)
	Login(ctx context.Context, email, password string) (Session, error)
	Logout(ctx context.Context) error
	// GetSession rehydrates a previously persisted session. A nil session
	// with a nil error means "no session persisted".
	GetSession(ctx context.Context) (*Session, error)
	GetCurrentUser(ctx context.Context) (User, error)
	// OnAuthStateChange registers a callback invoked on every asynchronous
	// auth-state notification. The returned function unsubscribes it.
	OnAuthStateChange(fn func(*Session)) (unsubscribe func())
}

// RowStore is the remote relational row collaborator. dest is a pointer the
// returned row is decoded into. SelectOne returns [ErrRowNotFound] when the
// filter matches nothing.
type RowStore interface {
	SelectOne(ctx context.Context, table string, filter map[string]string, dest any) error
	Insert(ctx context.Context, table string, row any, dest any) error
	Update(ctx context.Context, table string, filter map[string]string, partial any, dest any) error
}

// ObjectStore is the remote object-storage collaborator, scoped to one
// bucket. Upload must reject keys that already exist.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, keys []string) error
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}

// LocalStorage is the persisted key-value store on the device. The engine
// itself touches it only for auth-token cleanup on logout; identity
// adapters use it to persist session material.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	GetAllKeys(ctx context.Context) ([]string, error)
	MultiRemove(ctx context.Context, keys []string) error
}

// Route is a navigation target emitted to the [Router] collaborator.
type Route string

const (
	// RouteHome is navigated to when a session becomes active.
	RouteHome Route = "/"
	// RouteWelcome is navigated to when the session is cleared.
	RouteWelcome Route = "/welcome"
)

// Router receives fire-and-forget navigation effects from session state
// transitions.
type Router interface {
	Replace(route Route)
}

// RouterFunc adapts a plain function to the [Router] interface.
type RouterFunc func(Route)

// Replace calls f(route).
func (f RouterFunc) Replace(route Route) { f(route) }

type noopRouter struct{}

func (noopRouter) Replace(Route) {}

// ImageOptimizer is the device-side resize/re-encode primitive consumed by
// the avatar upload pipeline. It reads the local image reference, bounds
// its dimensions, and returns the re-encoded bytes.
type ImageOptimizer interface {
	Optimize(ctx context.Context, localURI string) ([]byte, error)
}
