package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
)

// expiryMargin is how long before the access token's exp claim a persisted
// session is refreshed rather than returned as-is.
const expiryMargin = 30 * time.Second

// Auth adapts GoTrue to [authsync.IdentityService]. It persists the active
// session as JSON under the project's sb- storage key, so the engine's
// logout cleanup and a later GetSession both find it.
type Auth struct {
	rest       *restClient
	local      authsync.LocalStorage
	storageKey string

	mu          sync.Mutex
	current     *storedSession
	subscribers map[int]func(*authsync.Session)
	nextSub     int
}

var _ authsync.IdentityService = (*Auth)(nil)
var _ TokenSource = (*Auth)(nil)

func newAuth(rest *restClient, local authsync.LocalStorage, storageKey string) *Auth {
	return &Auth{
		rest:        rest,
		local:       local,
		storageKey:  storageKey,
		subscribers: make(map[int]func(*authsync.Session)),
	}
}

// storedSession is the persisted shape, compatible with what supabase-js
// writes under the same key.
type storedSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    int64      `json:"expires_at,omitempty"`
	User         storedUser `json:"user"`
}

type storedUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user_metadata"`
}

// AccessToken returns the current session's bearer token, empty when
// signed out.
func (a *Auth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return ""
	}
	return a.current.AccessToken
}

// Register creates an account. When the project requires email
// verification, GoTrue returns a bare user with no token material and the
// result carries a nil session.
func (a *Auth) Register(ctx context.Context, email, password string, meta authsync.RegisterMetadata) (authsync.RegisterResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"first_name": meta.FirstName,
			"last_name":  meta.LastName,
		},
	}

	var resp struct {
		storedSession
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"user_metadata"`
	}
	if err := a.rest.doJSON(ctx, "POST", "/auth/v1/signup", "", nil, body, &resp); err != nil {
		return authsync.RegisterResult{}, mapAuthError(err)
	}

	if resp.AccessToken == "" {
		return authsync.RegisterResult{
			User: authsync.User{
				ID:        resp.ID,
				Email:     resp.Email,
				FirstName: resp.UserMetadata.FirstName,
				LastName:  resp.UserMetadata.LastName,
			},
		}, nil
	}

	session := a.persist(ctx, resp.storedSession)
	return authsync.RegisterResult{
		Session: session,
		User: authsync.User{
			ID:        resp.User.ID,
			Email:     resp.User.Email,
			FirstName: resp.User.UserMetadata.FirstName,
			LastName:  resp.User.UserMetadata.LastName,
		},
	}, nil
}

// Login exchanges credentials for a session and persists it.
func (a *Auth) Login(ctx context.Context, email, password string) (authsync.Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp storedSession
	if err := a.rest.doJSON(ctx, "POST", "/auth/v1/token?grant_type=password", "", nil, body, &resp); err != nil {
		return authsync.Session{}, mapAuthError(err)
	}
	return *a.persist(ctx, resp), nil
}

// Logout clears the persisted session first, then invalidates the token
// remotely. The remote failure is returned; local state is already clean.
func (a *Auth) Logout(ctx context.Context) error {
	a.mu.Lock()
	token := ""
	if a.current != nil {
		token = a.current.AccessToken
	}
	a.current = nil
	a.mu.Unlock()

	if err := a.local.RemoveItem(ctx, a.storageKey); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	a.notify(nil)

	if token == "" {
		return nil
	}
	if err := a.rest.doJSON(ctx, "POST", "/auth/v1/logout", token, nil, nil, nil); err != nil {
		return mapAuthError(err)
	}
	return nil
}

// GetSession rehydrates the persisted session, refreshing it when the
// access token is expired or about to be. No persisted session is not an
// error.
func (a *Auth) GetSession(ctx context.Context) (*authsync.Session, error) {
	raw, ok, err := a.local.GetItem(ctx, a.storageKey)
	if err != nil {
		return nil, fmt.Errorf("read persisted session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var stored storedSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode persisted session: %w", err)
	}

	if tokenNeedsRefresh(stored) {
		body := map[string]string{"refresh_token": stored.RefreshToken}
		var refreshed storedSession
		if err := a.rest.doJSON(ctx, "POST", "/auth/v1/token?grant_type=refresh_token", "", nil, body, &refreshed); err != nil {
			return nil, mapAuthError(err)
		}
		stored = refreshed
	}

	return a.persist(ctx, stored), nil
}

// tokenNeedsRefresh checks the access token's exp claim without verifying
// the signature; verification is the backend's job, the client only needs
// the timestamp.
func tokenNeedsRefresh(stored storedSession) bool {
	deadline := time.Unix(stored.ExpiresAt, 0)
	token, _, err := jwt.NewParser().ParseUnverified(stored.AccessToken, jwt.MapClaims{})
	if err == nil {
		if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
			deadline = exp.Time
		}
	}
	if deadline.IsZero() || deadline.Unix() == 0 {
		return false
	}
	return time.Now().After(deadline.Add(-expiryMargin))
}

// GetCurrentUser fetches the authoritative user record, including the
// registration metadata kept in user_metadata.
func (a *Auth) GetCurrentUser(ctx context.Context) (authsync.User, error) {
	token := a.AccessToken()
	if token == "" {
		return authsync.User{}, authsync.ErrNotAuthenticated
	}

	var user storedUser
	if err := a.rest.doJSON(ctx, "GET", "/auth/v1/user", token, nil, nil, &user); err != nil {
		return authsync.User{}, mapAuthError(err)
	}
	return authsync.User{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.UserMetadata.FirstName,
		LastName:  user.UserMetadata.LastName,
	}, nil
}

// OnAuthStateChange registers fn for every session replacement this
// adapter performs. Callbacks run serially on the goroutine driving the
// change.
func (a *Auth) OnAuthStateChange(fn func(*authsync.Session)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

// persist installs stored as the current session, writes it to local
// storage, and notifies subscribers. Persistence failures do not block the
// in-memory session.
func (a *Auth) persist(ctx context.Context, stored storedSession) *authsync.Session {
	a.mu.Lock()
	a.current = &stored
	a.mu.Unlock()

	if data, err := json.Marshal(stored); err == nil {
		_ = a.local.SetItem(ctx, a.storageKey, string(data))
	}

	session := sessionFromStored(stored)
	a.notify(session)
	return session
}

func (a *Auth) notify(session *authsync.Session) {
	a.mu.Lock()
	fns := make([]func(*authsync.Session), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		var copied *authsync.Session
		if session != nil {
			c := *session
			copied = &c
		}
		fn(copied)
	}
}

func sessionFromStored(stored storedSession) *authsync.Session {
	return &authsync.Session{
		UserID:       stored.User.ID,
		Email:        stored.User.Email,
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
	}
}

// mapAuthError translates GoTrue error bodies into the engine taxonomy.
// Unmatched API errors already unwrap to [authsync.ErrRemote].
func mapAuthError(err error) error {
	var api *apiError
	if !errors.As(err, &api) {
		return err
	}
	msg := strings.ToLower(api.Message)
	switch {
	case strings.Contains(msg, "already registered"),
		strings.Contains(msg, "password should be at least"),
		strings.Contains(msg, "invalid email"),
		strings.Contains(msg, "unable to validate email"):
		return fmt.Errorf("%w: %s", authsync.ErrValidation, api.Message)
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid_grant"),
		strings.Contains(msg, "invalid refresh token"):
		return fmt.Errorf("%w: %s", authsync.ErrInvalidCredentials, api.Message)
	}
	return err
}
