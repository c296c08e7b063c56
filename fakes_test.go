package authsync

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeIdentity is a scriptable IdentityService.
type fakeIdentity struct {
	mu sync.Mutex

	registerResult RegisterResult
	registerErr    error

	loginSession Session
	loginErr     error
	loginDelay   time.Duration

	logoutErr   error
	logoutDelay time.Duration
	logoutCalls int

	session         *Session
	sessionErr      error
	sessionDelay    time.Duration
	getSessionCalls int

	currentUser    User
	currentUserErr error

	subscribers []func(*Session)
}

func (f *fakeIdentity) Register(_ context.Context, _, _ string, _ RegisterMetadata) (RegisterResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registerResult, f.registerErr
}

func (f *fakeIdentity) Login(_ context.Context, _, _ string) (Session, error) {
	f.mu.Lock()
	delay, session, err := f.loginDelay, f.loginSession, f.loginErr
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return session, err
}

func (f *fakeIdentity) Logout(context.Context) error {
	f.mu.Lock()
	delay, err := f.logoutDelay, f.logoutErr
	f.logoutCalls++
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (f *fakeIdentity) GetSession(context.Context) (*Session, error) {
	f.mu.Lock()
	delay, session, err := f.sessionDelay, f.session, f.sessionErr
	f.getSessionCalls++
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return session, err
}

func (f *fakeIdentity) GetCurrentUser(context.Context) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentUser, f.currentUserErr
}

func (f *fakeIdentity) OnAuthStateChange(fn func(*Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
	return func() {}
}

// push simulates an asynchronous auth-change notification.
func (f *fakeIdentity) push(session *Session) {
	f.mu.Lock()
	fns := append(([]func(*Session))(nil), f.subscribers...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(session)
	}
}

// fakeRows is a scriptable RowStore for a single profile table.
type fakeRows struct {
	mu sync.Mutex

	selectRow   *Profile
	selectErr   error
	selectCalls int
	onSelect    func()

	insertResult *Profile
	insertErr    error
	insertCalls  int
	inserted     []any

	updateResult *Profile
	updateErr    error
	updateCalls  int
	updated      []any
	onUpdate     func()
}

func (f *fakeRows) SelectOne(_ context.Context, _ string, _ map[string]string, dest any) error {
	f.mu.Lock()
	f.selectCalls++
	hook, row, err := f.onSelect, f.selectRow, f.selectErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: profiles", ErrRowNotFound)
	}
	*dest.(*Profile) = *row
	return nil
}

func (f *fakeRows) Insert(_ context.Context, _ string, row any, dest any) error {
	f.mu.Lock()
	f.insertCalls++
	f.inserted = append(f.inserted, row)
	result, err := f.insertResult, f.insertErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if result != nil {
		*dest.(*Profile) = *result
	}
	return nil
}

func (f *fakeRows) Update(_ context.Context, _ string, _ map[string]string, partial any, dest any) error {
	f.mu.Lock()
	f.updateCalls++
	f.updated = append(f.updated, partial)
	hook, result, err := f.onUpdate, f.updateResult, f.updateErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return err
	}
	if result != nil {
		*dest.(*Profile) = *result
	}
	return nil
}

// fakeObjects records object-store traffic in call order.
type fakeObjects struct {
	mu sync.Mutex

	listKeys  []string
	listErr   error
	removeErr error
	uploadErr error

	ops     []string
	removed [][]string
	uploads []string
}

func (f *fakeObjects) List(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "list")
	return f.listKeys, f.listErr
}

func (f *fakeObjects) Remove(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "remove")
	f.removed = append(f.removed, keys)
	return f.removeErr
}

func (f *fakeObjects) Upload(_ context.Context, key string, _ []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "upload")
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

// fakeLocal is an in-memory LocalStorage.
type fakeLocal struct {
	mu    sync.Mutex
	items map[string]string

	keysErr   error
	removeErr error
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{items: make(map[string]string)}
}

func (f *fakeLocal) GetItem(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *fakeLocal) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return nil
}

func (f *fakeLocal) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

func (f *fakeLocal) GetAllKeys(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keysErr != nil {
		return nil, f.keysErr
	}
	keys := make([]string, 0, len(f.items))
	for key := range f.items {
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeLocal) MultiRemove(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, key := range keys {
		delete(f.items, key)
	}
	return nil
}

func (f *fakeLocal) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[key]
	return ok
}

// fakeRouter records navigation effects.
type fakeRouter struct {
	mu     sync.Mutex
	routes []Route
}

func (f *fakeRouter) Replace(route Route) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route)
}

func (f *fakeRouter) last() Route {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.routes) == 0 {
		return ""
	}
	return f.routes[len(f.routes)-1]
}

// fakeOptimizer returns fixed bytes.
type fakeOptimizer struct {
	data []byte
	err  error
}

func (f *fakeOptimizer) Optimize(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

// fixture bundles a built client with its fakes.
type fixture struct {
	client    *Client
	identity  *fakeIdentity
	rows      *fakeRows
	objects   *fakeObjects
	local     *fakeLocal
	router    *fakeRouter
	optimizer *fakeOptimizer
}

func newFixture(mutate func(*fixture, *Config)) *fixture {
	f := &fixture{
		identity:  &fakeIdentity{},
		rows:      &fakeRows{},
		objects:   &fakeObjects{},
		local:     newFakeLocal(),
		router:    &fakeRouter{},
		optimizer: &fakeOptimizer{data: []byte("jpeg")},
	}

	cfg := DefaultConfig()
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(f, &cfg)
	}

	client, err := New().
		WithConfig(cfg).
		WithIdentity(f.identity).
		WithRowStore(f.rows).
		WithObjectStore(f.objects).
		WithLocalStorage(f.local).
		WithRouter(f.router).
		WithImageOptimizer(f.optimizer).
		Build()
	if err != nil {
		panic(err)
	}
	f.client = client
	return f
}
