package authsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ProfileStore owns the current user's profile record. It reacts to every
// session replacement: a new or different user triggers a refresh, a
// cleared session empties the profile synchronously. The first refresh
// after registration lazily creates the backing row from the identity
// service's user record.
//
// Refresh, Update, and UploadAvatarImage are serialized per store, so a
// stale fetch can never overwrite a newer update. The remote row is
// authoritative: Update replaces the local profile with the row the store
// returned, not with a local merge.
type ProfileStore struct {
	cfg      Config
	rows     RowStore
	identity IdentityService
	sessions *SessionStore
	uploader *avatarUploader
	audit    *auditDispatcher
	metrics  *Metrics

	// opMu serializes the remote operations; mu guards the state below and
	// is never held across a remote call.
	opMu sync.Mutex
	mu   sync.Mutex

	profile         *Profile
	loading         bool
	updating        bool
	uploadingAvatar bool
	errMsg          string
	// userID is the session user the current profile state belongs to. A
	// completed operation commits its result only while this still matches.
	userID string
}

func newProfileStore(cfg Config, rows RowStore, identity IdentityService, sessions *SessionStore, uploader *avatarUploader, audit *auditDispatcher, metrics *Metrics) *ProfileStore {
	return &ProfileStore{
		cfg:      cfg,
		rows:     rows,
		identity: identity,
		sessions: sessions,
		uploader: uploader,
		audit:    audit,
		metrics:  metrics,
	}
}

// Profile returns a copy of the loaded profile, or nil.
func (p *ProfileStore) Profile() *Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneProfile(p.profile)
}

// IsLoading reports whether a refresh is in flight.
func (p *ProfileStore) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// IsUpdating reports whether an update is in flight.
func (p *ProfileStore) IsUpdating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updating
}

// IsUploadingAvatar reports whether an avatar replacement is in flight.
func (p *ProfileStore) IsUploadingAvatar() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uploadingAvatar
}

// Err returns the recorded error message, empty when none. Refresh
// failures are only observable here.
func (p *ProfileStore) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// handleSessionChange is subscribed to the session store at Build time.
func (p *ProfileStore) handleSessionChange(session *Session) {
	if session == nil {
		p.mu.Lock()
		p.profile = nil
		p.errMsg = ""
		p.userID = ""
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	same := p.userID == session.UserID
	p.userID = session.UserID
	p.mu.Unlock()
	if same {
		return
	}

	p.Refresh(context.Background())
}

// Refresh fetches the profile for the current session, creating it from
// the identity service's user record when the row does not exist yet.
// Refresh never surfaces a failure to the caller; it records the message
// in the store's error state instead.
func (p *ProfileStore) Refresh(ctx context.Context) {
	session := p.sessions.Session()
	if session == nil {
		p.mu.Lock()
		p.profile = nil
		p.mu.Unlock()
		return
	}
	userID := session.UserID

	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.setLoading(true)
	defer p.setLoading(false)
	p.setError("")

	var profile Profile
	err := p.rows.SelectOne(ctx, p.cfg.Profile.Table, map[string]string{"id": userID}, &profile)
	if errors.Is(err, ErrRowNotFound) {
		profile, err = p.createFromAuth(ctx, userID)
	}
	if err != nil {
		p.metrics.Inc(MetricProfileRefreshFailure)
		p.audit.emit(ctx, auditEventProfileRefreshFailure, userID, false, err, nil)
		p.setError(err.Error())
		return
	}

	p.metrics.Inc(MetricProfileRefreshSuccess)
	p.commitProfile(ctx, userID, &profile)
}

// profileSeed is the insert payload for a lazily-created profile. The row
// store owns created_at/updated_at defaults.
type profileSeed struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (p *ProfileStore) createFromAuth(ctx context.Context, userID string) (Profile, error) {
	user, err := p.identity.GetCurrentUser(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}

	seed := profileSeed{
		ID:        userID,
		Email:     user.Email,
		FirstName: optionalString(user.FirstName),
		LastName:  optionalString(user.LastName),
	}

	var created Profile
	if err := p.rows.Insert(ctx, p.cfg.Profile.Table, seed, &created); err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}

	p.metrics.Inc(MetricProfileCreated)
	p.audit.emit(ctx, auditEventProfileCreated, userID, true, nil, nil)
	return created, nil
}

// Update merges the partial fields into the remote row and replaces the
// local profile with the row the store returned. It fails with
// [ErrNotAuthenticated] without a session and [ErrNoProfile] before the
// first successful refresh. Failures are both recorded in error state and
// returned.
func (p *ProfileStore) Update(ctx context.Context, update ProfileUpdate) error {
	session := p.sessions.Session()
	if session == nil {
		return ErrNotAuthenticated
	}

	p.mu.Lock()
	loaded := p.profile != nil
	p.mu.Unlock()
	if !loaded {
		return ErrNoProfile
	}

	p.opMu.Lock()
	defer p.opMu.Unlock()

	return p.updateLocked(ctx, session.UserID, update)
}

// updateLocked requires opMu to be held.
func (p *ProfileStore) updateLocked(ctx context.Context, userID string, update ProfileUpdate) error {
	p.setUpdating(true)
	defer p.setUpdating(false)
	p.setError("")

	payload := struct {
		ProfileUpdate
		UpdatedAt time.Time `json:"updated_at"`
	}{
		ProfileUpdate: update,
		UpdatedAt:     time.Now().UTC(),
	}

	var updated Profile
	err := p.rows.Update(ctx, p.cfg.Profile.Table, map[string]string{"id": userID}, payload, &updated)
	if err != nil {
		p.metrics.Inc(MetricProfileUpdateFailure)
		p.audit.emit(ctx, auditEventProfileUpdateFailure, userID, false, err, nil)
		p.setError(err.Error())
		return fmt.Errorf("update profile: %w", err)
	}

	p.metrics.Inc(MetricProfileUpdateSuccess)
	p.audit.emit(ctx, auditEventProfileUpdateSuccess, userID, true, nil, nil)
	p.commitProfile(ctx, userID, &updated)
	return nil
}

// UploadAvatarImage optimizes, bounds, and uploads the image behind
// localURI, then points the profile's avatar_url at the uploaded object.
// Upload failures come back as a failed [UploadResult] with a nil error;
// a failure of the follow-up profile update is returned as the error,
// alongside the successful upload result.
func (p *ProfileStore) UploadAvatarImage(ctx context.Context, localURI string) (UploadResult, error) {
	session := p.sessions.Session()
	if session == nil {
		return UploadResult{Error: ErrNotAuthenticated.Error()}, nil
	}
	userID := session.UserID

	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.setUploadingAvatar(true)
	defer p.setUploadingAvatar(false)
	p.setError("")

	result := p.uploader.upload(ctx, userID, localURI)
	if !result.Success {
		p.metrics.Inc(MetricAvatarUploadFailure)
		p.audit.emit(ctx, auditEventAvatarUploadFailure, userID, false, errors.New(result.Error), nil)
		p.setError(result.Error)
		return result, nil
	}

	p.metrics.Inc(MetricAvatarUploadSuccess)
	p.audit.emit(ctx, auditEventAvatarUploadSuccess, userID, true, nil, map[string]string{"url": result.ImageURL})

	if err := p.updateLocked(ctx, userID, ProfileUpdate{AvatarURL: &result.ImageURL}); err != nil {
		return result, err
	}
	return result, nil
}

// commitProfile applies a completed operation's row, unless the session
// moved to a different user (or away entirely) while the call was in
// flight.
func (p *ProfileStore) commitProfile(ctx context.Context, userID string, profile *Profile) {
	p.mu.Lock()
	current := p.userID
	if current == userID {
		p.profile = cloneProfile(profile)
	}
	p.mu.Unlock()

	if current != userID {
		p.audit.emit(ctx, auditEventProfileUpdateStale, userID, false, nil, map[string]string{
			"current_user": current,
		})
	}
}

func (p *ProfileStore) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}

func (p *ProfileStore) setUpdating(v bool) {
	p.mu.Lock()
	p.updating = v
	p.mu.Unlock()
}

func (p *ProfileStore) setUploadingAvatar(v bool) {
	p.mu.Lock()
	p.uploadingAvatar = v
	p.mu.Unlock()
}

func (p *ProfileStore) setError(msg string) {
	p.mu.Lock()
	p.errMsg = msg
	p.mu.Unlock()
}

func cloneProfile(in *Profile) *Profile {
	if in == nil {
		return nil
	}
	out := *in
	out.FirstName = clonePtr(in.FirstName)
	out.LastName = clonePtr(in.LastName)
	out.AvatarURL = clonePtr(in.AvatarURL)
	return &out
}

func clonePtr(in *string) *string {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
