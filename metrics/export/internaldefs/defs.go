package internaldefs

import (
	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
)

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   authsync.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: authsync.MetricRegisterSuccess, Name: "authsync_register_success_total", Help: "Successful registrations that produced a session."},
	{ID: authsync.MetricRegisterFailure, Name: "authsync_register_failure_total", Help: "Rejected or timed-out registrations."},
	{ID: authsync.MetricRegisterPending, Name: "authsync_register_pending_total", Help: "Registrations deferred to email verification."},
	{ID: authsync.MetricLoginSuccess, Name: "authsync_login_success_total", Help: "Successful logins."},
	{ID: authsync.MetricLoginFailure, Name: "authsync_login_failure_total", Help: "Rejected or timed-out logins."},
	{ID: authsync.MetricLogout, Name: "authsync_logout_total", Help: "Logout operations."},
	{ID: authsync.MetricLogoutRemoteFailure, Name: "authsync_logout_remote_failure_total", Help: "Swallowed remote logout failures."},
	{ID: authsync.MetricSessionRestored, Name: "authsync_session_restored_total", Help: "Sessions rehydrated at initialization."},
	{ID: authsync.MetricSessionChange, Name: "authsync_session_change_total", Help: "Auth-state replacements."},
	{ID: authsync.MetricProfileRefreshSuccess, Name: "authsync_profile_refresh_success_total", Help: "Profile fetches that produced a profile."},
	{ID: authsync.MetricProfileRefreshFailure, Name: "authsync_profile_refresh_failure_total", Help: "Profile fetches recorded as error state."},
	{ID: authsync.MetricProfileCreated, Name: "authsync_profile_created_total", Help: "Profiles lazily created from auth metadata."},
	{ID: authsync.MetricProfileUpdateSuccess, Name: "authsync_profile_update_success_total", Help: "Committed profile updates."},
	{ID: authsync.MetricProfileUpdateFailure, Name: "authsync_profile_update_failure_total", Help: "Failed profile updates."},
	{ID: authsync.MetricAvatarUploadSuccess, Name: "authsync_avatar_upload_success_total", Help: "Completed avatar replacements."},
	{ID: authsync.MetricAvatarUploadFailure, Name: "authsync_avatar_upload_failure_total", Help: "Avatar uploads that returned a failure result."},
}
