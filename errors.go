package authsync

import (
	"errors"

	"github.com/mr-hec24/expo-supabase-auth-starter/internal/await"
)

var (
	// ErrValidation is returned when the identity service rejects the
	// submitted credentials: duplicate account, weak password, malformed
	// email. The wrapped message is user-facing.
	ErrValidation = errors.New("validation rejected")
	// ErrInvalidCredentials is returned by Login when the identity service
	// rejects the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingVerification is returned by Register when the account was
	// created but no session was issued because the service requires email
	// verification first. The local session stays empty.
	ErrPendingVerification = errors.New("account pending email verification")
	// ErrTimeout is returned when a remote call does not settle within its
	// client-side deadline. The abandoned call is never applied to state.
	ErrTimeout = await.ErrTimeout
	// ErrNotAuthenticated is returned by profile operations that require an
	// active session.
	ErrNotAuthenticated = errors.New("no authenticated session")
	// ErrNoProfile is returned by Update when no profile has been loaded
	// for the current session yet.
	ErrNoProfile = errors.New("no profile loaded")
	// ErrOptimization is returned when resizing or re-encoding the source
	// image fails.
	ErrOptimization = errors.New("image optimization failed")
	// ErrFileTooLarge is returned when the optimized image exceeds the
	// configured upload ceiling.
	ErrFileTooLarge = errors.New("image exceeds size limit")
	// ErrRowNotFound is returned by RowStore implementations when a select
	// matches no row. The profile refresh path consumes it to trigger lazy
	// creation; it never escapes to callers.
	ErrRowNotFound = errors.New("row not found")
	// ErrRemote is the catch-all for collaborator failures that do not map
	// onto a more specific kind.
	ErrRemote = errors.New("remote service error")
)
