// Package authsync mirrors a remote authentication session and its
// dependent user profile on the client side. It is the state layer of a
// mobile app backed by a Supabase-style service: a [SessionStore] that
// wraps register/login/logout with client-side deadlines and persists
// token material through a [LocalStorage], and a [ProfileStore] that
// reacts to session changes, lazily creates the backing profile row on
// first login, and replaces avatars through an object store.
//
// # Architecture boundaries
//
// authsync is the public surface. It exposes [Builder], [Config], the two
// stores, the error taxonomy, and the collaborator interfaces
// ([IdentityService], [RowStore], [ObjectStore], [LocalStorage], [Router],
// [ImageOptimizer]). Concrete collaborators live in sub-packages:
// supabase/ (HTTP adapters), storage/ (local key-value stores), imaging/
// (JPEG optimizer). The engine never inspects token material and never
// implements cryptography; both belong to the identity service.
//
// # Concurrency model
//
// Store methods are safe for concurrent use, but the engine models a
// single logical thread of UI interaction: profile operations are
// serialized per store, remote auth calls race a fixed deadline, and a
// call abandoned by its deadline can never write store state afterwards.
package authsync
