// Package supabase adapts a Supabase project to the engine's collaborator
// interfaces: GoTrue as the identity service, PostgREST as the row store,
// and Storage as the object store. All three speak plain HTTP against the
// project's REST endpoints and translate service error bodies into the
// engine's error taxonomy at this boundary, so nothing above it ever
// inspects an HTTP status.
package supabase
