package supabase

import (
	"context"
	"net/url"
	"strings"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
)

// Objects adapts the Supabase Storage API to [authsync.ObjectStore],
// scoped to one bucket. Uploads never overwrite: x-upsert stays false, so
// a key collision is a remote error, not silent replacement.
type Objects struct {
	rest   *restClient
	tokens TokenSource
	bucket string
}

var _ authsync.ObjectStore = (*Objects)(nil)

// List returns the full keys of every object under prefix.
func (o *Objects) List(ctx context.Context, prefix string) ([]string, error) {
	body := map[string]any{
		"prefix": prefix,
		"limit":  100,
	}

	var entries []struct {
		Name string `json:"name"`
	}
	path := "/storage/v1/object/list/" + url.PathEscape(o.bucket)
	if err := o.rest.doJSON(ctx, "POST", path, o.tokens.AccessToken(), nil, body, &entries); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, prefix+"/"+e.Name)
	}
	return keys, nil
}

// Remove deletes the given keys from the bucket.
func (o *Objects) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	body := map[string][]string{"prefixes": keys}
	path := "/storage/v1/object/" + url.PathEscape(o.bucket)
	return o.rest.doJSON(ctx, "DELETE", path, o.tokens.AccessToken(), nil, body, nil)
}

// Upload stores data under key, rejecting keys that already exist.
func (o *Objects) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	headers := map[string]string{
		"x-upsert": "false",
	}
	path := "/storage/v1/object/" + url.PathEscape(o.bucket) + "/" + escapeKey(key)
	return o.rest.doRaw(ctx, "POST", path, o.tokens.AccessToken(), headers, data, contentType, nil)
}

// PublicURL composes the public download URL for key. It assumes a public
// bucket; no request is made.
func (o *Objects) PublicURL(key string) string {
	return o.rest.baseURL + "/storage/v1/object/public/" + url.PathEscape(o.bucket) + "/" + escapeKey(key)
}

// escapeKey escapes each path segment while keeping the separators.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
