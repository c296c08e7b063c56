package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
)

const defaultHTTPTimeout = 30 * time.Second

// Client bundles the per-project adapters. Construct it once and hand the
// sub-adapters to the engine builder.
type Client struct {
	rest *restClient
	auth *Auth
}

// NewClient creates the adapter set for one project. local is where the
// auth adapter persists its session between process runs.
func NewClient(cfg Config, local authsync.LocalStorage) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rest := &restClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}
	c := &Client{rest: rest}
	c.auth = newAuth(rest, local, cfg.StorageKey())
	return c, nil
}

// Auth returns the identity-service adapter.
func (c *Client) Auth() *Auth {
	return c.auth
}

// Rows returns the row-store adapter. Requests are authorized with the
// current session's token when one is held, the anon key otherwise.
func (c *Client) Rows() *Rows {
	return &Rows{rest: c.rest, tokens: c.auth}
}

// Objects returns the object-store adapter scoped to bucket.
func (c *Client) Objects(bucket string) *Objects {
	return &Objects{rest: c.rest, tokens: c.auth, bucket: bucket}
}

// TokenSource yields the bearer token for data-plane requests. An empty
// token falls back to the anon key.
type TokenSource interface {
	AccessToken() string
}

// restClient is the shared HTTP plumbing under the three adapters.
type restClient struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// apiError is a non-2xx response from any Supabase service. It unwraps to
// [authsync.ErrRemote] so callers can match the taxonomy without knowing
// about HTTP.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("supabase: status %d", e.Status)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

func (e *apiError) Unwrap() error {
	return authsync.ErrRemote
}

// doJSON sends a JSON request and decodes a JSON response into dest when
// dest is non-nil.
func (c *restClient) doJSON(ctx context.Context, method, path, token string, headers map[string]string, body, dest any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("supabase: encode request: %w", err)
		}
	}
	return c.doRaw(ctx, method, path, token, headers, payload, "application/json", dest)
}

func (c *restClient) doRaw(ctx context.Context, method, path, token string, headers map[string]string, body []byte, contentType string, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}

	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", authsync.ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &apiError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %v", authsync.ErrRemote, err)
	}
	return nil
}

// readErrorMessage pulls a human-readable message out of an error body.
// The services disagree on the field name, so every known one is tried.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
		if m != "" {
			return m
		}
	}
	return strings.TrimSpace(string(data))
}
