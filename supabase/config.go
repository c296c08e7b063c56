package supabase

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by [FromEnv]. The EXPO_PUBLIC_ names match
// the mobile app this engine was extracted from.
const (
	EnvURL     = "EXPO_PUBLIC_SUPABASE_URL"
	EnvAnonKey = "EXPO_PUBLIC_SUPABASE_ANON_KEY"
)

// Config identifies one Supabase project.
type Config struct {
	// URL is the project base URL, e.g. https://abcdefgh.supabase.co.
	URL string
	// AnonKey is the project's public anon API key. Every request carries
	// it; authenticated requests additionally carry the user's token.
	AnonKey string
}

// FromEnv loads Config from the environment, first merging any .env files
// given (missing files are ignored, real values win over .env values).
func FromEnv(dotenvFiles ...string) (Config, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := Config{
		URL:     os.Getenv(EnvURL),
		AnonKey: os.Getenv(EnvAnonKey),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("supabase: project URL is required (" + EnvURL + ")")
	}
	if c.AnonKey == "" {
		return errors.New("supabase: anon key is required (" + EnvAnonKey + ")")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("supabase: invalid project URL: %w", err)
	}
	return nil
}

// ProjectRef extracts the project reference from the URL host, the first
// label of e.g. abcdefgh.supabase.co.
func (c Config) ProjectRef() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

// StorageKey returns the local-storage key the auth adapter persists its
// session under. The sb- prefix is what logout's storage cleanup matches.
func (c Config) StorageKey() string {
	return "sb-" + c.ProjectRef() + "-auth-token"
}
