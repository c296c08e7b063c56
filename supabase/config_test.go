package supabase

import "testing"

func TestProjectRefAndStorageKey(t *testing.T) {
	cfg := Config{URL: "https://abcdefgh.supabase.co", AnonKey: "anon"}
	if got := cfg.ProjectRef(); got != "abcdefgh" {
		t.Fatalf("expected project ref abcdefgh, got %q", got)
	}
	if got := cfg.StorageKey(); got != "sb-abcdefgh-auth-token" {
		t.Fatalf("unexpected storage key %q", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvURL, "https://abcdefgh.supabase.co")
	t.Setenv(EnvAnonKey, "anon")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.URL != "https://abcdefgh.supabase.co" || cfg.AnonKey != "anon" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestFromEnvMissingValues(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvAnonKey, "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for missing configuration")
	}
}
