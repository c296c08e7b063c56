package authsync

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestUploadAvatarRequiresSession(t *testing.T) {
	f := newFixture(nil)
	defer f.client.Close()

	result, err := f.client.Profiles().UploadAvatarImage(context.Background(), "file:///tmp/a.jpg")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Success || result.Error == "" {
		t.Fatalf("expected failed result, got %+v", result)
	}
}

func TestUploadAvatarOversizedMakesNoRemoteCalls(t *testing.T) {
	f := newFixture(func(f *fixture, cfg *Config) {
		cfg.Avatar.MaxFileBytes = 10
		f.rows.selectRow = &Profile{ID: "u-1"}
		f.optimizer.data = bytes.Repeat([]byte("x"), 11)
	})
	defer f.client.Close()

	signIn(t, f, "u-1")

	result, err := f.client.Profiles().UploadAvatarImage(context.Background(), "file:///tmp/a.jpg")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if !strings.Contains(result.Error, ErrFileTooLarge.Error()) {
		t.Fatalf("expected size-limit message, got %q", result.Error)
	}

	f.objects.mu.Lock()
	ops := append([]string(nil), f.objects.ops...)
	f.objects.mu.Unlock()
	if len(ops) != 0 {
		t.Fatalf("oversized image must touch nothing remote, got %v", ops)
	}
}

func TestUploadAvatarOptimizeFailure(t *testing.T) {
	f := newFixture(func(f *fixture, _ *Config) {
		f.rows.selectRow = &Profile{ID: "u-1"}
		f.optimizer.err = ErrOptimization
	})
	defer f.client.Close()

	signIn(t, f, "u-1")

	result, err := f.client.Profiles().UploadAvatarImage(context.Background(), "file:///tmp/a.jpg")
	if err != nil || result.Success {
		t.Fatalf("expected failed result with nil error, got (%+v, %v)", result, err)
	}
	if f.client.Profiles().Err() == "" {
		t.Fatal("expected recorded error state")
	}
}

func TestUploadAvatarSuccessPath(t *testing.T) {
	url := ""
	f := newFixture(func(f *fixture, _ *Config) {
		f.rows.selectRow = &Profile{ID: "u-1", Email: "ada@example.com"}
		f.objects.listKeys = []string{"u-1/avatar-old.jpg"}
		f.rows.updateResult = &Profile{ID: "u-1", Email: "ada@example.com", AvatarURL: &url}
	})
	defer f.client.Close()

	signIn(t, f, "u-1")

	result, err := f.client.Profiles().UploadAvatarImage(context.Background(), "file:///tmp/a.jpg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !result.Success || result.ImageURL == "" {
		t.Fatalf("expected success, got %+v", result)
	}

	f.objects.mu.Lock()
	ops := append([]string(nil), f.objects.ops...)
	removed := f.objects.removed
	uploads := append([]string(nil), f.objects.uploads...)
	f.objects.mu.Unlock()

	// Existing objects are cleared before the new one is written.
	want := []string{"list", "remove", "upload"}
	if len(ops) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("expected ops %v, got %v", want, ops)
		}
	}
	if len(removed) != 1 || removed[0][0] != "u-1/avatar-old.jpg" {
		t.Fatalf("unexpected removals %v", removed)
	}
	if len(uploads) != 1 || !strings.HasPrefix(uploads[0], "u-1/avatar-") {
		t.Fatalf("unexpected upload key %v", uploads)
	}
	if !strings.HasSuffix(result.ImageURL, uploads[0]) {
		t.Fatalf("public URL %q does not reference uploaded key %q", result.ImageURL, uploads[0])
	}

	// The profile row now points at the uploaded object.
	f.rows.mu.Lock()
	updates := f.rows.updated
	f.rows.mu.Unlock()
	if len(updates) != 1 {
		t.Fatalf("expected one profile update, got %d", len(updates))
	}
}

func TestUploadAvatarKeysAreUnique(t *testing.T) {
	f := newFixture(func(f *fixture, _ *Config) {
		f.rows.selectRow = &Profile{ID: "u-1"}
	})
	defer f.client.Close()

	signIn(t, f, "u-1")

	uploader := f.client.profiles.uploader
	first := uploader.upload(context.Background(), "u-1", "file:///tmp/a.jpg")
	second := uploader.upload(context.Background(), "u-1", "file:///tmp/a.jpg")
	if !first.Success || !second.Success {
		t.Fatalf("expected successes, got %+v %+v", first, second)
	}
	if first.ImageURL == second.ImageURL {
		t.Fatalf("consecutive uploads reused key %q", first.ImageURL)
	}
}

func TestUploadAvatarCleanupFailureDoesNotBlockUpload(t *testing.T) {
	f := newFixture(func(f *fixture, _ *Config) {
		f.rows.selectRow = &Profile{ID: "u-1"}
		f.objects.listErr = errors.New("storage listing down")
	})
	defer f.client.Close()

	signIn(t, f, "u-1")

	result, err := f.client.Profiles().UploadAvatarImage(context.Background(), "file:///tmp/a.jpg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !result.Success {
		t.Fatalf("cleanup failure must not fail the upload, got %+v", result)
	}
}

func TestUploadAvatarUploadFailure(t *testing.T) {
	f := newFixture(func(f *fixture, _ *Config) {
		f.rows.selectRow = &Profile{ID: "u-1"}
		f.objects.uploadErr = errors.New("bucket gone")
	})
	defer f.client.Close()

	signIn(t, f, "u-1")

	result, err := f.client.Profiles().UploadAvatarImage(context.Background(), "file:///tmp/a.jpg")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Success || !strings.Contains(result.Error, "bucket gone") {
		t.Fatalf("expected upload failure result, got %+v", result)
	}
}

func TestUploadAvatarUpdateFailureReturnsError(t *testing.T) {
	f := newFixture(func(f *fixture, _ *Config) {
		f.rows.selectRow = &Profile{ID: "u-1"}
		f.rows.updateErr = ErrRemote
	})
	defer f.client.Close()

	signIn(t, f, "u-1")

	result, err := f.client.Profiles().UploadAvatarImage(context.Background(), "file:///tmp/a.jpg")
	if !result.Success {
		t.Fatalf("upload itself succeeded, got %+v", result)
	}
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected the profile-update failure surfaced, got %v", err)
	}
}
