package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
	"github.com/mr-hec24/expo-supabase-auth-starter/storage"
)

type profileRow struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
}

func newRowsTest(t *testing.T, handler http.HandlerFunc) (*Rows, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client, err := NewClient(Config{URL: server.URL, AnonKey: "anon-key"}, storage.NewMemory())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client.Rows(), server.Close
}

func TestSelectOneDecodesRow(t *testing.T) {
	rows, done := newRowsTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/profiles" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("id"); got != "eq.u-1" {
			t.Errorf("expected id=eq.u-1, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.pgrst.object+json" {
			t.Errorf("expected single-object accept header, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "u-1", "email": "ada@example.com"})
	})
	defer done()

	var row profileRow
	if err := rows.SelectOne(context.Background(), "profiles", map[string]string{"id": "u-1"}, &row); err != nil {
		t.Fatalf("select one: %v", err)
	}
	if row.ID != "u-1" || row.Email != "ada@example.com" {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestSelectOneNotFound(t *testing.T) {
	rows, done := newRowsTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		json.NewEncoder(w).Encode(map[string]string{"message": "JSON object requested, multiple (or no) rows returned"})
	})
	defer done()

	var row profileRow
	err := rows.SelectOne(context.Background(), "profiles", map[string]string{"id": "missing"}, &row)
	if !errors.Is(err, authsync.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestInsertReturnsRepresentation(t *testing.T) {
	rows, done := newRowsTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("expected return=representation, got %q", got)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		body["first_name"] = "Ada"
		json.NewEncoder(w).Encode(body)
	})
	defer done()

	var created profileRow
	seed := map[string]string{"id": "u-1", "email": "ada@example.com"}
	if err := rows.Insert(context.Background(), "profiles", seed, &created); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.FirstName == nil || *created.FirstName != "Ada" {
		t.Fatalf("expected server representation, got %+v", created)
	}
}

func TestUpdateAppliesFilter(t *testing.T) {
	rows, done := newRowsTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "eq.u-1" {
			t.Errorf("expected id=eq.u-1, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "u-1", "email": "new@example.com"})
	})
	defer done()

	var updated profileRow
	err := rows.Update(context.Background(), "profiles", map[string]string{"id": "u-1"}, map[string]string{"email": "new@example.com"}, &updated)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Fatalf("unexpected row %+v", updated)
	}
}
