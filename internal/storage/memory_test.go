package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMemoryStore_PutPresignServe(t *testing.T) {
	store := NewMemoryStore("http://files.test/")
	ctx := context.Background()

	if err := store.Put(ctx, "k1", strings.NewReader("hello"), 5, "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	url, err := store.PresignGet(ctx, "k1", "greeting.txt", time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if !strings.HasPrefix(url, "http://files.test"+BlobPathPrefix) {
		t.Fatalf("unexpected url %q", url)
	}

	req := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(url, "http://files.test"), nil)
	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "hello" {
		t.Errorf("body = %q, want hello", body)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "greeting.txt") {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestMemoryStore_ExpiredGrant(t *testing.T) {
	store := NewMemoryStore("http://files.test")
	ctx := context.Background()
	_ = store.Put(ctx, "k1", strings.NewReader("x"), 1, "")

	url, err := store.PresignGet(ctx, "k1", "x", time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(url, "http://files.test"), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore("http://files.test")
	ctx := context.Background()
	_ = store.Put(ctx, "k1", strings.NewReader("x"), 1, "")

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Has("k1") {
		t.Error("object still present after Delete")
	}
	if err := store.Delete(ctx, "k1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if _, err := store.PresignGet(ctx, "k1", "x", time.Minute); err == nil {
		t.Error("expected error presigning a deleted object")
	}
}

func TestMemoryStore_PresignPrunesExpiredGrants(t *testing.T) {
	store := NewMemoryStore("http://files.test")
	ctx := context.Background()
	_ = store.Put(ctx, "k1", strings.NewReader("x"), 1, "")

	for i := 0; i < 3; i++ {
		if _, err := store.PresignGet(ctx, "k1", "x", time.Minute); err != nil {
			t.Fatalf("PresignGet: %v", err)
		}
	}

	later := time.Now().Add(2 * time.Minute)
	store.now = func() time.Time { return later }

	url, err := store.PresignGet(ctx, "k1", "x", time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if n := len(store.grants); n != 1 {
		t.Errorf("grants = %d, want 1 after expired ones are pruned", n)
	}

	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(url, "http://files.test"), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for the fresh grant", rec.Code)
	}
}
