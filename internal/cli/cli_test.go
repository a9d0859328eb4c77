package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"cirrus/internal/handler"
	"cirrus/internal/httputil"
	"cirrus/internal/mimetypes"
	"cirrus/internal/repository/memory"
	wsService "cirrus/internal/service/workspace"
	"cirrus/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "photos")
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCollectFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.jpg":         "a",
		"2024/b.txt":    "bb",
		"2024/jan/c.md": "ccc",
	})

	files, err := CollectFiles(root)
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	var paths []string
	for _, f := range files {
		paths = append(paths, f.RelativePath)
	}
	want := []string{"photos/2024/b.txt", "photos/2024/jan/c.md", "photos/a.jpg"}
	if !slices.Equal(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}

	rc, err := files[1].Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "ccc" || files[1].Size != 3 {
		t.Errorf("content = %q, size %d", data, files[1].Size)
	}

	if _, err := CollectFiles(filepath.Join(root, "a.jpg")); err == nil {
		t.Error("expected error for a regular file")
	}
}

func newAPIServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	logger := testLogger()

	mimes, err := mimetypes.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	store := memory.New()
	objects := storage.NewMemoryStore("http://blobs.test")
	tree := wsService.NewTreeService(store.Folders(), store.Files(), objects, mimes, store.TxManager(), time.Minute, logger)
	move := wsService.NewMoveService(store.Folders(), store.Files(), store.TxManager(), logger)
	trash := wsService.NewTrashService(store.Folders(), store.Files(), objects, store.TxManager(), logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		handler.NewFolderHandler(tree, move, trash, logger),
		handler.NewFileHandler(tree, move, trash, wsService.NewIngestService(tree, logger), 1<<20, logger),
		handler.NewTrashHandler(trash, logger),
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		mux.ServeHTTP(w, httputil.WithOwner(r, "user-1"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Upload(t *testing.T) {
	srv := newAPIServer(t, "secret")
	root := writeTree(t, map[string]string{
		"a.jpg":      "a",
		"2024/b.txt": "bb",
	})

	var stdout, stderr bytes.Buffer
	env := &Env{ServerURL: srv.URL, Token: "secret", Stdout: &stdout, Stderr: &stderr, Logger: testLogger()}

	if code := Run(context.Background(), env, []string{"upload", root}); code != 0 {
		t.Fatalf("exit %d, stderr %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Uploading 1/2") || !strings.Contains(out, "Uploading 2/2") {
		t.Errorf("progress missing: %q", out)
	}
	if !strings.Contains(out, "2 uploaded, 0 skipped, 0 failed (2 folders created)") {
		t.Errorf("summary missing: %q", out)
	}

	// Flags may follow the directory
	stdout.Reset()
	if code := Run(context.Background(), env, []string{"upload", root, "--skip-duplicates"}); code != 0 {
		t.Fatalf("second run exit %d, stderr %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "0 uploaded, 2 skipped, 0 failed (0 folders created)") {
		t.Errorf("second summary: %q", stdout.String())
	}
}

func TestRun_Errors(t *testing.T) {
	srv := newAPIServer(t, "secret")
	root := writeTree(t, map[string]string{"a.txt": "a"})

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"sync"}, 2},
		{"missing dir", []string{"upload"}, 1},
		{"not a dir", []string{"upload", filepath.Join(root, "a.txt")}, 1},
		{"unknown parent", []string{"upload", "--parent", "missing", root}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			env := &Env{ServerURL: srv.URL, Token: "secret", Stdout: &stdout, Stderr: &stderr, Logger: testLogger()}
			if code := Run(context.Background(), env, tt.args); code != tt.want {
				t.Errorf("exit = %d, want %d (stderr %s)", code, tt.want, stderr.String())
			}
		})
	}
}

func TestPromptToken(t *testing.T) {
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte(" tok \n"), nil }

	var out bytes.Buffer
	token, err := promptToken(&out)
	if err != nil || token != "tok" {
		t.Errorf("promptToken = %q, %v", token, err)
	}
	if !strings.Contains(out.String(), "API token: ") {
		t.Errorf("prompt = %q", out.String())
	}

	readPassword = func(int) ([]byte, error) { return nil, errors.New("eof") }
	if _, err := promptToken(&out); err == nil {
		t.Error("expected read error")
	}

	isTerminal = func(int) bool { return false }
	if _, err := promptToken(&out); err == nil {
		t.Error("expected error without a terminal")
	}
}

func TestCollectFiles_CurrentDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"a.jpg": "a", "2024/b.txt": "bb"})
	t.Chdir(root)

	files, err := CollectFiles(".")
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	var paths []string
	for _, f := range files {
		paths = append(paths, f.RelativePath)
	}
	want := []string{"photos/2024/b.txt", "photos/a.jpg"}
	if !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}
