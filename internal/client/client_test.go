package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cirrus/internal/domain"
	wsSvc "cirrus/internal/domain/services/workspace"
	"cirrus/internal/handler"
	"cirrus/internal/httputil"
	"cirrus/internal/mimetypes"
	"cirrus/internal/repository/memory"
	wsService "cirrus/internal/service/workspace"
	"cirrus/internal/storage"
)

const testToken = "token-1"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAPIServer runs the real handlers over the in-memory store
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := testLogger()

	mimes, err := mimetypes.NewRegistry()
	if err != nil {
		t.Fatalf("mimetypes.NewRegistry: %v", err)
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
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		mux.ServeHTTP(w, httputil.WithOwner(r, "user-1"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ingestFile(path, content string) wsSvc.IngestFile {
	return wsSvc.IngestFile{
		RelativePath: path,
		Size:         int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestClient_IngestAgainstServer(t *testing.T) {
	srv := newAPIServer(t)
	ctx := context.Background()
	c := New(srv.URL, testToken, srv.Client(), testLogger())
	coord := wsService.NewCoordinator(c, c, testLogger())

	files := []wsSvc.IngestFile{
		ingestFile("A/x.txt", "x"),
		ingestFile("A/B/y.txt", "y"),
		ingestFile("A/B/z.md", "# z"),
	}
	result, err := coord.Ingest(ctx, &wsSvc.IngestRequest{Files: files})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Summary.Uploaded != 3 || result.FoldersCreated != 2 {
		t.Fatalf("result = %+v", result)
	}

	a := result.TopFolders["A"]
	b, err := c.FindChildFolderByName(ctx, &a, "B")
	if err != nil || b == nil {
		t.Fatalf("FindChildFolderByName(B) = %v, %v", b, err)
	}
	z, err := c.FindFileByName(ctx, &b.ID, "z.md")
	if err != nil || z == nil {
		t.Fatalf("FindFileByName(z.md) = %v, %v", z, err)
	}
	if z.Mime != "text/markdown" || z.Size != 3 {
		t.Errorf("z.md = %+v", z)
	}

	// Re-run with skip: nothing is created or uploaded
	again, err := wsService.NewCoordinator(c, c, testLogger()).Ingest(ctx, &wsSvc.IngestRequest{
		Files:       files,
		OnDuplicate: wsSvc.DuplicateSkip,
	})
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if again.Summary.Skipped != 3 || again.FoldersCreated != 0 {
		t.Errorf("second result = %+v", again.Summary)
	}

	url, err := c.DownloadURL(ctx, z.ID)
	if err != nil || !strings.HasPrefix(url, "http://blobs.test/") {
		t.Errorf("DownloadURL = %q, %v", url, err)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := newAPIServer(t)
	ctx := context.Background()
	c := New(srv.URL, testToken, srv.Client(), testLogger())

	if _, err := c.CreateFolder(ctx, nil, "Docs"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	_, err := c.CreateFolder(ctx, nil, "Docs")
	if !errors.Is(err, domain.ErrNameCollision) {
		t.Errorf("duplicate: got %v, want ErrNameCollision", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "already exists") {
		t.Errorf("duplicate message = %v", err)
	}

	missing := "missing"
	if _, err := c.CreateFolder(ctx, &missing, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown parent: got %v, want ErrNotFound", err)
	}
	if _, err := c.CreateFolder(ctx, nil, "a/b"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad name: got %v, want ErrValidation", err)
	}

	anon := New(srv.URL, "", srv.Client(), testLogger())
	if _, err := anon.ListFolders(ctx, nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("no token: got %v, want ErrUnauthorized", err)
	}
}

func TestClient_TransportErrors(t *testing.T) {
	ctx := context.Background()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusBadGateway, "storage unavailable")
	}))
	defer failing.Close()

	c := New(failing.URL, testToken, failing.Client(), testLogger())
	_, err := c.ListFolders(ctx, nil)
	if !errors.Is(err, domain.ErrTransport) {
		t.Errorf("5xx: got %v, want ErrTransport", err)
	}

	// Nothing listens on a closed server
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	c = New(closed.URL, testToken, nil, testLogger())
	if _, err := c.CreateFolder(ctx, nil, "x"); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("network: got %v, want ErrTransport", err)
	}
}

func TestClient_UploadPropagatesOpenError(t *testing.T) {
	c := New("http://unused.test", testToken, nil, testLogger())
	boom := errors.New("permission denied")

	_, err := c.UploadFile(context.Background(), nil, "a.txt", wsSvc.IngestFile{
		RelativePath: "a.txt",
		Open:         func() (io.ReadCloser, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want open error", err)
	}
}
