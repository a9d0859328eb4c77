package workspace

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	models "cirrus/internal/domain/models/workspace"
	wsRepo "cirrus/internal/domain/repositories/workspace"
	wsSvc "cirrus/internal/domain/services/workspace"
	"cirrus/internal/mimetypes"
	"cirrus/internal/repository/memory"
	"cirrus/internal/storage"
)

const testOwner = "user-1"

type fixture struct {
	store   *memory.Store
	objects *storage.MemoryStore
	tree    wsSvc.TreeService
	move    wsSvc.MoveService
	trash   wsSvc.TrashService
	ingest  wsSvc.IngestService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithFiles(t, nil)
}

// newFixtureWithFiles lets a test wrap the file repository
func newFixtureWithFiles(t *testing.T, wrap func(wsRepo.FileRepository) wsRepo.FileRepository) *fixture {
	t.Helper()

	mimes, err := mimetypes.NewRegistry()
	if err != nil {
		t.Fatalf("mimetypes.NewRegistry: %v", err)
	}

	store := memory.New()
	objects := storage.NewMemoryStore("http://cirrus.test")
	logger := testLogger()

	files := store.Files()
	if wrap != nil {
		files = wrap(files)
	}

	tree := NewTreeService(store.Folders(), files, objects, mimes, store.TxManager(), time.Minute, logger)
	return &fixture{
		store:   store,
		objects: objects,
		tree:    tree,
		move:    NewMoveService(store.Folders(), files, store.TxManager(), logger),
		trash:   NewTrashService(store.Folders(), files, objects, store.TxManager(), logger),
		ingest:  NewIngestService(tree, logger),
	}
}

func ptr(s string) *string { return &s }

func (f *fixture) mkdir(t *testing.T, parentID *string, name string) *models.Folder {
	t.Helper()
	folder, err := f.tree.CreateFolder(context.Background(), &wsSvc.CreateFolderRequest{
		Owner:    testOwner,
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return folder
}

func (f *fixture) upload(t *testing.T, folderID *string, name, content string) *models.File {
	t.Helper()
	file, err := f.tree.UploadFile(context.Background(), &wsSvc.UploadFileRequest{
		Owner:    testOwner,
		FolderID: folderID,
		Name:     name,
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("UploadFile(%q): %v", name, err)
	}
	return file
}

// visibleTree renders every visible folder and file as "path#id" lines
func (f *fixture) visibleTree(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	var lines []string
	var walk func(parentID *string, prefix string)
	walk = func(parentID *string, prefix string) {
		folders, err := f.tree.ListFolders(ctx, testOwner, parentID)
		if err != nil {
			t.Fatalf("ListFolders: %v", err)
		}
		files, err := f.tree.ListFiles(ctx, testOwner, parentID)
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		for _, file := range files {
			lines = append(lines, prefix+file.Name+"#"+file.ID)
		}
		for _, folder := range folders {
			lines = append(lines, prefix+folder.Name+"/#"+folder.ID)
			walk(ptr(folder.ID), prefix+folder.Name+"/")
		}
	}
	walk(nil, "")

	sort.Strings(lines)
	return lines
}

func folderNames(folders []models.Folder) []string {
	names := make([]string, len(folders))
	for i, folder := range folders {
		names[i] = folder.Name
	}
	return names
}

func fileNames(files []models.File) []string {
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name
	}
	return names
}
