// Package memory provides an in-process workspace store used for development
// servers and tests. A single mutex stands in for the database's unique
// constraints and row locks.
package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cirrus/internal/domain/models/workspace"
	"cirrus/internal/domain/repositories"
	wsRepo "cirrus/internal/domain/repositories/workspace"
)

type txContextKey struct{}

// Store holds every owner's folders and files.
type Store struct {
	mu      sync.Mutex
	folders map[string]workspace.Folder
	files   map[string]workspace.File
	now     func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		folders: make(map[string]workspace.Folder),
		files:   make(map[string]workspace.File),
		now:     time.Now,
	}
}

// Folders returns the folder repository view of the store
func (s *Store) Folders() wsRepo.FolderRepository { return &folderRepository{s: s} }

// Files returns the file repository view of the store
func (s *Store) Files() wsRepo.FileRepository { return &fileRepository{s: s} }

// TxManager returns a transaction manager that holds the store lock for the
// whole transaction and restores a snapshot when fn fails.
func (s *Store) TxManager() repositories.TransactionManager { return &txManager{s: s} }

// lock acquires the store mutex unless ctx already belongs to a running transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func inTx(ctx context.Context) bool {
	held, _ := ctx.Value(txContextKey{}).(bool)
	return held
}

type txManager struct {
	s *Store
}

// ExecTx executes fn while holding the store lock. Nested calls join the outer transaction.
func (tm *txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	tm.s.mu.Lock()
	defer tm.s.mu.Unlock()

	folders := maps.Clone(tm.s.folders)
	files := maps.Clone(tm.s.files)

	if err := fn(context.WithValue(ctx, txContextKey{}, true)); err != nil {
		tm.s.folders = folders
		tm.s.files = files
		return err
	}
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func newID() string {
	return uuid.NewString()
}

// byName orders case-insensitively, then by exact name, then by id.
func byName(nameA, nameB, idA, idB string) bool {
	la, lb := strings.ToLower(nameA), strings.ToLower(nameB)
	if la != lb {
		return la < lb
	}
	if nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}

func sortFolders(folders []workspace.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		return byName(folders[i].Name, folders[j].Name, folders[i].ID, folders[j].ID)
	})
}

func sortFiles(files []workspace.File) {
	sort.Slice(files, func(i, j int) bool {
		return byName(files[i].Name, files[j].Name, files[i].ID, files[j].ID)
	})
}

// clonePtr detaches stored pointers from values handed to callers.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
