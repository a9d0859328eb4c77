package memory

import (
	"context"
	"fmt"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models/workspace"
)

type fileRepository struct {
	s *Store
}

func detachFile(f workspace.File) workspace.File {
	f.FolderID = clonePtr(f.FolderID)
	f.DeletedAt = clonePtr(f.DeletedAt)
	return f
}

// Create creates a new file record
func (r *fileRepository) Create(ctx context.Context, file *workspace.File) error {
	defer r.s.lock(ctx)()

	if file.FolderID != nil {
		if _, ok := r.s.folders[*file.FolderID]; !ok {
			return fmt.Errorf("folder %s: %w", *file.FolderID, domain.ErrNotFound)
		}
	}

	now := r.s.now()
	file.ID = newID()
	file.CreatedAt = now
	file.UpdatedAt = now
	r.s.files[file.ID] = detachFile(*file)
	return nil
}

// GetByID retrieves a file by ID
func (r *fileRepository) GetByID(ctx context.Context, owner, id string) (*workspace.File, error) {
	defer r.s.lock(ctx)()

	f, ok := r.s.files[id]
	if !ok || f.Owner != owner {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f = detachFile(f)
	return &f, nil
}

// Update updates a file record
func (r *fileRepository) Update(ctx context.Context, file *workspace.File) error {
	defer r.s.lock(ctx)()

	current, ok := r.s.files[file.ID]
	if !ok || current.Owner != file.Owner {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	file.UpdatedAt = r.s.now()
	r.s.files[file.ID] = detachFile(*file)
	return nil
}

// Delete deletes a file record
func (r *fileRepository) Delete(ctx context.Context, owner, id string) error {
	defer r.s.lock(ctx)()

	f, ok := r.s.files[id]
	if !ok || f.Owner != owner {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.files, id)
	return nil
}

// ListByFolder lists files in a folder
func (r *fileRepository) ListByFolder(ctx context.Context, owner string, folderID *string, includeTrashed bool) ([]workspace.File, error) {
	defer r.s.lock(ctx)()

	files := make([]workspace.File, 0)
	for _, f := range r.s.files {
		if f.Owner != owner || !sameParent(f.FolderID, folderID) {
			continue
		}
		if f.DeletedAt != nil && !includeTrashed {
			continue
		}
		files = append(files, detachFile(f))
	}
	sortFiles(files)
	return files, nil
}

// FindByName returns the first live file named name in the folder, or nil
func (r *fileRepository) FindByName(ctx context.Context, owner string, folderID *string, name string) (*workspace.File, error) {
	defer r.s.lock(ctx)()

	var found *workspace.File
	for _, f := range r.s.files {
		if f.Owner == owner && f.DeletedAt == nil && f.Name == name && sameParent(f.FolderID, folderID) {
			if found == nil || f.CreatedAt.Before(found.CreatedAt) {
				d := detachFile(f)
				found = &d
			}
		}
	}
	return found, nil
}

// ListTrashed lists explicitly trashed files
func (r *fileRepository) ListTrashed(ctx context.Context, owner string) ([]workspace.File, error) {
	defer r.s.lock(ctx)()

	files := make([]workspace.File, 0)
	for _, f := range r.s.files {
		if f.Owner == owner && f.DeletedAt != nil {
			files = append(files, detachFile(f))
		}
	}
	sortFiles(files)
	return files, nil
}

// LockFolder is a no-op: transactions already hold the store lock
func (r *fileRepository) LockFolder(ctx context.Context, owner string, folderID *string) error {
	return nil
}
