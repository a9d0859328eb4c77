package memory

import (
	"context"
	"fmt"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models/workspace"
)

type folderRepository struct {
	s *Store
}

func detachFolder(f workspace.Folder) workspace.Folder {
	f.ParentID = clonePtr(f.ParentID)
	f.DeletedAt = clonePtr(f.DeletedAt)
	return f
}

// liveSibling must be called with the store lock held
func (r *folderRepository) liveSibling(owner string, parentID *string, name, excludeID string) *workspace.Folder {
	for _, f := range r.s.folders {
		if f.Owner == owner && f.ID != excludeID && f.DeletedAt == nil &&
			f.Name == name && sameParent(f.ParentID, parentID) {
			return &f
		}
	}
	return nil
}

// Create creates a new folder
func (r *folderRepository) Create(ctx context.Context, folder *workspace.Folder) error {
	defer r.s.lock(ctx)()

	if existing := r.liveSibling(folder.Owner, folder.ParentID, folder.Name, ""); existing != nil {
		return domain.NewNameCollision(domain.ResourceFolder, folder.Name, existing.ID)
	}

	now := r.s.now()
	folder.ID = newID()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	r.s.folders[folder.ID] = detachFolder(*folder)
	return nil
}

// GetByID retrieves a folder by ID
func (r *folderRepository) GetByID(ctx context.Context, owner, id string) (*workspace.Folder, error) {
	defer r.s.lock(ctx)()

	f, ok := r.s.folders[id]
	if !ok || f.Owner != owner {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f = detachFolder(f)
	return &f, nil
}

// Update updates a folder
func (r *folderRepository) Update(ctx context.Context, folder *workspace.Folder) error {
	defer r.s.lock(ctx)()

	current, ok := r.s.folders[folder.ID]
	if !ok || current.Owner != folder.Owner {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	if folder.DeletedAt == nil {
		if existing := r.liveSibling(folder.Owner, folder.ParentID, folder.Name, folder.ID); existing != nil {
			return domain.NewNameCollision(domain.ResourceFolder, folder.Name, existing.ID)
		}
	}

	folder.UpdatedAt = r.s.now()
	r.s.folders[folder.ID] = detachFolder(*folder)
	return nil
}

// Delete deletes a folder. Children must be removed first.
func (r *folderRepository) Delete(ctx context.Context, owner, id string) error {
	defer r.s.lock(ctx)()

	f, ok := r.s.folders[id]
	if !ok || f.Owner != owner {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	for _, child := range r.s.folders {
		if child.ParentID != nil && *child.ParentID == id {
			return fmt.Errorf("cannot delete folder %s with child folders", id)
		}
	}
	for _, child := range r.s.files {
		if child.FolderID != nil && *child.FolderID == id {
			return fmt.Errorf("cannot delete folder %s with files", id)
		}
	}
	delete(r.s.folders, id)
	return nil
}

// ListChildren lists immediate child folders
func (r *folderRepository) ListChildren(ctx context.Context, owner string, parentID *string, includeTrashed bool) ([]workspace.Folder, error) {
	defer r.s.lock(ctx)()

	folders := make([]workspace.Folder, 0)
	for _, f := range r.s.folders {
		if f.Owner != owner || !sameParent(f.ParentID, parentID) {
			continue
		}
		if f.DeletedAt != nil && !includeTrashed {
			continue
		}
		folders = append(folders, detachFolder(f))
	}
	sortFolders(folders)
	return folders, nil
}

// FindChildByName returns the live child folder named name, or nil
func (r *folderRepository) FindChildByName(ctx context.Context, owner string, parentID *string, name string) (*workspace.Folder, error) {
	defer r.s.lock(ctx)()

	existing := r.liveSibling(owner, parentID, name, "")
	if existing == nil {
		return nil, nil
	}
	f := detachFolder(*existing)
	return &f, nil
}

// ListTrashed lists explicitly trashed folders
func (r *folderRepository) ListTrashed(ctx context.Context, owner string) ([]workspace.Folder, error) {
	defer r.s.lock(ctx)()

	folders := make([]workspace.Folder, 0)
	for _, f := range r.s.folders {
		if f.Owner == owner && f.DeletedAt != nil {
			folders = append(folders, detachFolder(f))
		}
	}
	sortFolders(folders)
	return folders, nil
}

// LockTree is a no-op: transactions already hold the store lock
func (r *folderRepository) LockTree(ctx context.Context, owner string) error {
	return nil
}
