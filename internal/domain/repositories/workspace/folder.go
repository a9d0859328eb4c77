package workspace

import (
	"context"

	"cirrus/internal/domain/models/workspace"
)

// FolderRepository defines data access operations for folders.
// All lookups are scoped to an owner; ids of other owners behave as absent.
type FolderRepository interface {
	// Create inserts a folder and fills ID and timestamps.
	// Returns a domain.ConflictError if a live sibling folder has the same name.
	Create(ctx context.Context, folder *workspace.Folder) error

	// GetByID retrieves a folder, trashed or not. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, owner, id string) (*workspace.Folder, error)

	// Update persists name, parent_id and deleted_at.
	// Returns a domain.ConflictError if the change would collide with a live sibling.
	Update(ctx context.Context, folder *workspace.Folder) error

	// Delete permanently removes a folder record.
	Delete(ctx context.Context, owner, id string) error

	// ListChildren lists immediate child folders ordered by case-insensitive name.
	// Trashed children are included only when includeTrashed is true.
	ListChildren(ctx context.Context, owner string, parentID *string, includeTrashed bool) ([]workspace.Folder, error)

	// FindChildByName returns the live child folder with exactly this name, or nil.
	FindChildByName(ctx context.Context, owner string, parentID *string, name string) (*workspace.Folder, error)

	// ListTrashed lists every folder of the owner whose own deleted_at is set.
	ListTrashed(ctx context.Context, owner string) ([]workspace.Folder, error)

	// LockTree serializes structural changes (moves) of one owner's tree
	// until the surrounding transaction ends.
	LockTree(ctx context.Context, owner string) error
}
