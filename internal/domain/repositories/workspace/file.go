package workspace

import (
	"context"

	"cirrus/internal/domain/models/workspace"
)

// FileRepository defines data access operations for file records.
type FileRepository interface {
	// Create inserts a file record and fills ID and timestamps.
	Create(ctx context.Context, file *workspace.File) error

	// GetByID retrieves a file, trashed or not. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, owner, id string) (*workspace.File, error)

	// Update persists name, folder_id and deleted_at.
	Update(ctx context.Context, file *workspace.File) error

	// Delete permanently removes a file record.
	Delete(ctx context.Context, owner, id string) error

	// ListByFolder lists files in a folder (nil = root) ordered by case-insensitive name.
	ListByFolder(ctx context.Context, owner string, folderID *string, includeTrashed bool) ([]workspace.File, error)

	// FindByName returns the live file with exactly this name in the folder, or nil.
	FindByName(ctx context.Context, owner string, folderID *string, name string) (*workspace.File, error)

	// ListTrashed lists every file of the owner whose own deleted_at is set.
	ListTrashed(ctx context.Context, owner string) ([]workspace.File, error)

	// LockFolder serializes file name checks inside one folder
	// until the surrounding transaction ends.
	LockFolder(ctx context.Context, owner string, folderID *string) error
}
