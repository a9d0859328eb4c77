package workspace

import (
	"context"

	models "cirrus/internal/domain/models/workspace"
)

// TrashService manages the soft-delete lifecycle
type TrashService interface {
	// SoftDeleteFolder moves a folder to trash. Descendants are hidden, not modified.
	SoftDeleteFolder(ctx context.Context, owner, id string) error

	// SoftDeleteFile moves a file to trash
	SoftDeleteFile(ctx context.Context, owner, id string) error

	// RestoreFolder takes a folder out of trash
	RestoreFolder(ctx context.Context, owner, id string) (*models.Folder, error)

	// RestoreFile takes a file out of trash
	RestoreFile(ctx context.Context, owner, id string) (*models.File, error)

	// HardDeleteFolder permanently removes a trashed folder and its whole subtree
	HardDeleteFolder(ctx context.Context, owner, id string) error

	// HardDeleteFile permanently removes a trashed file
	HardDeleteFile(ctx context.Context, owner, id string) error

	// ListTrash lists trashed entities that have no trashed ancestor
	ListTrash(ctx context.Context, owner string) (*models.Listing, error)

	// TrashContents lists the direct children of a folder inside the trash,
	// whatever their own state
	TrashContents(ctx context.Context, owner, folderID string) (*models.Listing, error)
}
