package workspace

import (
	"context"

	models "cirrus/internal/domain/models/workspace"
)

// MoveService relocates folders and files. Every check runs in the same
// transaction as the mutation.
type MoveService interface {
	// MoveFile moves a file to newFolderID (nil = root)
	MoveFile(ctx context.Context, owner, fileID string, newFolderID *string) (*models.File, error)

	// MoveFolder reparents a folder under newParentID (nil = root).
	// Returns domain.ErrCyclicMove if the destination is the folder or one of its descendants.
	MoveFolder(ctx context.Context, owner, folderID string, newParentID *string) (*models.Folder, error)
}
